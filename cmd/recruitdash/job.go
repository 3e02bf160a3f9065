package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recruitdash/recruitdash/internal/activity"
	"github.com/recruitdash/recruitdash/internal/app"
	"github.com/recruitdash/recruitdash/internal/tui/jobwizard"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Create jobs and review past activity",
}

var jobNewFlags struct {
	fresh bool
}

var jobNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Open the job creation wizard",
	Long: `Open the job creation wizard.

A draft left with "continue later" is resumed at the step where it was
saved. Use --fresh to throw it away and start over.`,
	RunE: runJobNew,
}

var jobHistoryFlags struct {
	limit int
}

var jobHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently created jobs and draft activity",
	RunE:  runJobHistory,
}

func init() {
	jobNewCmd.Flags().BoolVar(&jobNewFlags.fresh, "fresh", false, "Discard any saved draft before starting")
	jobHistoryCmd.Flags().IntVarP(&jobHistoryFlags.limit, "limit", "l", 20, "Number of events to show, 0=all")

	jobCmd.AddCommand(jobNewCmd)
	jobCmd.AddCommand(jobHistoryCmd)
}

// openApp loads config and opens the runtime. The caller must Close it.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.Open(ctx, cfg, app.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
	}
}

func runJobNew(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	client, err := a.Client()
	if err != nil {
		if app.IsNoAPIKey(err) {
			return err
		}
		return fmt.Errorf("failed to create ATS client: %w", err)
	}

	if jobNewFlags.fresh {
		if _, err := a.DiscardDraft(ctx); err != nil {
			return err
		}
	}

	ctrl, err := a.Wizard(ctx, nil)
	if err != nil {
		return err
	}

	res, err := jobwizard.Run(ctx, ctrl, client, jobwizard.WithDebounce(a.Config().SearchDebounce))
	if err != nil {
		return fmt.Errorf("job wizard failed: %w", err)
	}

	switch res.Outcome {
	case jobwizard.OutcomeCreated:
		fmt.Printf("Created job #%d: %s\n", res.Job.ID, res.Job.Title)
		if res.Job.URL != "" {
			fmt.Println(res.Job.URL)
		}
	case jobwizard.OutcomeSaved:
		fmt.Println("Draft saved. Run 'recruitdash job new' to continue where you left off.")
	case jobwizard.OutcomeDiscarded:
		fmt.Println("Draft discarded.")
	}
	return nil
}

func runJobHistory(cmd *cobra.Command, args []string) error {
	if jobHistoryFlags.limit < 0 {
		return fmt.Errorf("limit must be >= 0 (0 means all)")
	}
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	events, err := a.Activity().History(ctx, a.Config().Profile, jobHistoryFlags.limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No activity yet.")
		return nil
	}

	for _, ev := range events {
		fmt.Println(formatEvent(ev))
	}

	sum := activity.Summarize(events)
	fmt.Printf("\n%d created, %d discarded, %d resumed\n", sum.Created, sum.Discarded, sum.Resumed)
	return nil
}

func formatEvent(ev activity.Event) string {
	when := ev.Timestamp.Local().Format(time.DateTime)
	switch ev.Type {
	case activity.JobCreated:
		return fmt.Sprintf("%s  created    #%d %s", when, ev.JobID, ev.Title)
	case activity.DraftDiscarded:
		return fmt.Sprintf("%s  discarded  %s", when, orUntitled(ev.Title))
	case activity.DraftResumed:
		return fmt.Sprintf("%s  resumed    %s (%s)", when, orUntitled(ev.Title), ev.Step)
	}
	return fmt.Sprintf("%s  %s", when, ev.Type)
}

func orUntitled(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}
