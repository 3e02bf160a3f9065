package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recruitdash/recruitdash/internal/draftstore"
	"github.com/recruitdash/recruitdash/internal/review"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect or discard the saved job draft",
}

var draftShowFlags struct {
	diff     bool
	raw      bool
	template string
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved draft",
	Long: `Print the saved draft as it would appear on the review step.

--diff compares the draft with the revision saved before it.
--template renders it with a custom markdown template instead of the
built-in one.`,
	RunE: runDraftShow,
}

var draftDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Delete the saved draft",
	RunE:  runDraftDiscard,
}

func init() {
	draftShowCmd.Flags().BoolVarP(&draftShowFlags.diff, "diff", "d", false, "Show changes since the previous saved revision")
	draftShowCmd.Flags().BoolVar(&draftShowFlags.raw, "raw", false, "Print markdown without terminal styling")
	draftShowCmd.Flags().StringVarP(&draftShowFlags.template, "template", "t", "", "Custom review template file")

	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftDiscardCmd)
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	tmpl, err := review.LoadTemplate(draftShowFlags.template)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	defaults := wizard.Defaults{Country: a.Config().DefaultCountry, ApplicationForm: a.Config().ApplicationForm}
	data, err := a.Backend().Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	if len(data) == 0 {
		fmt.Println("No saved draft.")
		return nil
	}
	cur, err := wizard.DecodeSnapshot(data, defaults)
	if err != nil {
		return fmt.Errorf("failed to decode draft: %w", err)
	}
	if cur.IsInitial(defaults) {
		fmt.Println("No saved draft.")
		return nil
	}

	if draftShowFlags.diff {
		prevData, err := a.Backend().Previous(ctx)
		if errors.Is(err, draftstore.ErrNoPrevious) {
			fmt.Println("The draft has only one saved revision.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load previous draft: %w", err)
		}
		prev, err := wizard.DecodeSnapshot(prevData, defaults)
		if err != nil {
			return fmt.Errorf("failed to decode previous draft: %w", err)
		}
		diff := review.Diff(prev, cur)
		if diff == "" {
			fmt.Println("No changes since the previous revision.")
			return nil
		}
		fmt.Print(diff)
		return nil
	}

	md := review.Render(tmpl, review.VariablesFor(cur))
	fmt.Printf("Step: %s  (saved %s, backend %s)\n\n", cur.Step, cur.SavedAt.Local().Format("2006-01-02 15:04"), a.Backend().Name())
	if draftShowFlags.raw {
		fmt.Println(md)
		return nil
	}
	fmt.Println(review.Terminal(md, 0))
	return nil
}

func runDraftDiscard(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp(a)

	found, err := a.DiscardDraft(cmd.Context())
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("No saved draft.")
		return nil
	}
	fmt.Println("Draft discarded.")
	return nil
}
