package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/recruitdash/recruitdash/internal/app"
	"github.com/recruitdash/recruitdash/internal/config"
	"github.com/recruitdash/recruitdash/internal/hooks"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials, ATS connectivity and storage",
	RunE:  runDoctor,
}

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	styleSkip = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

type checker struct {
	failed int
}

func (c *checker) ok(format string, v ...any) {
	fmt.Println(styleOK.Render("✓") + " " + fmt.Sprintf(format, v...))
}

func (c *checker) fail(format string, v ...any) {
	c.failed++
	fmt.Println(styleFail.Render("✗") + " " + fmt.Sprintf(format, v...))
}

func (c *checker) skip(format string, v ...any) {
	fmt.Println(styleSkip.Render("-") + " " + fmt.Sprintf(format, v...))
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var c checker

	cfg, err := config.Load()
	if err != nil {
		c.fail("config: %v", err)
		return fmt.Errorf("%d check(s) failed", c.failed)
	}
	if rootFlags.profile != "" {
		cfg.Profile = rootFlags.profile
	}
	if config.Exists() {
		c.ok("config: loaded")
	} else {
		c.skip("config: no config file, using defaults (run 'recruitdash setup')")
	}
	if err := cfg.Validate(); err != nil {
		c.fail("config: %v", err)
		return fmt.Errorf("%d check(s) failed", c.failed)
	}
	fmt.Printf("  profile %s, storage %s, ATS %s\n", cfg.Profile, cfg.Storage, cfg.ATSURL)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := app.Open(ctx, cfg, app.Options{})
	if err != nil {
		c.fail("storage: %v", err)
		return fmt.Errorf("%d check(s) failed", c.failed)
	}
	defer closeApp(a)

	mode := "node"
	if a.IsPrimary() {
		mode = "primary"
	}
	c.ok("storage: %s backend, NATS %s mode", a.Backend().Name(), mode)
	if data, err := a.Backend().Load(ctx); err != nil {
		c.fail("draft: %v", err)
	} else if len(data) > 0 {
		c.ok("draft: a saved draft is waiting ('recruitdash draft show')")
	} else {
		c.ok("draft: none saved")
	}

	wd, _ := os.Getwd()
	if hookCfg, err := hooks.LoadConfig(wd); err != nil {
		c.fail("hooks: %v", err)
	} else if hookCfg == nil {
		c.skip("hooks: no %s", hooks.ConfigFileName)
	} else {
		c.ok("hooks: %s loaded", hooks.ConfigFileName)
	}

	client, err := a.Client()
	switch {
	case app.IsNoAPIKey(err):
		c.fail("api key: %v", err)
		c.skip("ats: not checked without an API key")
	case err != nil:
		c.fail("ats client: %v", err)
	default:
		c.ok("api key: found")
		if err := client.Ping(ctx); err != nil {
			c.fail("ats: %v", err)
		} else {
			c.ok("ats: reachable")
			if ref, err := client.Prefetch(ctx); err != nil {
				c.fail("reference data: %v", err)
			} else {
				c.ok("reference data: %d recruiters, %d workflows, %d categories", len(ref.Recruiters), len(ref.Workflows), len(ref.Categories))
			}
		}
	}

	if c.failed > 0 {
		return fmt.Errorf("%d check(s) failed", c.failed)
	}
	return nil
}
