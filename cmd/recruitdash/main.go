package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/recruitdash/recruitdash/internal/config"
	"github.com/recruitdash/recruitdash/internal/logger"
)

const (
	logoText1 = "█▀█ █▀▀ █▀▀ █▀█ █ █ █ ▀█▀ █▀▄ ▄▀█ █▀ █ █"
	logoText2 = "█▀▄ ██▄ █▄▄ █▀▄ █▄█ █  █  █▄▀ █▀█ ▄█ █▀█"
)

// Version set via ldflags during build
var version = "dev"

var rootFlags struct {
	profile string
}

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recruitdash",
	Short: "Create ATS job postings from the terminal",
}

func renderLogo() string {
	line1 := lipgloss.NewStyle().Foreground(lipgloss.Color("#cba6f7")).Render(logoText1)
	line2 := lipgloss.NewStyle().Foreground(lipgloss.Color("#b4befe")).Render(logoText2)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

recruitdash walks you through creating a job in your applicant tracking
system: a six step wizard with live organization search, scoped department
and contact lookups, and a draft that survives restarts. The same wizard is
exposed to AI agents over MCP.

Configuration is loaded from multiple sources with the following precedence:
  Environment variables > Project config > Global config > Defaults

Project config: ./recruitdash.yml
Global config: ~/.config/recruitdash/recruitdash.yml`

	rootCmd.PersistentFlags().StringVar(&rootFlags.profile, "profile", "", "ATS profile (default: from config)")

	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
}

// loadConfig loads and validates configuration, applies the global flags
// and configures logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootFlags.profile != "" {
		cfg.Profile = rootFlags.profile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w\n\nRun 'recruitdash doctor' for details", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}
