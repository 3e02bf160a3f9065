package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recruitdash/recruitdash/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
	atsURL  string
	storage string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create recruitdash configuration file",
	Long: `Create a recruitdash configuration file with sensible defaults.

By default, creates a global config at ~/.config/recruitdash/recruitdash.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.atsURL, "ats-url", "", "ATS API base URL")
	setupCmd.Flags().StringVar(&setupFlags.storage, "storage", "", "Draft storage backend: nats, file or redis")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Defaults()
	if setupFlags.atsURL != "" {
		cfg.ATSURL = setupFlags.atsURL
	}
	if setupFlags.storage != "" {
		cfg.Storage = setupFlags.storage
	}
	if rootFlags.profile != "" {
		cfg.Profile = rootFlags.profile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Run 'recruitdash auth set-key' to store your ATS API key, then 'recruitdash job new'.")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
