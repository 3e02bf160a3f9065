package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recruitdash/recruitdash/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the ATS API key",
	Long: `Manage the ATS API key stored in the OS keychain.

The ` + secrets.EnvAPIKey + ` environment variable takes precedence over
the keychain when set.`,
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the API key for the current profile",
	Long: `Store the API key for the current profile.

The key is read from standard input when not given as an argument, which
keeps it out of shell history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSetKey,
}

var authClearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the stored API key for the current profile",
	RunE:  runAuthClearKey,
}

func init() {
	authCmd.AddCommand(authSetKeyCmd)
	authCmd.AddCommand(authClearKeyCmd)
}

func runAuthSetKey(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Fprint(os.Stderr, "API key: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	if err := secrets.SetAPIKey(cfg.Profile, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	fmt.Printf("API key stored for profile %q.\n", cfg.Profile)
	return nil
}

func runAuthClearKey(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := secrets.DeleteAPIKey(cfg.Profile); err != nil {
		return fmt.Errorf("failed to remove API key: %w", err)
	}
	fmt.Printf("API key removed for profile %q.\n", cfg.Profile)
	return nil
}
