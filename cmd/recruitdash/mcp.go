package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recruitdash/recruitdash/internal/mcpserver"
)

var mcpFlags struct {
	addr string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the job wizard to AI agents over MCP",
	Long: `Serve the job wizard over the Model Context Protocol (streamable HTTP).

Agents drive the same wizard as the terminal UI: they fill in fields with
wizard-update, move between steps and submit with wizard-next. The draft is
shared with 'recruitdash job new', so a job started by an agent can be
finished by hand and the other way around.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpFlags.addr, "addr", "a", "", "Listen address (default: mcp_addr from config)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	client, err := a.Client()
	if err != nil {
		return err
	}
	ctrl, err := a.Wizard(ctx, nil)
	if err != nil {
		return err
	}

	addr := mcpFlags.addr
	if addr == "" {
		addr = a.Config().MCPAddr
	}
	srv := mcpserver.New(ctrl, client)
	if _, err := srv.Start(addr); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	fmt.Printf("MCP server listening at %s\n", srv.URL())
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop MCP server: %w", err)
	}
	return nil
}
