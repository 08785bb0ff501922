package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stakewatch/stakewatch/internal/config"
	"github.com/stakewatch/stakewatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis engine as an MCP server over stdio",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config warning: %v (using defaults)\n", err)
	}

	rt, err := server.NewRuntime(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	slog.Info("MCP server starting",
		"name", cfg.Server.Name,
		"registry_mode", cfg.Registry.Mode,
		"operations", len(rt.Ops.List()))

	if err := server.ServeStdio(server.NewMCPServer(rt, version)); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
