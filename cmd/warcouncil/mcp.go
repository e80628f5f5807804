package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mcpAdapter "github.com/athola/warcouncil/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts warcouncil as an MCP server over stdio, so AI agents can start
deliberations and inspect sessions as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := wireApp(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		// Ensure logs don't corrupt JSON-RPC on Stdout.
		log.SetOutput(os.Stderr)
		slog.SetDefault(app.logger)

		srv := mcpAdapter.NewServer(app.executor, app.store)
		slog.Info("starting warcouncil MCP server (stdio)")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP server execution failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
