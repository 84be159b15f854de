package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	mcpAdapter "github.com/espalier-dev/espalier/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [flow-document]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP server over stdio.
This lets AI agents drive a support flow as tools: start_session, press_button, get_graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := flowPath(cmd, args)
		levelStr, _ := cmd.Flags().GetString("log-level")

		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout.
		logger := logging.New(logging.ParseLevel(levelStr))

		engine, err := espalier.New(path, espalier.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading flow: %v\n", err)
			os.Exit(1)
		}

		log.SetOutput(os.Stderr)
		logger.Info("mcp server starting", "flow", engine.Flow().ID())

		srv := mcpAdapter.NewServer(engine, espalier.Version)
		if err := srv.ServeStdio(); err != nil {
			logger.Error("mcp server failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
