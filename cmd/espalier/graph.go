package main

import (
	"fmt"
	"os"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow-document]",
	Short: "Export the flow graph visualization",
	Long:  `Parses the flow document and outputs a Mermaid diagram (graph TD) representing the transition logic.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := flowPath(cmd, args)

		engine, err := espalier.New(path)
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(engine.Flow()))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
