package main

import (
	"fmt"
	"os"

	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow-document]",
	Short: "Check a flow document for consistency",
	Long:  `Parses the flow document and reports every structural, field, and graph error at once. Warns about unreachable blocks.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := flowPath(cmd, args)

		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", path, err)
			os.Exit(1)
		}

		f, err := flow.Parse(src)
		if err != nil {
			fmt.Printf("Validation failed for %s:\n", path)
			for _, e := range flow.Errors(err) {
				fmt.Printf("  %v\n", e)
			}
			os.Exit(1)
		}

		// Unreachable blocks are legal but usually a mistake.
		reachable := f.Reachable()
		for _, b := range f.Blocks() {
			if !reachable[b.BlockID()] {
				fmt.Printf("Warning: block '%s' is unreachable from '%s'\n", b.BlockID(), f.Entry())
			}
		}

		fmt.Printf("Flow '%s' is valid: %d blocks ✅\n", f.ID(), f.Len())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// flowPath resolves the document path from the positional arg or --flow.
func flowPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("flow")
	if !cmd.Flags().Changed("flow") && len(args) > 0 {
		path = args[0]
	}
	return path
}
