package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a conversational flow engine for support menus",
	Long:  `Espalier parses Markdown flow documents into validated transition graphs and drives button-menu sessions over them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("flow", "f", "flow.md", "Path to the flow document")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}
