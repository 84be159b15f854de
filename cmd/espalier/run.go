package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/internal/presentation/tui"
	"github.com/espalier-dev/espalier/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flow-document]",
	Short: "Run the flow interactively in the terminal",
	Long:  `Starts a local session over the flow document and walks it with numbered button menus.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := flowPath(cmd, args)
		plain, _ := cmd.Flags().GetBool("plain")
		levelStr, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logging.ParseLevel(levelStr))
		engine, err := espalier.New(path, espalier.WithLogger(logger))
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		if err := runInteractive(cmd.Context(), engine, plain); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("plain", false, "Disable markdown rendering (raw text output)")

	// Make 'run' the default if no command is provided.
	rootCmd.Run = runCmd.Run
}

func runInteractive(ctx context.Context, engine *espalier.Engine, plain bool) error {
	tui.PrintBanner(espalier.Version)

	render := func(text string) string { return text + "\n" }
	if !plain {
		markdown := tui.NewRenderer()
		render = func(text string) string {
			out, err := markdown(text)
			if err != nil {
				return text + "\n"
			}
			return out
		}
	}

	sessionID := uuid.NewString()
	renders, err := engine.Start(ctx, sessionID)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		last := printRenders(renders, render)
		if last.Terminal {
			fmt.Println("Flow finished. Bye!")
			return nil
		}

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		input := strings.TrimSpace(line)
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return nil
		}

		renders, err = engine.Advance(ctx, sessionID, resolveInput(last, input))
		if errors.Is(err, domain.ErrInvalidSelector) {
			fmt.Println("Unknown choice. Pick a number or a button id.")
			renders = []domain.Render{last}
			continue
		}
		if err != nil {
			return err
		}
	}
}

// printRenders writes the step output and returns the final descriptor, the
// one the session is now parked on.
func printRenders(renders []domain.Render, render func(string) string) domain.Render {
	for _, r := range renders {
		fmt.Print(render(r.Text))
		for i, b := range r.Buttons {
			fmt.Printf("  [%d] %s\n", i+1, b.Text)
		}
		if len(r.Buttons) > 0 {
			fmt.Println()
		}
	}
	return renders[len(renders)-1]
}

// resolveInput maps a numbered choice onto the button id; anything else is
// passed through as a raw selector.
func resolveInput(r domain.Render, input string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(r.Buttons) {
		return r.Buttons[n-1].ID
	}
	return input
}
