package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders block text as markdown using
// glamour, auto-detecting the terminal background.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
