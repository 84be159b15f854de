// Package graph renders a validated flow as a Mermaid flowchart for
// documentation and debugging.
package graph

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
)

// GenerateMermaid produces Mermaid flowchart syntax for the flow.
// Semantic styling:
//   - entry block: ((circle))
//   - menu / mes-menu: [/parallelogram/] (waits for input)
//   - terminal: [[subroutine]]
//   - plain message: [rectangle]
//
// Button transitions carry the button text as the edge label.
func GenerateMermaid(f *flow.Flow) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, block := range f.Blocks() {
		safeID := sanitizeMermaidID(block.BlockID())

		opener, closer := "[", "]"
		switch {
		case block.BlockID() == f.Entry():
			opener, closer = "((", "))"
		case domain.IsTerminal(block):
			opener, closer = "[[", "]]"
		default:
			if _, isMessage := block.(*domain.Message); !isMessage {
				opener, closer = "[/", "/]"
			}
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, block.BlockID(), closer)

		switch blk := block.(type) {
		case *domain.Message:
			if blk.Next != "" {
				fmt.Fprintf(&sb, "    %s --> %s\n", safeID, sanitizeMermaidID(blk.Next))
			}
		case *domain.Menu:
			for _, btn := range blk.Buttons {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
					safeID, escapeMermaidLabel(btn.Text), sanitizeMermaidID(btn.Next))
			}
		case *domain.MesMenu:
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
				safeID, escapeMermaidLabel(blk.Button.Text), sanitizeMermaidID(blk.Button.Next))
		}
	}

	// Highlight unreachable blocks so authors spot dead branches.
	reachable := f.Reachable()
	var orphans []string
	for _, block := range f.Blocks() {
		if !reachable[block.BlockID()] {
			orphans = append(orphans, sanitizeMermaidID(block.BlockID()))
		}
	}
	if len(orphans) > 0 {
		sb.WriteString("\n    classDef orphan fill:#fde2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
		for _, id := range orphans {
			fmt.Fprintf(&sb, "    class %s orphan;\n", id)
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

func escapeMermaidLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
