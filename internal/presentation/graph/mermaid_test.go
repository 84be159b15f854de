package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/pkg/flow"
)

const supportDoc = `# Support Flow: support

## block: start
type: message
text: Welcome!
next: main-menu
rules:
  hide_on_next: false

---

## block: main-menu
type: menu
menu_id: main
text: Pick a topic
rules:
  hide_on_next: true
buttons:
  - id: billing
    text: Billing "FAQ"
    next: end

---

## block: end
type: message
text: Bye!
rules:
  hide_on_next: false

---

## block: orphan
type: message
text: dead branch
next: end
rules:
  hide_on_next: false
`

func TestGenerateMermaid(t *testing.T) {
	f, err := flow.Parse([]byte(supportDoc))
	require.NoError(t, err)

	out := graph.GenerateMermaid(f)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))

	// Entry is a circle, menus are parallelograms, terminals subroutines.
	assert.Contains(t, out, `start(("start"))`)
	assert.Contains(t, out, `main_menu[/"main-menu"/]`)
	assert.Contains(t, out, `end[["end"]]`)

	// Hyphenated ids are sanitized in edges too.
	assert.Contains(t, out, `start --> main_menu`)

	// Button edges carry the label with quotes escaped.
	assert.Contains(t, out, `main_menu -- "Billing 'FAQ'" --> end`)

	// Unreachable blocks get the orphan class.
	assert.Contains(t, out, "classDef orphan")
	assert.Contains(t, out, "class orphan orphan;")
}
