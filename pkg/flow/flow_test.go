package flow_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
)

const validDoc = `# Support Flow: support_demo

## block: start
type: message
text: Welcome!
next: main_menu
rules:
  hide_on_next: false

---

## block: main_menu
type: menu
menu_id: main
text: Pick a topic
rules:
  hide_on_next: true
buttons:
  - id: billing
    text: Billing
    next: billing_info
  - id: bye
    text: Goodbye
    next: end

---

## block: billing_info
type: mes-menu
text: See the portal.
rules:
  hide_on_next: true
button:
  id: back
  text: Back
  next: main_menu

---

## block: end
type: message
text: Bye!
rules:
  hide_on_next: false
`

func errCodes(err error) []flow.Code {
	list := flow.Errors(err)
	out := make([]flow.Code, 0, len(list))
	for _, e := range list {
		out = append(out, e.Code)
	}
	return out
}

func TestParse_ValidDocument(t *testing.T) {
	f, err := flow.Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, "support_demo", f.ID())
	assert.Equal(t, "start", f.Entry())
	assert.Equal(t, 4, f.Len())

	// Document order is preserved.
	ids := make([]string, 0, f.Len())
	for _, b := range f.Blocks() {
		ids = append(ids, b.BlockID())
	}
	assert.Equal(t, []string{"start", "main_menu", "billing_info", "end"}, ids)

	menu, ok := f.Lookup("main_menu")
	require.True(t, ok)
	assert.Equal(t, []string{"billing_info", "end"}, menu.Outgoing())

	end, _ := f.Lookup("end")
	assert.True(t, domain.IsTerminal(end))
}

func TestParse_Idempotent(t *testing.T) {
	first, err := flow.Parse([]byte(validDoc))
	require.NoError(t, err)
	second, err := flow.Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, first.Len(), second.Len())
	for _, b := range first.Blocks() {
		other, ok := second.Lookup(b.BlockID())
		require.True(t, ok)
		assert.Equal(t, b, other)
	}
}

func TestParse_GraphErrors(t *testing.T) {
	t.Run("Missing Start Block", func(t *testing.T) {
		doc := `# Support Flow: f

## block: lonely
type: message
text: hi
rules:
  hide_on_next: false
`
		_, err := flow.Parse([]byte(doc))
		assert.Contains(t, errCodes(err), flow.CodeMissingStart)
	})

	t.Run("Invalid Next Target", func(t *testing.T) {
		doc := `# Support Flow: f

## block: start
type: message
text: hi
next: nowhere
rules:
  hide_on_next: false
`
		_, err := flow.Parse([]byte(doc))
		codes := errCodes(err)
		assert.Contains(t, codes, flow.CodeInvalidNext)
		// start -> nowhere leaves no resolvable terminal either.
		assert.Contains(t, codes, flow.CodeNoTerminal)
	})

	t.Run("No Terminal Block", func(t *testing.T) {
		doc := `# Support Flow: f

## block: start
type: message
text: ping
next: pong
rules:
  hide_on_next: false

---

## block: pong
type: message
text: pong
next: start
rules:
  hide_on_next: false
`
		_, err := flow.Parse([]byte(doc))
		assert.Equal(t, []flow.Code{flow.CodeNoTerminal}, errCodes(err))
	})

	t.Run("Duplicate Block ID Reported Once", func(t *testing.T) {
		doc := `# Support Flow: f

## block: start
type: message
text: one
rules:
  hide_on_next: false

---

## block: start
type: message
text: two
rules:
  hide_on_next: false

---

## block: start
type: message
text: three
rules:
  hide_on_next: false
`
		_, err := flow.Parse([]byte(doc))
		count := 0
		for _, c := range errCodes(err) {
			if c == flow.CodeDuplicateBlockID {
				count++
			}
		}
		assert.Equal(t, 1, count, "triplicated id must yield exactly one error")
	})

	t.Run("Duplicates Suppress Reference Checks", func(t *testing.T) {
		doc := `# Support Flow: f

## block: start
type: message
text: one
next: nowhere
rules:
  hide_on_next: false

---

## block: start
type: message
text: two
rules:
  hide_on_next: false
`
		_, err := flow.Parse([]byte(doc))
		codes := errCodes(err)
		assert.Contains(t, codes, flow.CodeDuplicateBlockID)
		assert.NotContains(t, codes, flow.CodeInvalidNext)
		assert.NotContains(t, codes, flow.CodeNoTerminal)
	})
}

func TestParse_CollectsAllErrors(t *testing.T) {
	// One broken document, several independent problems: every one of them
	// must be reported in a single pass.
	doc := `# Support Flow: f

## block: a
type: carousel
text: hi
rules:
  hide_on_next: false

---

## block: b
type: menu
menu_id: m
text: pick
rules:
  hide_on_next: true
buttons:
  - id: x
    text: X
    next: missing_target
`
	_, err := flow.Parse([]byte(doc))
	codes := errCodes(err)
	assert.Contains(t, codes, flow.CodeUnknownType)
	assert.Contains(t, codes, flow.CodeMissingStart)
	assert.Contains(t, codes, flow.CodeInvalidNext)
}

func TestFlow_Reachable(t *testing.T) {
	doc := validDoc + `
---

## block: orphan
type: message
text: never linked
rules:
  hide_on_next: false
`
	f, err := flow.Parse([]byte(doc))
	require.NoError(t, err, "unreachable blocks are legal")

	reachable := f.Reachable()
	assert.True(t, reachable["start"])
	assert.True(t, reachable["billing_info"])
	assert.False(t, reachable["orphan"])
}

// TestParse_RandomWellFormed generates random well-formed documents and
// checks the structural guarantee: a successful Parse means every transition
// target resolves to a block in the graph.
func TestParse_RandomWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		n := 3 + rng.Intn(8)
		ids := make([]string, n)
		ids[0] = "start"
		for i := 1; i < n; i++ {
			ids[i] = fmt.Sprintf("block_%d", i)
		}

		var sb strings.Builder
		sb.WriteString("# Support Flow: generated\n")
		for i, id := range ids {
			if i > 0 {
				sb.WriteString("\n---\n")
			}
			fmt.Fprintf(&sb, "\n## block: %s\n", id)
			if i == n-1 {
				// Last block is always terminal so the document validates.
				fmt.Fprintf(&sb, "type: message\ntext: t%d\nrules:\n  hide_on_next: false\n", i)
				continue
			}
			target := ids[1+rng.Intn(n-1)]
			switch rng.Intn(3) {
			case 0:
				fmt.Fprintf(&sb, "type: message\ntext: t%d\nnext: %s\nrules:\n  hide_on_next: %v\n",
					i, ids[n-1], rng.Intn(2) == 0)
			case 1:
				fmt.Fprintf(&sb, "type: menu\nmenu_id: m%d\ntext: t%d\nrules:\n  hide_on_next: true\n", i, i)
				fmt.Fprintf(&sb, "buttons:\n  - id: one\n    text: One\n    next: %s\n  - id: two\n    text: Two\n    next: %s\n",
					target, ids[n-1])
			case 2:
				fmt.Fprintf(&sb, "type: mes-menu\ntext: t%d\nrules:\n  hide_on_next: false\n", i)
				fmt.Fprintf(&sb, "button:\n  id: go\n  text: Go\n  next: %s\n", target)
			}
		}

		f, err := flow.Parse([]byte(sb.String()))
		require.NoError(t, err, "trial %d: %s", trial, sb.String())

		for _, b := range f.Blocks() {
			for _, next := range b.Outgoing() {
				_, ok := f.Lookup(next)
				assert.True(t, ok, "trial %d: dangling target %q", trial, next)
			}
		}
	}
}
