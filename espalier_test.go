package espalier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
)

func TestEngine_EndToEnd(t *testing.T) {
	engine, err := espalier.New("testdata/support.flow.md")
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "support_demo", engine.Flow().ID())

	// Start walks through the welcome message into the menu.
	renders, err := engine.Start(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, renders, 2)
	assert.Equal(t, "start", renders[0].BlockID)
	assert.Equal(t, "main_menu", renders[1].BlockID)
	require.Len(t, renders[1].Buttons, 2)

	// Billing and back again: the menu comes back as an in-place replace.
	renders, err = engine.Advance(ctx, "user-1", "billing")
	require.NoError(t, err)
	assert.Equal(t, "billing_info", renders[0].BlockID)
	assert.True(t, renders[0].HidePrevious)

	renders, err = engine.Advance(ctx, "user-1", "back")
	require.NoError(t, err)
	assert.Equal(t, "main_menu", renders[0].BlockID)
	assert.True(t, renders[0].HidePrevious, "billing_info has hide_on_next true")
	assert.True(t, renders[0].ReplaceInPlace)

	// Operator handoff ends the flow.
	renders, err = engine.Advance(ctx, "user-1", "operator")
	require.NoError(t, err)
	assert.True(t, renders[len(renders)-1].Terminal)

	_, err = engine.Advance(ctx, "user-1", "operator")
	assert.ErrorIs(t, err, domain.ErrFlowTerminated)

	sessions, err := engine.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, sessions)

	require.NoError(t, engine.Reset(ctx, "user-1"))
	sessions, err = engine.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestNew_ReportsAllDocumentErrors(t *testing.T) {
	doc := `# Support Flow: broken

## block: a
type: carousel
text: x
rules:
  hide_on_next: false
`
	_, err := espalier.NewFromSource([]byte(doc))
	require.Error(t, err)

	list := flow.Errors(err)
	require.NotEmpty(t, list)

	found := map[flow.Code]bool{}
	for _, e := range list {
		found[e.Code] = true
	}
	assert.True(t, found[flow.CodeUnknownType])
	assert.True(t, found[flow.CodeMissingStart])
}

func TestEngine_Reload(t *testing.T) {
	engine, err := espalier.New("testdata/support.flow.md")
	require.NoError(t, err)

	original := engine.Flow().Len()

	t.Run("Invalid Document Keeps Old Graph", func(t *testing.T) {
		err := engine.Reload([]byte("not a flow document"))
		require.Error(t, err)
		assert.Equal(t, original, engine.Flow().Len())
	})

	t.Run("Valid Document Swaps Graph", func(t *testing.T) {
		replacement := `# Support Flow: replacement

## block: start
type: message
text: maintenance window
rules:
  hide_on_next: false
`
		require.NoError(t, engine.Reload([]byte(replacement)))
		assert.Equal(t, "replacement", engine.Flow().ID())
		assert.Equal(t, 1, engine.Flow().Len())
	})
}
