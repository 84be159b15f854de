package runtime

import (
	"github.com/espalier-dev/espalier/pkg/domain"
)

// project converts one block into its transport-agnostic render descriptor.
// Pure: the result is built strictly from the block's declared fields plus
// the hide instruction computed by the caller. The type switch is exhaustive
// over the closed Block set.
func project(b domain.Block, hidePrevious bool) domain.Render {
	r := domain.Render{
		BlockID:      b.BlockID(),
		HidePrevious: hidePrevious,
		Terminal:     domain.IsTerminal(b),
	}

	switch blk := b.(type) {
	case *domain.Message:
		r.Text = blk.Text

	case *domain.Menu:
		r.Text = blk.Text
		r.ReplaceInPlace = blk.Rules.ReplaceMenu
		r.Buttons = make([]domain.ButtonView, len(blk.Buttons))
		for i, btn := range blk.Buttons {
			r.Buttons[i] = domain.ButtonView{ID: btn.ID, Text: btn.Text}
		}

	case *domain.MesMenu:
		r.Text = blk.Text
		r.Buttons = []domain.ButtonView{{ID: blk.Button.ID, Text: blk.Button.Text}}
	}

	return r
}
