package domain

// Block type names as they appear in the flow document.
const (
	// TypeMessage displays text and moves on through its single "next" edge.
	TypeMessage = "message"
	// TypeMenu displays text plus an ordered set of buttons and halts for input.
	TypeMenu = "menu"
	// TypeMesMenu displays text with exactly one inline button.
	TypeMesMenu = "mes-menu"
)

// EntryBlockID is the identifier every flow must declare as its entry point.
const EntryBlockID = "start"

// Rules holds the per-block rendering directives.
type Rules struct {
	// HideOnNext instructs the transport to remove this block's rendered
	// message once the session leaves the block.
	HideOnNext bool `json:"hide_on_next"`

	// ReplaceMenu instructs the transport to replace the currently displayed
	// menu in place rather than appending a new one. Only meaningful when the
	// block is a Menu.
	ReplaceMenu bool `json:"replace_menu,omitempty"`
}

// Button is a labeled transition owned by a Menu or MesMenu block.
type Button struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Next string `json:"next"`
}

// Block is the closed set of flow graph nodes. The three implementations —
// Message, Menu, and MesMenu — are the only ones; consumers dispatch with an
// exhaustive type switch so a fourth block kind becomes a compile-visible
// change in every switch site.
type Block interface {
	// BlockID returns the unique identifier of the block.
	BlockID() string

	// BlockRules returns the rendering rules attached to the block.
	BlockRules() Rules

	// Outgoing returns the ordered transition targets. An empty result marks
	// the block as terminal.
	Outgoing() []string

	sealed()
}

// Message displays text and optionally continues to a single next block.
// A Message without Next is a terminal.
type Message struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Next  string `json:"next,omitempty"`
	Rules Rules  `json:"rules"`
}

func (b *Message) BlockID() string   { return b.ID }
func (b *Message) BlockRules() Rules { return b.Rules }

func (b *Message) Outgoing() []string {
	if b.Next == "" {
		return nil
	}
	return []string{b.Next}
}

func (*Message) sealed() {}

// Menu displays text plus an ordered list of buttons and waits for the user
// to press one of them.
type Menu struct {
	ID      string   `json:"id"`
	MenuID  string   `json:"menu_id"`
	Text    string   `json:"text"`
	Buttons []Button `json:"buttons"`
	Rules   Rules    `json:"rules"`
}

func (b *Menu) BlockID() string   { return b.ID }
func (b *Menu) BlockRules() Rules { return b.Rules }

func (b *Menu) Outgoing() []string {
	targets := make([]string, len(b.Buttons))
	for i, btn := range b.Buttons {
		targets[i] = btn.Next
	}
	return targets
}

func (*Menu) sealed() {}

// MesMenu displays text with exactly one inline button.
type MesMenu struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Button Button `json:"button"`
	Rules  Rules  `json:"rules"`
}

func (b *MesMenu) BlockID() string   { return b.ID }
func (b *MesMenu) BlockRules() Rules { return b.Rules }

func (b *MesMenu) Outgoing() []string {
	return []string{b.Button.Next}
}

func (*MesMenu) sealed() {}

// IsTerminal reports whether the block has no outgoing transition.
func IsTerminal(b Block) bool {
	return len(b.Outgoing()) == 0
}
