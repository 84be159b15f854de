package domain

// ButtonView is the transport-facing projection of a Button. It deliberately
// omits the transition target: transports echo the ID back through Advance.
type ButtonView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Render is the transport-agnostic instruction for presenting one block.
// It is built strictly from the block's declared fields plus the applied
// rules; nothing is accumulated from history.
type Render struct {
	// BlockID names the block this descriptor was projected from.
	BlockID string `json:"block_id"`

	// Text is the message body to display.
	Text string `json:"text"`

	// Buttons is the ordered button list, empty for plain messages.
	Buttons []ButtonView `json:"buttons,omitempty"`

	// HidePrevious instructs the transport to remove the previously rendered
	// message before showing this one. Derived from the outgoing block's
	// hide_on_next rule.
	HidePrevious bool `json:"hide_previous"`

	// ReplaceInPlace instructs the transport to edit the currently displayed
	// menu instead of appending a new message. Derived from this block's
	// replace_menu rule.
	ReplaceInPlace bool `json:"replace_in_place"`

	// Terminal marks that the session reached a block with no outgoing
	// transition; no further Advance is meaningful until a fresh Start.
	Terminal bool `json:"terminal"`
}
