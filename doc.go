/*
Package espalier is a deterministic menu-flow engine for building
conversational support bots.

It parses a small markdown-based document format (a "flow") into an immutable
directed graph of typed blocks, and drives per-user navigation through that
graph in response to discrete button-press events. Each step yields
transport-agnostic render descriptors; the host application (Telegram
adapter, HTTP server, CLI) maps those onto its own message primitives.

# Concept

A flow document declares blocks of three kinds: plain messages, menus with
buttons, and single-button messages. The engine validates the whole document
up front — unique ids, resolvable transitions, a "start" entry block, at
least one terminal — and rejects it wholesale on any error. At runtime the
engine owns one mutable session per user and guarantees at most one in-flight
transition per session id.

# Usage

	eng, err := espalier.New("./support.flow.md")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Start a session at the entry block.
	renders, err := eng.Start(ctx, "chat-42")
	if err != nil {
		log.Fatal(err)
	}
	show(renders)

	// Advance on a button press. Invalid selectors are recoverable: the
	// session stays put and the press should be surfaced as a no-op.
	renders, err = eng.Advance(ctx, "chat-42", "billing")
	if errors.Is(err, domain.ErrInvalidSelector) {
		return // ignore the tap
	}
	show(renders)
*/
package espalier
