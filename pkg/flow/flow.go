package flow

import (
	"github.com/espalier-dev/espalier/pkg/domain"
)

// Flow is the validated, immutable flow graph. It is safe for unrestricted
// concurrent reads once built; there is no way to mutate it afterwards.
type Flow struct {
	id     string
	entry  string
	blocks map[string]domain.Block
	order  []string
}

// Parse runs the full build-time pipeline on a raw document: split, per-block
// parse, graph validation. It returns the immutable Flow, or an ErrorList
// carrying every error found — never a partial graph.
func Parse(src []byte) (*Flow, error) {
	flowID, sections, errs := splitDocument(string(src))
	if errs.has(CodeFlowHeader) {
		return nil, errs
	}

	ordered := make([]domain.Block, 0, len(sections))
	var fieldErrs ErrorList
	for _, sec := range sections {
		block, blockErrs := parseSection(sec)
		fieldErrs = append(fieldErrs, blockErrs...)
		if block != nil {
			ordered = append(ordered, block)
		}
	}

	// Deterministic report order: structural errors, identifier invariants,
	// per-block field errors in document order, then reference invariants.
	idErrs, refErrs := validateGraph(flowID, ordered)
	errs = append(errs, idErrs...)
	errs = append(errs, fieldErrs...)
	errs = append(errs, refErrs...)
	if len(errs) > 0 {
		return nil, errs
	}

	return newFlow(flowID, ordered), nil
}

func newFlow(flowID string, ordered []domain.Block) *Flow {
	blocks := make(map[string]domain.Block, len(ordered))
	order := make([]string, 0, len(ordered))
	for _, b := range ordered {
		blocks[b.BlockID()] = b
		order = append(order, b.BlockID())
	}
	return &Flow{
		id:     flowID,
		entry:  domain.EntryBlockID,
		blocks: blocks,
		order:  order,
	}
}

// ID returns the flow identifier from the document header.
func (f *Flow) ID() string { return f.id }

// Entry returns the entry block id.
func (f *Flow) Entry() string { return f.entry }

// Len returns the number of blocks.
func (f *Flow) Len() int { return len(f.order) }

// Lookup returns the block with the given id.
func (f *Flow) Lookup(blockID string) (domain.Block, bool) {
	b, ok := f.blocks[blockID]
	return b, ok
}

// Outgoing returns the ordered transition targets of a block, or nil for an
// unknown or terminal block.
func (f *Flow) Outgoing(blockID string) []string {
	b, ok := f.blocks[blockID]
	if !ok {
		return nil
	}
	return b.Outgoing()
}

// Blocks returns every block in document order. The slice is a copy; the
// blocks themselves are shared and must be treated as read-only.
func (f *Flow) Blocks() []domain.Block {
	out := make([]domain.Block, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.blocks[id])
	}
	return out
}

// Reachable computes the set of block ids reachable from the entry block.
// Used by tooling; an unreachable block is not a validation error.
func (f *Flow) Reachable() map[string]bool {
	visited := make(map[string]bool, len(f.blocks))
	queue := []string{f.entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		for _, target := range f.Outgoing(id) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}
	return visited
}
