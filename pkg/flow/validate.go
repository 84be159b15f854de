package flow

import (
	"fmt"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// validateGraph runs the graph-level invariants over the parsed block set in
// a fixed order so error reporting stays deterministic. idErrs covers flow id
// presence, duplicate ids, and entry existence; refErrs covers transition
// resolution and terminal existence. The caller weaves the parser's per-block
// field errors between the two, preserving the documented check sequence.
// Per-type field shape and button uniqueness are enforced by the parser.
func validateGraph(flowID string, ordered []domain.Block) (idErrs, refErrs ErrorList) {
	errs := ErrorList{}

	if flowID == "" {
		// The splitter rejects documents without a header, so this only
		// triggers when blocks are assembled programmatically.
		errs = append(errs, &Error{Code: CodeFlowHeader, Message: "flow id is required"})
	}

	// Duplicate scan: one error per duplicated id, reported at the first
	// repeated occurrence.
	byID := make(map[string]domain.Block, len(ordered))
	reported := make(map[string]bool)
	for _, b := range ordered {
		id := b.BlockID()
		if _, exists := byID[id]; exists {
			if !reported[id] {
				reported[id] = true
				errs = append(errs, &Error{
					Code:    CodeDuplicateBlockID,
					BlockID: id,
					Message: fmt.Sprintf("duplicate block id %q", id),
				})
			}
			continue
		}
		byID[id] = b
	}

	if _, ok := byID[domain.EntryBlockID]; !ok {
		errs = append(errs, &Error{
			Code:    CodeMissingStart,
			Message: fmt.Sprintf("entry block %q is required", domain.EntryBlockID),
		})
	}

	// Duplicate ids make transition targets ambiguous; resolving against the
	// keep-first map would report misleading errors, so stop here.
	if len(reported) > 0 {
		return errs, nil
	}
	idErrs = errs
	errs = ErrorList{}

	terminalExists := false
	for _, b := range ordered {
		for _, target := range b.Outgoing() {
			if _, ok := byID[target]; !ok {
				errs = append(errs, &Error{
					Code:    CodeInvalidNext,
					BlockID: b.BlockID(),
					Message: fmt.Sprintf("unknown next block %q", target),
				})
			}
		}
		if domain.IsTerminal(b) {
			terminalExists = true
		}
	}

	// A block named "end" is just one concrete instance of the generic
	// terminal definition; it only counts if it actually has no outgoing
	// transitions, which the loop above already covers.
	if !terminalExists {
		errs = append(errs, &Error{
			Code:    CodeNoTerminal,
			Message: "at least one terminal block (no outgoing transitions) is required",
		})
	}

	return idErrs, errs
}
