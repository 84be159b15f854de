package flow

import (
	"fmt"
	"strings"
)

// Code classifies a build-time document error.
type Code string

// Build-time error codes surfaced by Parse. They cover the splitter
// (structure), the block parser (field shape) and the validator (graph
// invariants).
const (
	CodeFlowHeader        Code = "E_FLOW_HEADER"
	CodeBlockHeader       Code = "E_BLOCK_HEADER"
	CodeBlockBody         Code = "E_BLOCK_BODY"
	CodeUnknownType       Code = "E_UNKNOWN_TYPE"
	CodeMissingField      Code = "E_MISSING_FIELD"
	CodeRulesInvalid      Code = "E_RULES_INVALID"
	CodeTypeFields        Code = "E_TYPE_FIELDS"
	CodeButtonInvalid     Code = "E_BUTTON_INVALID"
	CodeDuplicateButtonID Code = "E_DUPLICATE_BUTTON_ID"
	CodeDuplicateBlockID  Code = "E_DUPLICATE_BLOCK_ID"
	CodeMissingStart      Code = "E_MISSING_START"
	CodeInvalidNext       Code = "E_INVALID_NEXT"
	CodeNoTerminal        Code = "E_NO_TERMINAL"
)

// Error is a single position-aware document error.
type Error struct {
	Code    Code   `json:"code"`
	BlockID string `json:"block_id,omitempty"`
	Line    int    `json:"line,omitempty"` // 1-based line in the document, 0 if not applicable
	Message string `json:"message"`
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.BlockID != "" {
		fmt.Fprintf(&sb, " (block=%s)", e.BlockID)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", e.Line)
	}
	return sb.String()
}

// ErrorList aggregates every error found in one document. A flow with a
// non-empty list is rejected wholesale.
type ErrorList []*Error

func (l ErrorList) Error() string {
	if len(l) == 1 {
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d flow document errors:\n", len(l))
	for i, e := range l {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e.Error())
	}
	return sb.String()
}

// Errors unpacks an ErrorList from err, if present.
func Errors(err error) ErrorList {
	if list, ok := err.(ErrorList); ok {
		return list
	}
	return nil
}

// has reports whether the list contains at least one error with the code.
func (l ErrorList) has(code Code) bool {
	for _, e := range l {
		if e.Code == code {
			return true
		}
	}
	return false
}
