package flow

import (
	"regexp"
	"strings"
)

var (
	flowHeaderRe  = regexp.MustCompile(`^#\s*Support Flow:\s*([A-Za-z0-9_.-]+)\s*$`)
	blockHeaderRe = regexp.MustCompile(`^##\s*block:\s*([A-Za-z0-9_.-]+)\s*$`)
	separatorRe   = regexp.MustCompile(`^\s*---\s*$`)
)

// section is one raw block chunk with its position in the document.
type section struct {
	blockID string
	line    int      // 1-based line of the "## block:" header
	body    []string // lines following the header, YAML
}

// splitDocument splits raw text into the flow id and ordered block sections.
// Section order is preserved; every section must open with a block header.
func splitDocument(src string) (string, []section, ErrorList) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return "", nil, ErrorList{{
			Code:    CodeFlowHeader,
			Line:    1,
			Message: "first line must be '# Support Flow: <flow_id>'",
		}}
	}

	m := flowHeaderRe.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return "", nil, ErrorList{{
			Code:    CodeFlowHeader,
			Line:    1,
			Message: "first line must be '# Support Flow: <flow_id>'",
		}}
	}
	flowID := m[1]

	var errs ErrorList
	var sections []section

	// Chunk the remainder on separator lines, remembering where each chunk
	// starts so errors stay position-aware.
	chunkStart := -1
	var chunk []string

	flush := func() {
		if chunkStart < 0 {
			return
		}
		if sec, err := newSection(chunk, chunkStart); err != nil {
			errs = append(errs, err)
		} else if sec != nil {
			sections = append(sections, *sec)
		}
		chunkStart = -1
		chunk = nil
	}

	for i, line := range lines[1:] {
		docLine := i + 2 // 1-based, offset past the header
		if separatorRe.MatchString(line) {
			flush()
			continue
		}
		if chunkStart < 0 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			chunkStart = docLine
		}
		chunk = append(chunk, line)
	}
	flush()

	return flowID, sections, errs
}

// newSection validates the chunk's block header. Returns (nil, nil) for
// all-blank chunks.
func newSection(lines []string, startLine int) (*section, *Error) {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
		startLine++
	}
	if len(lines) == 0 {
		return nil, nil
	}

	m := blockHeaderRe.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return nil, &Error{
			Code:    CodeBlockHeader,
			Line:    startLine,
			Message: "each block must start with '## block: <block_id>'",
		}
	}

	return &section{
		blockID: m[1],
		line:    startLine,
		body:    lines[1:],
	}, nil
}
