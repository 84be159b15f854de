package flow

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// rawRules mirrors the document's rules mapping. Pointers distinguish
// "absent" from "false".
type rawRules struct {
	HideOnNext  *bool `mapstructure:"hide_on_next"`
	ReplaceMenu *bool `mapstructure:"replace_menu"`
}

// rawButton mirrors one button mapping.
type rawButton struct {
	ID   string `mapstructure:"id"`
	Text string `mapstructure:"text"`
	Next string `mapstructure:"next"`
}

// parseSection converts one raw section into a typed Block. Pure: no state is
// shared between calls. Field exclusivity is checked here, exactly once, so
// the validator only deals with graph-level invariants.
func parseSection(sec section) (domain.Block, ErrorList) {
	var errs ErrorList
	fail := func(code Code, format string, args ...any) {
		errs = append(errs, &Error{
			Code:    code,
			BlockID: sec.blockID,
			Line:    sec.line,
			Message: fmt.Sprintf(format, args...),
		})
	}

	payload := map[string]any{}
	body := strings.TrimSpace(strings.Join(sec.body, "\n"))
	if body != "" {
		if err := yaml.Unmarshal([]byte(body), &payload); err != nil {
			fail(CodeBlockBody, "block body must be a YAML mapping: %v", err)
			return nil, errs
		}
	}

	blockType := asString(payload["type"])
	switch blockType {
	case domain.TypeMessage, domain.TypeMenu, domain.TypeMesMenu:
	default:
		fail(CodeUnknownType, "unknown block type %q", blockType)
	}

	text := asString(payload["text"])
	if text == "" {
		fail(CodeMissingField, "field 'text' is required")
	}

	rules := parseRules(payload, &errs, sec)

	var block domain.Block
	switch blockType {
	case domain.TypeMessage:
		for _, forbidden := range []string{"buttons", "button", "menu_id"} {
			if _, ok := payload[forbidden]; ok {
				fail(CodeTypeFields, "type 'message' cannot contain %q", forbidden)
			}
		}
		block = &domain.Message{
			ID:    sec.blockID,
			Text:  text,
			Next:  asString(payload["next"]),
			Rules: rules,
		}

	case domain.TypeMenu:
		if _, ok := payload["button"]; ok {
			fail(CodeTypeFields, "type 'menu' cannot contain singular 'button'")
		}
		menuID := asString(payload["menu_id"])
		if menuID == "" {
			fail(CodeMissingField, "field 'menu_id' is required for type 'menu'")
		}
		var buttons []domain.Button
		if rawList, ok := payload["buttons"].([]any); ok && len(rawList) > 0 {
			buttons = parseButtons(rawList, &errs, sec)
		} else {
			fail(CodeMissingField, "field 'buttons' is required for type 'menu'")
		}
		block = &domain.Menu{
			ID:      sec.blockID,
			MenuID:  menuID,
			Text:    text,
			Buttons: buttons,
			Rules:   rules,
		}

	case domain.TypeMesMenu:
		for _, forbidden := range []string{"buttons", "menu_id"} {
			if _, ok := payload[forbidden]; ok {
				fail(CodeTypeFields, "type 'mes-menu' cannot contain %q", forbidden)
			}
		}
		var button domain.Button
		if raw, ok := payload["button"].(map[string]any); ok {
			if buttons := parseButtons([]any{any(raw)}, &errs, sec); len(buttons) == 1 {
				button = buttons[0]
			}
		} else {
			fail(CodeMissingField, "field 'button' is required for type 'mes-menu'")
		}
		block = &domain.MesMenu{
			ID:     sec.blockID,
			Text:   text,
			Button: button,
			Rules:  rules,
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return block, nil
}

// parseRules decodes the rules mapping strictly: unknown keys and non-boolean
// values are E_RULES_INVALID, a missing hide_on_next is E_MISSING_FIELD.
func parseRules(payload map[string]any, errs *ErrorList, sec section) domain.Rules {
	appendErr := func(code Code, msg string) {
		*errs = append(*errs, &Error{Code: code, BlockID: sec.blockID, Line: sec.line, Message: msg})
	}

	rawValue, ok := payload["rules"]
	if !ok {
		appendErr(CodeMissingField, "field 'rules' is required")
		return domain.Rules{}
	}
	mapping, ok := rawValue.(map[string]any)
	if !ok {
		appendErr(CodeRulesInvalid, "'rules' must be a mapping")
		return domain.Rules{}
	}

	var raw rawRules
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &raw,
		ErrorUnused: true,
	})
	if err != nil {
		appendErr(CodeRulesInvalid, err.Error())
		return domain.Rules{}
	}
	if err := dec.Decode(mapping); err != nil {
		appendErr(CodeRulesInvalid, fmt.Sprintf("invalid 'rules': %v", err))
		return domain.Rules{}
	}

	if raw.HideOnNext == nil {
		appendErr(CodeMissingField, "field 'rules.hide_on_next' is required")
		return domain.Rules{}
	}

	rules := domain.Rules{HideOnNext: *raw.HideOnNext}
	if raw.ReplaceMenu != nil {
		rules.ReplaceMenu = *raw.ReplaceMenu
	}
	return rules
}

// parseButtons decodes a button list, enforcing required fields and per-block
// button id uniqueness.
func parseButtons(rawList []any, errs *ErrorList, sec section) []domain.Button {
	appendErr := func(code Code, msg string) {
		*errs = append(*errs, &Error{Code: code, BlockID: sec.blockID, Line: sec.line, Message: msg})
	}

	buttons := make([]domain.Button, 0, len(rawList))
	seen := make(map[string]bool, len(rawList))

	for _, item := range rawList {
		mapping, ok := item.(map[string]any)
		if !ok {
			appendErr(CodeButtonInvalid, "button entry must be a mapping")
			continue
		}

		var raw rawButton
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &raw,
			ErrorUnused: true,
		})
		if err != nil {
			appendErr(CodeButtonInvalid, err.Error())
			continue
		}
		if err := dec.Decode(mapping); err != nil {
			appendErr(CodeButtonInvalid, fmt.Sprintf("invalid button: %v", err))
			continue
		}

		raw.ID = strings.TrimSpace(raw.ID)
		raw.Text = strings.TrimSpace(raw.Text)
		raw.Next = strings.TrimSpace(raw.Next)
		if raw.ID == "" || raw.Text == "" || raw.Next == "" {
			appendErr(CodeButtonInvalid, "button must include 'id', 'text', and 'next'")
			continue
		}
		if seen[raw.ID] {
			appendErr(CodeDuplicateButtonID, fmt.Sprintf("duplicate button id %q", raw.ID))
			continue
		}
		seen[raw.ID] = true
		buttons = append(buttons, domain.Button{ID: raw.ID, Text: raw.Text, Next: raw.Next})
	}
	return buttons
}

// asString coerces a scalar YAML value to a trimmed string, the way the
// document format treats bare numbers and ids interchangeably.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
