package parser

import (
	"strings"
	"unicode"

	"opla/pkg/oplatypes"
)

// ValidateToken assigns a state to a candidate token given the prompt parsed so
// far and the token before it. It may retype the token, keep only a prefix of its
// value, and return a revised copy of the previous token which the caller should
// write back in place of the last token.
func ValidateToken(
	token oplatypes.PromptToken,
	parsed oplatypes.ParsedPrompt,
	previous *oplatypes.PromptToken,
	registry oplatypes.CommandRegistry,
) (oplatypes.PromptToken, *oplatypes.PromptToken) {
	caret := parsed.CaretPosition

	// A lone sigil under the caret is being typed: keep it for autocomplete.
	if caret == token.End() {
		switch token.Value {
		case "@":
			token.Type = oplatypes.PromptTokenMention
			token.State = oplatypes.PromptTokenStateEditing
			return token, nil
		case "#":
			token.Type = oplatypes.PromptTokenHashtag
			token.State = oplatypes.PromptTokenStateEditing
			return token, nil
		}
	}

	switch token.Type {
	case oplatypes.PromptTokenMention:
		return validateMention(token, parsed, registry), nil
	case oplatypes.PromptTokenHashtag:
		return validateHashtag(token, parsed, registry), nil
	case oplatypes.PromptTokenAction:
		return validateAction(token, parsed, previous, registry), nil
	case oplatypes.PromptTokenText:
		if previous != nil && previous.Type == oplatypes.PromptTokenHashtag {
			return validateParameterValue(token, parsed, *previous, registry)
		}
	}
	return token, nil
}

func validateMention(token oplatypes.PromptToken, parsed oplatypes.ParsedPrompt, registry oplatypes.CommandRegistry) oplatypes.PromptToken {
	token.State = oplatypes.PromptTokenStateOk
	switch {
	case parsed.CaretPosition == token.End():
		token.State = oplatypes.PromptTokenStateEditing
	default:
		command := lookup(registry, token.Value, oplatypes.CommandTypeMention)
		switch {
		case command == nil:
			token.State = oplatypes.PromptTokenStateError
		case isDuplicate(parsed.Tokens, token):
			token.State = oplatypes.PromptTokenStateDuplicate
		case hasLiveMention(parsed.Tokens), command.Disabled:
			token.State = oplatypes.PromptTokenStateDisabled
		}
	}
	return token
}

func validateHashtag(token oplatypes.PromptToken, parsed oplatypes.ParsedPrompt, registry oplatypes.CommandRegistry) oplatypes.PromptToken {
	token.State = oplatypes.PromptTokenStateOk
	switch {
	case parsed.CaretPosition == token.End():
		token.State = oplatypes.PromptTokenStateEditing
	default:
		command := lookup(registry, token.Value, oplatypes.CommandTypeHashtag)
		switch {
		case command == nil:
			token.State = oplatypes.PromptTokenStateError
		case isDuplicate(parsed.Tokens, token):
			token.State = oplatypes.PromptTokenStateDuplicate
		case command.Disabled:
			token.State = oplatypes.PromptTokenStateDisabled
		case command.Group.ExpectsValue():
			// Activated by the value token that follows.
			token.State = oplatypes.PromptTokenStateDisabled
		}
	}
	return token
}

func validateAction(
	token oplatypes.PromptToken,
	parsed oplatypes.ParsedPrompt,
	previous *oplatypes.PromptToken,
	registry oplatypes.CommandRegistry,
) oplatypes.PromptToken {
	if strings.TrimSpace(parsed.Text) != "" || (previous != nil && !isPlain(*previous)) || hasCommand(parsed.Tokens) {
		token.Type = oplatypes.PromptTokenText
		return token
	}

	token.State = oplatypes.PromptTokenStateOk
	if parsed.CaretPosition == token.End() {
		token.State = oplatypes.PromptTokenStateEditing
		return token
	}

	command := lookup(registry, token.Value, oplatypes.CommandTypeAction)
	switch {
	case command == nil:
		token.State = oplatypes.PromptTokenStateError
	case command.Disabled:
		token.State = oplatypes.PromptTokenStateDisabled
	default:
		token.BlockOtherCommands = command.BlocksOtherCommands()
	}
	return token
}

// validateParameterValue turns the first word after a value-taking hashtag into
// its value. Leading whitespace belongs to the value token; the rest of the text
// is left to the caller.
func validateParameterValue(
	token oplatypes.PromptToken,
	parsed oplatypes.ParsedPrompt,
	hashtag oplatypes.PromptToken,
	registry oplatypes.CommandRegistry,
) (oplatypes.PromptToken, *oplatypes.PromptToken) {
	command := lookup(registry, hashtag.Value, oplatypes.CommandTypeHashtag)
	if command == nil || !command.Group.ExpectsValue() {
		return token, nil
	}

	runes := []rune(token.Value)
	start := 0
	for start < len(runes) && unicode.IsSpace(runes[start]) {
		start++
	}
	if start == len(runes) {
		return token, nil
	}
	end := start
	for end < len(runes) && !unicode.IsSpace(runes[end]) {
		end++
	}

	token.Type = oplatypes.PromptTokenParameterValue
	token.Value = string(runes[:end])
	token.State = oplatypes.PromptTokenStateOk
	if parsed.CaretPosition > token.Index && parsed.CaretPosition <= token.End() {
		token.State = oplatypes.PromptTokenStateEditing
	}

	if hashtag.State != oplatypes.PromptTokenStateDisabled || command.Disabled {
		return token, nil
	}
	hashtag.State = oplatypes.PromptTokenStateOk
	return token, &hashtag
}

func lookup(registry oplatypes.CommandRegistry, value string, commandType oplatypes.CommandType) *oplatypes.Command {
	if registry == nil {
		return nil
	}
	return registry.GetCommand(value, commandType)
}

func isDuplicate(tokens []oplatypes.PromptToken, token oplatypes.PromptToken) bool {
	for _, t := range tokens {
		if t.Type == token.Type && t.Value == token.Value {
			return true
		}
	}
	return false
}

// hasLiveMention reports whether a mention other than an unknown one was already seen.
func hasLiveMention(tokens []oplatypes.PromptToken) bool {
	for _, t := range tokens {
		if t.Type == oplatypes.PromptTokenMention && t.State != oplatypes.PromptTokenStateError {
			return true
		}
	}
	return false
}

// hasCommand reports whether a command or parameter value was already emitted.
// Whitespace between it and the action does not count.
func hasCommand(tokens []oplatypes.PromptToken) bool {
	for _, t := range tokens {
		if !isPlain(t) {
			return true
		}
	}
	return false
}

func isPlain(token oplatypes.PromptToken) bool {
	return token.Type == oplatypes.PromptTokenText || token.Type == oplatypes.PromptTokenNewline
}
