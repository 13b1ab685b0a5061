package parser

import (
	"strings"
	"unicode"

	"opla/pkg/oplatypes"
)

// Mentions returns the accepted mention tokens of a prompt.
func Mentions(parsed oplatypes.ParsedPrompt) []oplatypes.PromptToken {
	return tokensOf(parsed, oplatypes.PromptTokenMention)
}

// Hashtags returns the accepted hashtag tokens of a prompt.
func Hashtags(parsed oplatypes.ParsedPrompt) []oplatypes.PromptToken {
	return tokensOf(parsed, oplatypes.PromptTokenHashtag)
}

// Action returns the accepted action token, if any.
func Action(parsed oplatypes.ParsedPrompt) (oplatypes.PromptToken, bool) {
	actions := tokensOf(parsed, oplatypes.PromptTokenAction)
	if len(actions) == 0 {
		return oplatypes.PromptToken{}, false
	}
	return actions[0], true
}

func tokensOf(parsed oplatypes.ParsedPrompt, tokenType oplatypes.PromptTokenType) []oplatypes.PromptToken {
	var tokens []oplatypes.PromptToken
	for _, token := range parsed.Tokens {
		if token.Type == tokenType && token.State == oplatypes.PromptTokenStateOk {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// ParameterValues maps accepted hashtag names to their values. A hashtag without a
// value token is a boolean flag and maps to "true".
func ParameterValues(parsed oplatypes.ParsedPrompt) map[string]string {
	values := make(map[string]string)
	for i, token := range parsed.Tokens {
		if token.Type != oplatypes.PromptTokenHashtag || token.State != oplatypes.PromptTokenStateOk {
			continue
		}
		name := strings.TrimPrefix(token.Value, "#")
		if i+1 < len(parsed.Tokens) && parsed.Tokens[i+1].Type == oplatypes.PromptTokenParameterValue {
			values[name] = strings.TrimSpace(parsed.Tokens[i+1].Value)
			continue
		}
		values[name] = "true"
	}
	return values
}

// InvalidTokens returns the tokens that keep a prompt from being sent: unknown,
// duplicate and inactive commands.
func InvalidTokens(parsed oplatypes.ParsedPrompt) []oplatypes.PromptToken {
	var invalid []oplatypes.PromptToken
	for _, token := range parsed.Tokens {
		switch token.State {
		case oplatypes.PromptTokenStateError, oplatypes.PromptTokenStateDuplicate, oplatypes.PromptTokenStateDisabled:
			invalid = append(invalid, token)
		}
	}
	return invalid
}

// HasErrors reports whether the prompt holds an unknown or duplicate command.
// Disabled commands are inactive, not errors.
func HasErrors(parsed oplatypes.ParsedPrompt) bool {
	for _, token := range parsed.Tokens {
		if token.State == oplatypes.PromptTokenStateError || token.State == oplatypes.PromptTokenStateDuplicate {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the prompt carries neither text nor an action.
func IsEmpty(parsed oplatypes.ParsedPrompt) bool {
	if strings.TrimSpace(parsed.Text) != "" {
		return false
	}
	_, hasAction := Action(parsed)
	return !hasAction
}

// ReplaceTokenAtCaret substitutes the command token under the caret with value
// followed by a space, as when a suggestion is picked. Outside a command token the
// value is inserted at the caret. It returns the new text and caret.
func ReplaceTokenAtCaret(parsed oplatypes.ParsedPrompt, value string) (string, int) {
	runes := []rune(parsed.Raw)
	caret := clampCaret(parsed.CaretPosition, len(runes))
	start, end := caret, caret

	if token, ok := parsed.CurrentToken(); ok {
		if _, isCommand := token.Type.CommandType(); isCommand {
			start, end = token.Index, token.End()
		}
	}

	insert := []rune(value + " ")
	if start > 0 && !unicode.IsSpace(runes[start-1]) {
		insert = append([]rune{' '}, insert...)
	}
	text := string(runes[:start]) + string(insert) + strings.TrimPrefix(string(runes[end:]), " ")
	return text, start + len(insert)
}
