// Package oplatypes defines the prompt tokenizer types for Opla.
// This file contains the token, parsed prompt and compiled request types.
package oplatypes

import "unicode/utf8"

// PromptTokenType classifies a span of the chat input.
type PromptTokenType int

const (
	// PromptTokenText is free text.
	PromptTokenText PromptTokenType = iota
	// PromptTokenNewline is a single line break.
	PromptTokenNewline
	// PromptTokenMention is an @-prefixed reference to a model.
	PromptTokenMention
	// PromptTokenHashtag is a #-prefixed reference to a completion parameter.
	PromptTokenHashtag
	// PromptTokenAction is a /-prefixed slash command, only valid at prompt start.
	PromptTokenAction
	// PromptTokenParameterValue is the text that follows a value-taking hashtag.
	PromptTokenParameterValue
)

var promptTokenTypeNames = map[PromptTokenType]string{
	PromptTokenText:           "text",
	PromptTokenNewline:        "newline",
	PromptTokenMention:        "mention",
	PromptTokenHashtag:        "hashtag",
	PromptTokenAction:         "action",
	PromptTokenParameterValue: "parameter_value",
}

// String returns the lower-case name of the token type.
func (t PromptTokenType) String() string {
	if name, ok := promptTokenTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the type by name so JSON output stays readable.
func (t PromptTokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// CommandType returns the command type a sigil token refers to.
// The second result is false for Text, Newline and ParameterValue tokens.
func (t PromptTokenType) CommandType() (CommandType, bool) {
	switch t {
	case PromptTokenMention:
		return CommandTypeMention, true
	case PromptTokenHashtag:
		return CommandTypeHashtag, true
	case PromptTokenAction:
		return CommandTypeAction, true
	default:
		return "", false
	}
}

// PromptTokenState is the validation state of a non-text token.
type PromptTokenState int

const (
	// PromptTokenStateNone means no state was assigned (plain text).
	PromptTokenStateNone PromptTokenState = iota
	// PromptTokenStateOk marks an accepted command token.
	PromptTokenStateOk
	// PromptTokenStateError marks an unknown or malformed command token.
	PromptTokenStateError
	// PromptTokenStateEditing marks the token the caret is still typing.
	PromptTokenStateEditing
	// PromptTokenStateDisabled marks a known token that is currently inactive.
	PromptTokenStateDisabled
	// PromptTokenStateDuplicate marks a repeat of an earlier identical token.
	PromptTokenStateDuplicate
)

var promptTokenStateNames = map[PromptTokenState]string{
	PromptTokenStateNone:      "",
	PromptTokenStateOk:        "ok",
	PromptTokenStateError:     "error",
	PromptTokenStateEditing:   "editing",
	PromptTokenStateDisabled:  "disabled",
	PromptTokenStateDuplicate: "duplicate",
}

// String returns the lower-case name of the state, empty for PromptTokenStateNone.
func (s PromptTokenState) String() string {
	return promptTokenStateNames[s]
}

// MarshalText renders the state by name.
func (s PromptTokenState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsAccepted reports whether a token in this state counts as a recognized command.
// Errors are not accepted; neither is the absence of a state.
func (s PromptTokenState) IsAccepted() bool {
	return s != PromptTokenStateNone && s != PromptTokenStateError
}

// PromptToken is a single lexical unit of the chat input.
type PromptToken struct {
	// Type is the token classification.
	Type PromptTokenType `json:"type"`

	// Value is the exact substring of the input, sigil included.
	Value string `json:"value"`

	// Index is the rune offset of the token start within the raw input.
	Index int `json:"index"`

	// State is only meaningful for non-text tokens.
	State PromptTokenState `json:"state,omitempty"`

	// BlockOtherCommands is set on an accepted action that consumes the rest of the input.
	BlockOtherCommands bool `json:"blockOtherCommands,omitempty"`
}

// Len returns the token length in runes.
func (t PromptToken) Len() int {
	return utf8.RuneCountInString(t.Value)
}

// End returns the rune offset just past the token.
func (t PromptToken) End() int {
	return t.Index + t.Len()
}

// ParsedPrompt is the result of scanning one input string. It is produced fresh on
// every edit and never mutated incrementally.
type ParsedPrompt struct {
	// Raw is the unmodified input.
	Raw string `json:"raw"`

	// Text is the normalized free text: command sigils elided, newlines preserved.
	Text string `json:"text"`

	// CaretPosition is the caret rune offset at scan time.
	CaretPosition int `json:"caretPosition"`

	// Tokens covers Raw without gaps or overlaps.
	Tokens []PromptToken `json:"tokens"`

	// CurrentTokenIndex is the index in Tokens of the token holding the caret, -1 if none.
	CurrentTokenIndex int `json:"currentTokenIndex"`

	// Locked is set once an action blocking other commands has been accepted.
	Locked bool `json:"locked,omitempty"`
}

// CurrentToken returns the token holding the caret.
func (p ParsedPrompt) CurrentToken() (PromptToken, bool) {
	if p.CurrentTokenIndex < 0 || p.CurrentTokenIndex >= len(p.Tokens) {
		return PromptToken{}, false
	}
	return p.Tokens[p.CurrentTokenIndex], true
}

// PromptRequest is a validated prompt ready to be sent to a provider.
type PromptRequest struct {
	// Model is the mentioned (or default) model name, without sigil.
	Model string `json:"model,omitempty"`

	// Action is the accepted slash action name, without sigil.
	Action string `json:"action,omitempty"`

	// Parameters holds coerced parameter values keyed by parameter name.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Message is the normalized free text.
	Message string `json:"message"`
}
