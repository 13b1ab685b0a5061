// Package parser tokenizes chat prompts into text, newline, mention, hashtag,
// action and parameter value tokens, validating each command token against a
// command registry as it goes.
package parser

import (
	"strings"
	"unicode"

	"opla/pkg/oplatypes"
)

// PromptInput is the raw text to scan with the caret rune offset.
type PromptInput struct {
	Text            string
	CaretStartIndex int
}

// CaretSource is a live text input the prompt and caret can be read from.
// bubbles' textinput.Model satisfies it.
type CaretSource interface {
	Value() string
	Position() int
}

// ParseInput scans the current value of a live text input.
func ParseInput(src CaretSource, registry oplatypes.CommandRegistry) oplatypes.ParsedPrompt {
	if src == nil {
		return ParsePrompt(PromptInput{}, registry)
	}
	return ParsePrompt(PromptInput{Text: src.Value(), CaretStartIndex: src.Position()}, registry)
}

// ParsePrompt splits text into tokens and validates every command token.
// It never fails: unknown or misplaced commands end up as token states.
func ParsePrompt(in PromptInput, registry oplatypes.CommandRegistry) oplatypes.ParsedPrompt {
	runes := []rune(in.Text)
	caret := clampCaret(in.CaretStartIndex, len(runes))

	s := &scanner{
		runes:    runes,
		registry: registry,
		parsed: oplatypes.ParsedPrompt{
			Raw:               in.Text,
			CaretPosition:     caret,
			Tokens:            []oplatypes.PromptToken{},
			CurrentTokenIndex: -1,
		},
	}
	s.run()

	s.parsed.CurrentTokenIndex = tokenIndexAt(s.parsed.Tokens, caret)
	return s.parsed
}

type scanner struct {
	runes    []rune
	registry oplatypes.CommandRegistry
	parsed   oplatypes.ParsedPrompt
}

func (s *scanner) run() {
	for pos := 0; pos < len(s.runes); {
		end, sigil := s.nextSpan(pos)
		s.emit(pos, end, s.provisionalType(sigil))
		pos = end
	}
}

// nextSpan returns the end of the span starting at pos and its sigil, 0 for text.
func (s *scanner) nextSpan(pos int) (int, rune) {
	if s.runes[pos] == '\n' {
		return pos + 1, '\n'
	}
	if end, ok := s.sigilSpan(pos); ok {
		return end, s.runes[pos]
	}
	end := pos + 1
	for end < len(s.runes) && s.runes[end] != '\n' {
		if _, ok := s.sigilSpan(end); ok {
			break
		}
		end++
	}
	return end, 0
}

// sigilSpan reports whether a command span starts at pos and where it ends.
// A sigil starts a span at the beginning of the input or after whitespace, when
// it is followed by name characters or the caret sits right after it.
func (s *scanner) sigilSpan(pos int) (int, bool) {
	if !isSigil(s.runes[pos]) {
		return 0, false
	}
	if pos > 0 && !unicode.IsSpace(s.runes[pos-1]) {
		return 0, false
	}
	end := pos + 1
	for end < len(s.runes) && isNameRune(s.runes[end]) {
		end++
	}
	if end == pos+1 && s.parsed.CaretPosition != end {
		return 0, false
	}
	return end, true
}

func (s *scanner) provisionalType(sigil rune) oplatypes.PromptTokenType {
	if s.parsed.Locked {
		if sigil == '\n' {
			return oplatypes.PromptTokenNewline
		}
		return oplatypes.PromptTokenText
	}
	switch sigil {
	case '\n':
		return oplatypes.PromptTokenNewline
	case '@':
		return oplatypes.PromptTokenMention
	case '#':
		return oplatypes.PromptTokenHashtag
	case '/':
		if strings.TrimSpace(s.parsed.Text) == "" {
			return oplatypes.PromptTokenAction
		}
	}
	return oplatypes.PromptTokenText
}

// emit finalizes the span [start, end). When the validator keeps only a prefix of
// the span, the rest is emitted again as text.
func (s *scanner) emit(start, end int, tokenType oplatypes.PromptTokenType) {
	token := oplatypes.PromptToken{
		Type:  tokenType,
		Value: string(s.runes[start:end]),
		Index: start,
	}

	if s.needsValidation(token) {
		previous := s.previous()
		validated, revised := ValidateToken(token, s.parsed, previous, s.registry)
		if revised != nil && previous != nil {
			s.parsed.Tokens[len(s.parsed.Tokens)-1] = *revised
		}
		if validated.Value != "" && strings.HasPrefix(token.Value, validated.Value) {
			token = validated
		}
	}

	s.parsed.Tokens = append(s.parsed.Tokens, token)
	s.accumulate(token)
	if token.BlockOtherCommands {
		s.parsed.Locked = true
	}

	if consumed := start + token.Len(); consumed < end {
		s.emit(consumed, end, oplatypes.PromptTokenText)
	}
}

func (s *scanner) needsValidation(token oplatypes.PromptToken) bool {
	if s.parsed.Locked {
		return false
	}
	switch token.Type {
	case oplatypes.PromptTokenNewline:
		return false
	case oplatypes.PromptTokenText:
		previous := s.previous()
		return previous != nil && previous.Type == oplatypes.PromptTokenHashtag
	default:
		return true
	}
}

func (s *scanner) previous() *oplatypes.PromptToken {
	if len(s.parsed.Tokens) == 0 {
		return nil
	}
	previous := s.parsed.Tokens[len(s.parsed.Tokens)-1]
	return &previous
}

// accumulate appends the free text of token to the normalized prompt text.
// Recognized commands and parameter values are left out.
func (s *scanner) accumulate(token oplatypes.PromptToken) {
	switch token.Type {
	case oplatypes.PromptTokenNewline:
		s.parsed.Text += "\n"
		return
	case oplatypes.PromptTokenText:
	case oplatypes.PromptTokenParameterValue:
		return
	default:
		if token.State != oplatypes.PromptTokenStateError {
			return
		}
	}

	words := strings.TrimSpace(token.Value)
	if words == "" {
		return
	}
	if s.parsed.Text != "" && !strings.HasSuffix(s.parsed.Text, "\n") {
		s.parsed.Text += " "
	}
	s.parsed.Text += words
}

func isSigil(r rune) bool {
	return r == '@' || r == '#' || r == '/'
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-'
}

func clampCaret(caret, length int) int {
	if caret < 0 {
		return 0
	}
	if caret > length {
		return length
	}
	return caret
}
