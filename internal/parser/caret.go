package parser

import (
	"unicode"

	"opla/pkg/oplatypes"
)

// CurrentWord returns the whitespace-delimited word that ends at the caret and the
// rune offset it starts at. The word is empty when the caret follows whitespace.
func CurrentWord(text string, caret int) (string, int) {
	runes := []rune(text)
	caret = clampCaret(caret, len(runes))

	start := caret
	for start > 0 && !unicode.IsSpace(runes[start-1]) {
		start--
	}
	return string(runes[start:caret]), start
}

// TokenAt returns the index of the token holding the caret.
func TokenAt(parsed oplatypes.ParsedPrompt, caret int) (int, bool) {
	index := tokenIndexAt(parsed.Tokens, caret)
	return index, index >= 0
}

// tokenIndexAt finds the token whose span (Index, End] holds the caret. A caret at
// offset 0 belongs to the first token.
func tokenIndexAt(tokens []oplatypes.PromptToken, caret int) int {
	if len(tokens) == 0 {
		return -1
	}
	if caret <= 0 {
		return 0
	}
	for i, token := range tokens {
		if caret > token.Index && caret <= token.End() {
			return i
		}
	}
	return -1
}
