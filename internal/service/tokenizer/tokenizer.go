// Package tokenizer splits raw text into a lossless sequence of word and
// non-word tokens.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/heartmarshall/readalong/internal/domain"
)

// Tokenize splits raw into maximal runs of word-constituent runes (letters,
// digits, underscore, combining marks) and maximal runs of everything else.
// Adjacent tokens never share a kind and Join(Tokenize(raw)) == raw.
func Tokenize(raw string) []domain.Token {
	if raw == "" {
		return nil
	}

	tokens := make([]domain.Token, 0, len(raw)/4+1)
	start := 0
	kind := domain.TokenKindOther

	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		k := kindOf(r)
		if i == 0 {
			kind = k
		} else if k != kind {
			tokens = append(tokens, domain.Token{Text: raw[start:i], Kind: kind, Start: start, End: i})
			start = i
			kind = k
		}
		i += size
	}
	tokens = append(tokens, domain.Token{Text: raw[start:], Kind: kind, Start: start, End: len(raw)})

	return tokens
}

// Join concatenates the token texts, reproducing the raw text.
func Join(tokens []domain.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Words returns the texts of the word tokens in order.
func Words(tokens []domain.Token) []string {
	words := make([]string, 0, len(tokens)/2+1)
	for _, t := range tokens {
		if t.IsWord() {
			words = append(words, t.Text)
		}
	}
	return words
}

// IsSingleWord reports whether literal consists of exactly one word token.
func IsSingleWord(literal string) bool {
	tokens := Tokenize(literal)
	return len(tokens) == 1 && tokens[0].IsWord()
}

// IsWordRune reports whether r is a word-constituent rune.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// kindOf classifies a rune. Invalid UTF-8 bytes decode as utf8.RuneError
// and fall into TokenKindOther.
func kindOf(r rune) domain.TokenKind {
	if IsWordRune(r) {
		return domain.TokenKindWord
	}
	return domain.TokenKindOther
}
