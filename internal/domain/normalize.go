package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLiteral prepares a user-supplied literal for selection and lookup:
//   - applies Unicode NFC, so a decomposed "ё" equals the precomposed one
//   - trims leading/trailing whitespace
//   - collapses internal whitespace runs into a single space
//
// Case is preserved: a literal is what the user clicked or typed.
func NormalizeLiteral(text string) string {
	text = norm.NFC.String(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteRune(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// IsPhrase reports whether a normalized literal contains internal whitespace.
func IsPhrase(literal string) bool {
	return strings.ContainsFunc(literal, unicode.IsSpace)
}

// LemmaKey is the cache key for a lemma: NFC and lowercase.
func LemmaKey(lemma string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(lemma)))
}
