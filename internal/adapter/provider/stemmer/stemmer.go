// Package stemmer is an offline morphological analyzer built on the Snowball
// Russian stemmer. It yields stems rather than dictionary lemmas and no
// grammar tags, so every word maps to CategoryOther.
package stemmer

import (
	"context"
	"fmt"
	"strings"

	"github.com/kljensen/snowball"
)

const language = "russian"

// Analyzer implements Lemmatize/Analyze without network access.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer { return &Analyzer{} }

// Lemmatize returns the lowercased Snowball stem of word.
func (a *Analyzer) Lemmatize(ctx context.Context, word string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stem, err := snowball.Stem(strings.ToLower(word), language, true)
	if err != nil {
		return "", fmt.Errorf("stemmer: stem %q: %w", word, err)
	}
	return stem, nil
}

// Analyze returns an empty tag: the stemmer has no part-of-speech data.
func (a *Analyzer) Analyze(ctx context.Context, _ string) (string, error) {
	return "", ctx.Err()
}
