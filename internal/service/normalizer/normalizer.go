// Package normalizer maps literals to canonical dictionary forms through an
// external morphological analyzer.
package normalizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/readalong/internal/domain"
)

// DefaultMemoSize bounds the number of memoized literals.
const DefaultMemoSize = 4096

type morphAnalyzer interface {
	Lemmatize(ctx context.Context, word string) (string, error)
	Analyze(ctx context.Context, word string) (string, error)
}

// Adapter resolves literals to canonical forms. It never returns an error:
// analyzer failures degrade to the literal itself with CategoryUnknown.
// Adapter is safe for concurrent use and is shared by all sessions.
type Adapter struct {
	log   *slog.Logger
	morph morphAnalyzer
	memo  *lru.Cache[string, domain.CanonicalForm]
}

// NewAdapter creates an Adapter memoizing up to memoSize literals.
func NewAdapter(logger *slog.Logger, morph morphAnalyzer, memoSize int) (*Adapter, error) {
	if memoSize <= 0 {
		memoSize = DefaultMemoSize
	}
	memo, err := lru.New[string, domain.CanonicalForm](memoSize)
	if err != nil {
		return nil, fmt.Errorf("normalizer: create memo: %w", err)
	}
	return &Adapter{
		log:   logger.With("service", "normalizer"),
		morph: morph,
		memo:  memo,
	}, nil
}

// Normalize returns the canonical form of literal. Phrases normalize to
// themselves without an external call. Successful analyses are memoized by
// literal; failures are not, so a recovered analyzer is used on the next call.
func (a *Adapter) Normalize(ctx context.Context, literal string) domain.CanonicalForm {
	literal = domain.NormalizeLiteral(literal)
	if literal == "" {
		return domain.UnknownForm(literal)
	}
	if domain.IsPhrase(literal) {
		return domain.PhraseForm(literal)
	}

	if form, ok := a.memo.Get(literal); ok {
		return form
	}

	form, err := a.analyze(ctx, literal)
	if err != nil {
		a.log.WarnContext(ctx, "normalization failed, using literal as lemma",
			slog.String("literal", literal),
			slog.String("error", err.Error()),
		)
		return domain.UnknownForm(literal)
	}

	a.memo.Add(literal, form)
	return form
}

// Cached reports the memoized form of literal without calling the analyzer.
func (a *Adapter) Cached(literal string) (domain.CanonicalForm, bool) {
	literal = domain.NormalizeLiteral(literal)
	if domain.IsPhrase(literal) {
		return domain.PhraseForm(literal), true
	}
	return a.memo.Peek(literal)
}

// Len returns the number of memoized literals.
func (a *Adapter) Len() int { return a.memo.Len() }

func (a *Adapter) analyze(ctx context.Context, word string) (domain.CanonicalForm, error) {
	lemma, err := a.morph.Lemmatize(ctx, word)
	if err != nil {
		return domain.CanonicalForm{}, fmt.Errorf("lemmatize: %w", err)
	}
	lemma = strings.TrimSpace(lemma)
	if lemma == "" {
		lemma = word
	}

	tag, err := a.morph.Analyze(ctx, word)
	if err != nil {
		return domain.CanonicalForm{}, fmt.Errorf("analyze: %w", err)
	}

	return domain.CanonicalForm{
		Lemma:    domain.NormalizeLiteral(lemma),
		Category: domain.CategoryFromTag(tag),
	}, nil
}
