package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/heartmarshall/readalong/internal/domain"
	"github.com/heartmarshall/readalong/internal/provider"
	"github.com/heartmarshall/readalong/internal/service/enrichment"
	"github.com/heartmarshall/readalong/internal/session"
)

type stubNormalizer struct{}

func (stubNormalizer) Normalize(_ context.Context, literal string) domain.CanonicalForm {
	switch {
	case domain.IsPhrase(literal):
		return domain.PhraseForm(literal)
	case literal == "идёт":
		return domain.CanonicalForm{Lemma: "идти", Category: domain.CategoryVerb}
	case literal == "улице":
		return domain.CanonicalForm{Lemma: "улица", Category: domain.CategoryNoun}
	}
	return domain.UnknownForm(literal)
}

type stubLexical struct {
	fail string
}

func (s stubLexical) Enrich(_ context.Context, req provider.LexicalRequest) (*provider.LexicalResult, error) {
	if req.Lemma == s.fail {
		return nil, provider.ErrUnavailable
	}
	switch req.Lemma {
	case "идти":
		return &provider.LexicalResult{
			Meanings:   []string{"가다"},
			AspectPair: &provider.AspectPairResult{Imperfective: "идти", Perfective: "пойти"},
		}, nil
	case "улица":
		return &provider.LexicalResult{Meanings: []string{"거리"}}, nil
	}
	return &provider.LexicalResult{Meanings: []string{"?"}}, nil
}

func newAnnotateSession(lex stubLexical) *session.Session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.New("annotate", logger, stubNormalizer{}, lex, session.Options{
		Cache: enrichment.Options{TTL: time.Hour, FetchTimeout: time.Second},
	})
}

func TestAnnotate_MarksAndSummarizes(t *testing.T) {
	s := newAnnotateSession(stubLexical{})

	var out, csv bytes.Buffer
	err := annotate(context.Background(), s, AnnotateRequest{
		Text:   "Человек идёт по улице.",
		Select: []string{"улице", "идёт"},
		CSV:    &csv,
	}, &out)
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[0] != "Человек [[идёт]] по [улице]." {
		t.Errorf("unexpected marked text %q", lines[0])
	}
	if !strings.Contains(out.String(), "улица") || !strings.Contains(out.String(), "идти / пойти") {
		t.Errorf("summary rows missing from output:\n%s", out.String())
	}
	if strings.Index(out.String(), "\nулица") > strings.Index(out.String(), "\nидти / пойти") {
		t.Errorf("summary must keep first-seen order:\n%s", out.String())
	}

	want := "\ufeffcanonical form,meaning\nулица,거리\nидти / пойти,가다\n"
	if csv.String() != want {
		t.Errorf("csv = %q, want %q", csv.String(), want)
	}
}

func TestAnnotate_SearchAbsentAndWarnings(t *testing.T) {
	s := newAnnotateSession(stubLexical{fail: "улица"})

	var out bytes.Buffer
	err := annotate(context.Background(), s, AnnotateRequest{
		Text:   "Человек идёт по улице.",
		Select: []string{"улице"},
		Search: []string{"собака"},
	}, &out)
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, `note: "собака" does not occur in the text`) {
		t.Errorf("expected absent-query note, got:\n%s", got)
	}
	if !strings.Contains(got, "warning: улице: "+domain.ErrorKindUnavailable.Message()) {
		t.Errorf("expected unavailable warning, got:\n%s", got)
	}
}

func TestAnnotate_InvalidSelection(t *testing.T) {
	s := newAnnotateSession(stubLexical{})

	err := annotate(context.Background(), s, AnnotateRequest{
		Text:   "текст",
		Select: []string{"  "},
	}, io.Discard)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
