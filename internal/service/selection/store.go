// Package selection tracks the ordered, deduplicated set of spans a user has
// selected and which of them is active.
package selection

import (
	"fmt"

	"github.com/heartmarshall/readalong/internal/domain"
)

// Store holds the selected spans of one session. It is not safe for
// concurrent use; the owning session serializes access.
//
// Invariants: literals are unique; the active literal, when set, is a member;
// FirstSeenOrder values are strictly increasing and never renumbered.
type Store struct {
	spans     []domain.Span
	index     map[string]int
	active    string
	hasActive bool
	nextOrder int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		index:     make(map[string]int),
		nextOrder: 1,
	}
}

// Select adds literal if it is not selected yet and makes it active.
// It reports whether a new span was created.
func (s *Store) Select(literal string) (domain.Span, bool, error) {
	literal = domain.NormalizeLiteral(literal)
	if literal == "" {
		return domain.Span{}, false, domain.NewValidationError("literal", "required")
	}

	created := false
	i, ok := s.index[literal]
	if !ok {
		s.spans = append(s.spans, domain.Span{Literal: literal, FirstSeenOrder: s.nextOrder})
		s.nextOrder++
		i = len(s.spans) - 1
		s.index[literal] = i
		created = true
	}

	s.active = literal
	s.hasActive = true
	return s.spans[i], created, nil
}

// SetActive re-focuses an already selected literal without changing
// membership or order.
func (s *Store) SetActive(literal string) (domain.Span, error) {
	literal = domain.NormalizeLiteral(literal)
	i, ok := s.index[literal]
	if !ok {
		return domain.Span{}, fmt.Errorf("set active %q: %w", literal, domain.ErrNotSelected)
	}
	s.active = literal
	s.hasActive = true
	return s.spans[i], nil
}

// Get returns the span for literal.
func (s *Store) Get(literal string) (domain.Span, bool) {
	i, ok := s.index[domain.NormalizeLiteral(literal)]
	if !ok {
		return domain.Span{}, false
	}
	return s.spans[i], true
}

// Active returns the active span.
func (s *Store) Active() (domain.Span, bool) {
	if !s.hasActive {
		return domain.Span{}, false
	}
	return s.spans[s.index[s.active]], true
}

// Spans returns a copy of the selected spans in first-seen order.
func (s *Store) Spans() []domain.Span {
	out := make([]domain.Span, len(s.spans))
	copy(out, s.spans)
	return out
}

// Literals returns the selected literals in first-seen order.
func (s *Store) Literals() []string {
	out := make([]string, len(s.spans))
	for i, sp := range s.spans {
		out[i] = sp.Literal
	}
	return out
}

// Len returns the number of selected spans.
func (s *Store) Len() int { return len(s.spans) }

// Clear removes every span and the active span. The order counter keeps
// increasing so orders are never reused by the same store.
func (s *Store) Clear() {
	s.spans = nil
	s.index = make(map[string]int)
	s.active = ""
	s.hasActive = false
}
