// Package session threads the selection store, enrichment cache, highlighter
// and summary through one explicit per-user state object.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/heartmarshall/readalong/internal/domain"
	"github.com/heartmarshall/readalong/internal/provider"
	"github.com/heartmarshall/readalong/internal/service/enrichment"
	"github.com/heartmarshall/readalong/internal/service/highlight"
	"github.com/heartmarshall/readalong/internal/service/selection"
	"github.com/heartmarshall/readalong/internal/service/summary"
	"github.com/heartmarshall/readalong/internal/service/tokenizer"
)

// DefaultMaxTextBytes bounds the text a session accepts.
const DefaultMaxTextBytes = 256 << 10

type canonicalizer interface {
	Normalize(ctx context.Context, literal string) domain.CanonicalForm
}

type lexicalService interface {
	Enrich(ctx context.Context, req provider.LexicalRequest) (*provider.LexicalResult, error)
}

// Options configures a Session.
type Options struct {
	Cache        enrichment.Options
	Delimiter    rune
	MaxTextBytes int
	Now          func() time.Time
}

// Selection is the outcome of selecting or refreshing a literal.
type Selection struct {
	Span      domain.Span
	Created   bool
	Canonical domain.CanonicalForm
	Record    domain.EnrichmentRecord
}

// SearchResult is a Selection plus the number of occurrences of the query in
// the text.
type SearchResult struct {
	Selection
	Occurrences int
}

// Detail is the per-word view of a selected literal. Record is nil until the
// literal's lemma has been resolved.
type Detail struct {
	Span      domain.Span
	Active    bool
	Canonical domain.CanonicalForm
	Record    *domain.EnrichmentRecord
}

// Snapshot is the full rendered state of a session.
type Snapshot struct {
	ID       string
	Text     string
	Spans    []domain.Span
	Active   *domain.Span
	Segments []highlight.Segment
	Rows     []summary.Row
	Detail   *Detail
}

// Session is one user's working state. Every action runs as a single
// synchronous pass under the session mutex.
type Session struct {
	id           string
	log          *slog.Logger
	normalizer   canonicalizer
	delimiter    rune
	maxTextBytes int
	now          func() time.Time

	mu     sync.Mutex
	text   string
	tokens []domain.Token
	store  *selection.Store
	cache  *enrichment.Cache
	forms  map[string]domain.CanonicalForm

	lastUsed atomic.Int64
}

// New creates an empty session.
func New(id string, logger *slog.Logger, normalizer canonicalizer, lexical lexicalService, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Cache.Now == nil {
		opts.Cache.Now = opts.Now
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = summary.DefaultDelimiter
	}
	if opts.MaxTextBytes <= 0 {
		opts.MaxTextBytes = DefaultMaxTextBytes
	}

	log := logger.With("session_id", id)
	s := &Session{
		id:           id,
		log:          log,
		normalizer:   normalizer,
		delimiter:    opts.Delimiter,
		maxTextBytes: opts.MaxTextBytes,
		now:          opts.Now,
		store:        selection.NewStore(),
		cache:        enrichment.NewCache(log, normalizer, lexical, opts.Cache),
		forms:        make(map[string]domain.CanonicalForm),
	}
	s.touch()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// LastUsed returns the time of the last action on the session. Reads of the
// rendered state count as actions.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

// SetText replaces the text. A changed text invalidates the selection, the
// active span and the cache, then retokenizes. It reports whether the text
// changed.
func (s *Session) SetText(text string) (bool, error) {
	if len(text) > s.maxTextBytes {
		return false, domain.NewValidationError("text", fmt.Sprintf("must be at most %d bytes", s.maxTextBytes))
	}
	text = norm.NFC.String(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if text == s.text {
		return false, nil
	}
	s.resetLocked()
	s.text = text
	s.tokens = tokenizer.Tokenize(text)

	s.log.Debug("text changed", slog.Int("bytes", len(text)), slog.Int("tokens", len(s.tokens)))
	return true, nil
}

// Text returns the current text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Tokens returns a copy of the current token stream.
func (s *Session) Tokens() []domain.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Select is the click entry point: it selects literal, makes it active and
// resolves its enrichment record. Lookup failures come back as Error records.
func (s *Session) Select(ctx context.Context, literal string) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.selectLocked(ctx, literal)
}

// Search is the search entry point. It funnels through the same path as
// Select; a query absent from the text is still selected.
func (s *Session) Search(ctx context.Context, query string) (SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	sel, err := s.selectLocked(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		Selection:   sel,
		Occurrences: highlight.Occurrences(s.tokens, sel.Span.Literal),
	}, nil
}

func (s *Session) selectLocked(ctx context.Context, literal string) (Selection, error) {
	span, created, err := s.store.Select(literal)
	if err != nil {
		return Selection{}, err
	}

	canonical := s.canonicalLocked(ctx, span.Literal)
	rec := s.cache.ResolveCanonical(ctx, span.Literal, canonical)

	return Selection{Span: span, Created: created, Canonical: canonical, Record: rec}, nil
}

func (s *Session) canonicalLocked(ctx context.Context, literal string) domain.CanonicalForm {
	if f, ok := s.forms[literal]; ok {
		return f
	}
	f := s.normalizer.Normalize(ctx, literal)
	// Failed normalization is not remembered so the next pass retries it.
	if f.Category != domain.CategoryUnknown {
		s.forms[literal] = f
	}
	return f
}

// Activate re-focuses an already selected literal.
func (s *Session) Activate(literal string) (domain.Span, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.store.SetActive(literal)
}

// Refresh explicitly invalidates the cached record of a selected literal's
// lemma and resolves it again.
func (s *Session) Refresh(ctx context.Context, literal string) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	span, err := s.store.SetActive(literal)
	if err != nil {
		return Selection{}, err
	}

	canonical := s.canonicalLocked(ctx, span.Literal)
	s.cache.Invalidate(canonical.Lemma)
	rec := s.cache.ResolveCanonical(ctx, span.Literal, canonical)

	return Selection{Span: span, Canonical: canonical, Record: rec}, nil
}

// Reset clears the selection, the active span and the cache.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.store.Clear()
	s.cache.Clear()
	clear(s.forms)
}

// Spans returns the selected spans in first-seen order.
func (s *Session) Spans() []domain.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Spans()
}

// Active returns the active span.
func (s *Session) Active() (domain.Span, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Active()
}

// CacheLen returns the number of cached enrichment records.
func (s *Session) CacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// CacheStats returns the enrichment cache counters.
func (s *Session) CacheStats() enrichment.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Stats()
}

// Detail returns the per-word view of a selected literal. Error records are
// visible here even though the summary excludes them.
func (s *Session) Detail(literal string) (Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	span, ok := s.store.Get(literal)
	if !ok {
		return Detail{}, fmt.Errorf("detail %q: %w", domain.NormalizeLiteral(literal), domain.ErrNotSelected)
	}
	return s.detailLocked(span), nil
}

func (s *Session) detailLocked(span domain.Span) Detail {
	d := Detail{Span: span, Canonical: s.canonicalOf(span.Literal)}
	if active, ok := s.store.Active(); ok && active.Literal == span.Literal {
		d.Active = true
	}
	if rec, ok := s.cache.Lookup(d.Canonical.Lemma); ok {
		d.Record = &rec
	}
	return d
}

// canonicalOf returns the remembered canonical form without calling the
// normalizer.
func (s *Session) canonicalOf(literal string) domain.CanonicalForm {
	if f, ok := s.forms[literal]; ok {
		return f
	}
	if domain.IsPhrase(literal) {
		return domain.PhraseForm(literal)
	}
	return domain.UnknownForm(literal)
}

// Segments renders the text with the selected spans marked.
func (s *Session) Segments() []highlight.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.segmentsLocked()
}

func (s *Session) segmentsLocked() []highlight.Segment {
	active, _ := s.store.Active()
	return highlight.Render(s.tokens, s.store.Spans(), active.Literal)
}

// RenderHTML renders the marked text as an HTML fragment.
func (s *Session) RenderHTML() string {
	return highlight.RenderHTML(s.Segments())
}

// Rows returns the summary rows in first-seen order.
func (s *Session) Rows() []summary.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.rowsLocked()
}

func (s *Session) rowsLocked() []summary.Row {
	return summary.Summarize(s.store.Spans(), s.canonicalOf, s.cache.Lookup)
}

// Snapshot returns the full rendered state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	snap := Snapshot{
		ID:       s.id,
		Text:     s.text,
		Spans:    s.store.Spans(),
		Segments: s.segmentsLocked(),
		Rows:     s.rowsLocked(),
	}
	if active, ok := s.store.Active(); ok {
		snap.Active = &active
		d := s.detailLocked(active)
		snap.Detail = &d
	}
	return snap
}

// Export writes the summary as a delimited table.
func (s *Session) Export(w io.Writer) error {
	rows := s.Rows()
	if err := summary.WriteCSV(w, rows, s.delimiter); err != nil {
		return fmt.Errorf("export session %s: %w", s.id, err)
	}
	return nil
}
