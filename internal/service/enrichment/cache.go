// Package enrichment caches lexical enrichment records per lemma in front of
// a volatile external lexical service.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/readalong/internal/domain"
	"github.com/heartmarshall/readalong/internal/provider"
)

// Defaults used when the config leaves a value at zero.
const (
	DefaultTTL          = 24 * time.Hour
	DefaultFetchTimeout = 30 * time.Second
)

type canonicalizer interface {
	Normalize(ctx context.Context, literal string) domain.CanonicalForm
}

type lexicalService interface {
	Enrich(ctx context.Context, req provider.LexicalRequest) (*provider.LexicalResult, error)
}

// Options configures a Cache.
type Options struct {
	// TTL is the freshness window of a Fresh record; <= 0 never expires.
	TTL time.Duration
	// FetchTimeout bounds a single external lookup.
	FetchTimeout time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Stats holds counters of a Cache.
type Stats struct {
	Entries int
	Hits    int
	Fetches int
	Errors  int
}

// Cache maps lemma keys to enrichment records. It belongs to one session and
// is not safe for concurrent use; the owning session serializes access.
type Cache struct {
	log          *slog.Logger
	normalizer   canonicalizer
	lexical      lexicalService
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	records map[string]domain.EnrichmentRecord
	stats   Stats
}

// NewCache creates an empty Cache.
func NewCache(logger *slog.Logger, normalizer canonicalizer, lexical lexicalService, opts Options) *Cache {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		log:          logger.With("service", "enrichment"),
		normalizer:   normalizer,
		lexical:      lexical,
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Now,
		records:      make(map[string]domain.EnrichmentRecord),
	}
}

// Resolve returns the enrichment record for literal. A Fresh, unexpired
// record for the literal's lemma is reused whatever literal fetched it;
// otherwise the lexical service is called once. Failures are stored and
// returned as Error records; Resolve never fails.
func (c *Cache) Resolve(ctx context.Context, literal string) domain.EnrichmentRecord {
	canonical := c.normalizer.Normalize(ctx, literal)
	return c.ResolveCanonical(ctx, literal, canonical)
}

// ResolveCanonical is Resolve for a literal whose canonical form is known.
func (c *Cache) ResolveCanonical(ctx context.Context, literal string, canonical domain.CanonicalForm) domain.EnrichmentRecord {
	key := domain.LemmaKey(canonical.Lemma)

	if rec, ok := c.records[key]; ok && c.isFresh(rec) {
		c.stats.Hits++
		return rec
	}

	c.stats.Fetches++
	rec, err := c.fetch(ctx, literal, canonical)
	if err != nil {
		c.stats.Errors++
		kind := classify(err)
		c.log.WarnContext(ctx, "enrichment lookup failed",
			slog.String("literal", literal),
			slog.String("lemma", canonical.Lemma),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
		rec = domain.EnrichmentRecord{
			Lemma:            canonical.Lemma,
			Category:         canonical.Category,
			Status:           domain.RecordStatusError,
			ErrorKind:        kind,
			Detail:           err.Error(),
			RawResponse:      provider.RawResponse(err),
			FetchedAtLiteral: literal,
			FetchedAt:        c.now(),
		}
	}

	c.records[key] = rec
	return rec
}

// Lookup returns the stored record for lemma, fresh or not.
func (c *Cache) Lookup(lemma string) (domain.EnrichmentRecord, bool) {
	rec, ok := c.records[domain.LemmaKey(lemma)]
	return rec, ok
}

// Invalidate drops the record for lemma so the next Resolve refetches it.
func (c *Cache) Invalidate(lemma string) {
	delete(c.records, domain.LemmaKey(lemma))
}

// Clear drops every record.
func (c *Cache) Clear() {
	c.records = make(map[string]domain.EnrichmentRecord)
}

// Len returns the number of stored records.
func (c *Cache) Len() int { return len(c.records) }

// Stats returns the cache counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.Entries = len(c.records)
	return s
}

// isFresh is the TTL check: only Fresh records younger than the TTL are
// served from the cache. Error records are always refetched.
func (c *Cache) isFresh(rec domain.EnrichmentRecord) bool {
	if !rec.IsFresh() {
		return false
	}
	if c.ttl <= 0 {
		return true
	}
	return c.now().Sub(rec.FetchedAt) < c.ttl
}

// fetch performs one bounded external lookup and maps the result into a
// Fresh record with meanings and examples truncated.
func (c *Cache) fetch(ctx context.Context, literal string, canonical domain.CanonicalForm) (domain.EnrichmentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	res, err := c.lexical.Enrich(ctx, provider.LexicalRequest{
		Literal:  literal,
		Lemma:    canonical.Lemma,
		Category: canonical.Category,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		return domain.EnrichmentRecord{}, err
	}
	if res == nil {
		return domain.EnrichmentRecord{}, &provider.MalformedResponseError{Reason: "empty result"}
	}

	c.log.DebugContext(ctx, "enrichment fetched",
		slog.String("literal", literal),
		slog.String("lemma", canonical.Lemma),
		slog.Int("meanings", len(res.Meanings)),
	)

	return mapResult(literal, canonical, res, c.now()), nil
}

func mapResult(literal string, canonical domain.CanonicalForm, res *provider.LexicalResult, fetchedAt time.Time) domain.EnrichmentRecord {
	meanings := res.Meanings
	if len(meanings) > domain.MaxMeanings {
		meanings = meanings[:domain.MaxMeanings]
	}

	examples := make([]domain.Example, 0, min(len(res.Examples), domain.MaxExamples))
	for _, ex := range res.Examples {
		if len(examples) == domain.MaxExamples {
			break
		}
		examples = append(examples, domain.Example{Source: ex.Source, Target: ex.Target})
	}

	rec := domain.EnrichmentRecord{
		Lemma:            canonical.Lemma,
		Category:         canonical.Category,
		Meanings:         append([]string(nil), meanings...),
		Examples:         examples,
		Status:           domain.RecordStatusFresh,
		FetchedAtLiteral: literal,
		FetchedAt:        fetchedAt,
	}
	if canonical.Category.HasAspectPair() && res.AspectPair != nil {
		rec.AspectPair = &domain.AspectPair{
			Imperfective: res.AspectPair.Imperfective,
			Perfective:   res.AspectPair.Perfective,
		}
	}
	return rec
}

// classify maps a fetch error to its ErrorKind. Timeouts and unknown
// failures are Unavailable.
func classify(err error) domain.ErrorKind {
	switch {
	case errors.Is(err, provider.ErrUnconfigured):
		return domain.ErrorKindUnconfigured
	case errors.Is(err, provider.ErrQuotaExceeded):
		return domain.ErrorKindQuotaExceeded
	case errors.Is(err, provider.ErrMalformedResponse):
		return domain.ErrorKindMalformedResponse
	case errors.Is(err, provider.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.ErrorKindUnavailable
	default:
		return domain.ErrorKindUnavailable
	}
}
