package domain

import (
	"time"
)

// Enrichment limits applied to every stored record.
const (
	MaxMeanings = 3
	MaxExamples = 2
)

// Example is a usage example with its translation.
type Example struct {
	Source string
	Target string
}

// AspectPair holds the imperfective/perfective forms of a verb.
type AspectPair struct {
	Imperfective string
	Perfective   string
}

// EnrichmentRecord is the cached enrichment of a lemma. Error records are
// sentinels: they carry ErrorKind and never contain meanings.
type EnrichmentRecord struct {
	Lemma            string
	Category         Category
	Meanings         []string
	Examples         []Example
	AspectPair       *AspectPair
	Status           RecordStatus
	ErrorKind        ErrorKind
	Detail           string
	RawResponse      string
	FetchedAtLiteral string
	FetchedAt        time.Time
}

// IsFresh reports whether the record holds a successful lookup.
func (r EnrichmentRecord) IsFresh() bool { return r.Status == RecordStatusFresh }

// IsError reports whether the record is an error sentinel.
func (r EnrichmentRecord) IsError() bool { return r.Status == RecordStatusError }

// HeadWord returns "imperfective / perfective" for verbs with an aspect pair
// and the lemma otherwise.
func (r EnrichmentRecord) HeadWord() string {
	if r.Category.HasAspectPair() && r.AspectPair != nil {
		return r.AspectPair.Imperfective + " / " + r.AspectPair.Perfective
	}
	return r.Lemma
}
