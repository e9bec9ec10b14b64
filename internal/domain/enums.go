package domain

import "strings"

// TokenKind classifies a token produced by the tokenizer.
type TokenKind string

const (
	TokenKindWord  TokenKind = "WORD"
	TokenKindOther TokenKind = "OTHER"
)

func (k TokenKind) String() string { return string(k) }

func (k TokenKind) IsValid() bool {
	switch k {
	case TokenKindWord, TokenKindOther:
		return true
	}
	return false
}

// Category is the closed set of grammatical categories a literal can normalize to.
type Category string

const (
	CategoryNoun      Category = "NOUN"
	CategoryVerb      Category = "VERB"
	CategoryAdjective Category = "ADJECTIVE"
	CategoryAdverb    Category = "ADVERB"
	CategoryOther     Category = "OTHER"
	CategoryPhrase    Category = "PHRASE"
	CategoryUnknown   Category = "UNKNOWN"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryNoun, CategoryVerb, CategoryAdjective, CategoryAdverb,
		CategoryOther, CategoryPhrase, CategoryUnknown:
		return true
	}
	return false
}

// HasAspectPair reports whether records of this category carry an aspect pair.
func (c Category) HasAspectPair() bool {
	return c == CategoryVerb
}

// posTable maps part-of-speech codes to categories. It covers OpenCorpora
// codes (as emitted by pymorphy-style analyzers) and Universal Dependencies tags.
var posTable = map[string]Category{
	// OpenCorpora
	"NOUN": CategoryNoun,
	"VERB": CategoryVerb,
	"INFN": CategoryVerb,
	"PRTF": CategoryVerb,
	"PRTS": CategoryVerb,
	"GRND": CategoryVerb,
	"ADJF": CategoryAdjective,
	"ADJS": CategoryAdjective,
	"COMP": CategoryAdjective,
	"ADVB": CategoryAdverb,

	// Universal Dependencies
	"PROPN": CategoryNoun,
	"AUX":   CategoryVerb,
	"ADJ":   CategoryAdjective,
	"ADV":   CategoryAdverb,
}

// CategoryFromTag maps a grammar tag such as "VERB,impf,intr sing,3per" to a
// Category using the leading part-of-speech code. Unrecognized codes map to
// CategoryOther.
func CategoryFromTag(tag string) Category {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ", \t"); i >= 0 {
		tag = tag[:i]
	}
	if c, ok := posTable[strings.ToUpper(tag)]; ok {
		return c
	}
	return CategoryOther
}

// RecordStatus is the state of an enrichment record.
type RecordStatus string

const (
	RecordStatusFresh RecordStatus = "FRESH"
	RecordStatusError RecordStatus = "ERROR"
)

func (s RecordStatus) String() string { return string(s) }

func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordStatusFresh, RecordStatusError:
		return true
	}
	return false
}

// ErrorKind classifies why an enrichment lookup failed.
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindUnconfigured      ErrorKind = "UNCONFIGURED"
	ErrorKindUnavailable       ErrorKind = "UNAVAILABLE"
	ErrorKindQuotaExceeded     ErrorKind = "QUOTA_EXCEEDED"
	ErrorKindMalformedResponse ErrorKind = "MALFORMED_RESPONSE"
)

func (k ErrorKind) String() string { return string(k) }

func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorKindUnconfigured, ErrorKindUnavailable, ErrorKindQuotaExceeded, ErrorKindMalformedResponse:
		return true
	}
	return false
}

// Message returns a short user-facing warning for the error kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrorKindUnconfigured:
		return "lexical service is not configured"
	case ErrorKindUnavailable:
		return "lexical service is unavailable, try again"
	case ErrorKindQuotaExceeded:
		return "lexical service quota exceeded, try again later"
	case ErrorKindMalformedResponse:
		return "lexical service returned an unreadable answer"
	}
	return ""
}
