package unconfigured

import (
	"context"
	"fmt"

	"github.com/heartmarshall/readalong/internal/provider"
)

// Stub is the lexical provider used when no credential is configured.
// Every lookup fails with provider.ErrUnconfigured.
type Stub struct {
	reason string
}

// NewStub creates a Stub. reason is included in the error text.
func NewStub(reason string) *Stub { return &Stub{reason: reason} }

// Enrich always fails with provider.ErrUnconfigured.
func (s *Stub) Enrich(_ context.Context, req provider.LexicalRequest) (*provider.LexicalResult, error) {
	if s.reason == "" {
		return nil, fmt.Errorf("enrich %q: %w", req.Lemma, provider.ErrUnconfigured)
	}
	return nil, fmt.Errorf("enrich %q: %s: %w", req.Lemma, s.reason, provider.ErrUnconfigured)
}
