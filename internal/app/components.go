package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/readalong/internal/adapter/provider/claude"
	"github.com/heartmarshall/readalong/internal/adapter/provider/gemini"
	"github.com/heartmarshall/readalong/internal/adapter/provider/morph"
	"github.com/heartmarshall/readalong/internal/adapter/provider/stemmer"
	"github.com/heartmarshall/readalong/internal/adapter/provider/unconfigured"
	"github.com/heartmarshall/readalong/internal/config"
	"github.com/heartmarshall/readalong/internal/provider"
	"github.com/heartmarshall/readalong/internal/service/enrichment"
	"github.com/heartmarshall/readalong/internal/service/normalizer"
	"github.com/heartmarshall/readalong/internal/session"
)

// LexicalUnconfigured names the lexical provider used without a credential.
const LexicalUnconfigured = "unconfigured"

type morphAnalyzer interface {
	Lemmatize(ctx context.Context, word string) (string, error)
	Analyze(ctx context.Context, word string) (string, error)
}

type lexicalProvider interface {
	Enrich(ctx context.Context, req provider.LexicalRequest) (*provider.LexicalResult, error)
}

// Components are the long-lived collaborators shared by every session.
type Components struct {
	Normalizer  *normalizer.Adapter
	Lexical     lexicalProvider
	LexicalName string
	MorphName   string
}

// NewComponents builds the morphological analyzer, the normalizer adapter
// and the lexical provider selected by cfg.
func NewComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	m, morphName := newMorph(cfg.Morph, logger)

	norm, err := normalizer.NewAdapter(logger, m, cfg.Engine.NormalizerMemoSize)
	if err != nil {
		return nil, fmt.Errorf("create normalizer: %w", err)
	}

	lex, lexName, err := newLexical(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	return &Components{
		Normalizer:  norm,
		Lexical:     lex,
		LexicalName: lexName,
		MorphName:   morphName,
	}, nil
}

// SessionFactory returns a factory creating sessions configured from cfg.
func (c *Components) SessionFactory(cfg *config.Config, logger *slog.Logger) session.Factory {
	opts := session.Options{
		Cache: enrichment.Options{
			TTL:          cfg.Engine.EnrichmentTTL,
			FetchTimeout: cfg.Engine.FetchTimeout,
		},
		Delimiter:    cfg.Engine.Delimiter(),
		MaxTextBytes: cfg.Session.MaxTextBytes,
	}
	return func(id string) *session.Session {
		return session.New(id, logger, c.Normalizer, c.Lexical, opts)
	}
}

func newMorph(cfg config.MorphConfig, logger *slog.Logger) (morphAnalyzer, string) {
	if cfg.Backend == config.MorphBackendHTTP {
		return morph.NewClient(cfg.BaseURL, cfg.Timeout, logger), config.MorphBackendHTTP
	}
	return stemmer.New(), config.MorphBackendStemmer
}

func newLexical(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (lexicalProvider, string, error) {
	if !cfg.Configured() {
		logger.Warn("lexical provider is not configured, every lookup will report it",
			slog.String("provider", cfg.Provider))
		return unconfigured.NewStub("llm.api_key is empty"), LexicalUnconfigured, nil
	}

	switch cfg.Provider {
	case config.LLMProviderGemini:
		p, err := gemini.NewProvider(ctx, gemini.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.BaseURL,
		}, logger)
		if err != nil {
			return nil, "", fmt.Errorf("create lexical provider: %w", err)
		}
		return p, config.LLMProviderGemini, nil
	default:
		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return claude.NewProvider(cfg.APIKey, cfg.Model, cfg.MaxTokens, logger, opts...), config.LLMProviderClaude, nil
	}
}
