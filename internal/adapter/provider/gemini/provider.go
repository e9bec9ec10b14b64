package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/heartmarshall/readalong/internal/provider"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config configures a Provider.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL string
}

// Provider is a lexical enrichment service backed by the Gemini API.
type Provider struct {
	client    *genai.Client
	model     string
	maxTokens int32
	log       *slog.Logger
}

// NewProvider creates a Provider for the Gemini API.
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Provider{
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxTokens),
		log:       logger.With("adapter", "gemini"),
	}, nil
}

// Enrich asks the model for the lexical JSON contract of req.Lemma.
func (p *Provider) Enrich(ctx context.Context, req provider.LexicalRequest) (*provider.LexicalResult, error) {
	p.log.DebugContext(ctx, "gemini request",
		slog.String("lemma", req.Lemma),
		slog.String("category", req.Category.String()),
	)

	contents := []*genai.Content{
		genai.NewContentFromText(provider.BuildLexicalPrompt(req), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if p.maxTokens > 0 {
		config.MaxOutputTokens = p.maxTokens
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: enrich %q: %w", req.Lemma, classify(err))
	}

	res, err := provider.ParseLexicalResponse(resp.Text(), req.Category)
	if err != nil {
		return nil, fmt.Errorf("gemini: enrich %q: %w", req.Lemma, err)
	}
	return res, nil
}

// classify wraps an SDK error with the matching provider sentinel.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %w", provider.ErrQuotaExceeded, err)
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden ||
		apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED":
		return fmt.Errorf("%w: %w", provider.ErrUnconfigured, err)
	default:
		return fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}
}
