package claude

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/readalong/internal/provider"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// DefaultMaxTokens bounds the size of an answer.
const DefaultMaxTokens = 1024

// Provider is a lexical enrichment service backed by the Anthropic Messages API.
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewProvider creates a Provider. Extra request options (base URL, HTTP
// client) are applied after the API key.
func NewProvider(apiKey, model string, maxTokens int, logger *slog.Logger, opts ...option.RequestOption) *Provider {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &Provider{
		client:    anthropic.NewClient(clientOpts...),
		model:     model,
		maxTokens: int64(maxTokens),
		log:       logger.With("adapter", "claude"),
	}
}

// Enrich asks the model for meanings, examples and (for verbs) the aspect
// pair of req.Lemma. Failures are classified into the provider sentinels.
func (p *Provider) Enrich(ctx context.Context, req provider.LexicalRequest) (*provider.LexicalResult, error) {
	p.log.DebugContext(ctx, "claude request",
		slog.String("lemma", req.Lemma),
		slog.String("category", req.Category.String()),
	)

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(provider.BuildLexicalPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude: enrich %q: %w", req.Lemma, classify(err))
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	res, err := provider.ParseLexicalResponse(b.String(), req.Category)
	if err != nil {
		return nil, fmt.Errorf("claude: enrich %q: %w", req.Lemma, err)
	}
	return res, nil
}

// classify wraps an SDK error with the matching provider sentinel.
func classify(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", provider.ErrQuotaExceeded, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", provider.ErrUnconfigured, err)
	default:
		return fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}
}
