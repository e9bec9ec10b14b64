package morph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/readalong/internal/domain"
)

// DefaultTimeout bounds a single HTTP request to the analyzer.
const DefaultTimeout = 10 * time.Second

const retryDelay = 500 * time.Millisecond

// Client talks to a morphological analyzer over HTTP:
//
//	GET {base}/lemmatize?word=... -> {"lemma": "..."}
//	GET {base}/analyze?word=...   -> {"tag": "..."}
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the analyzer at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "morph"),
	}
}

type lemmaResponse struct {
	Lemma string `json:"lemma"`
}

type tagResponse struct {
	Tag string `json:"tag"`
}

// Lemmatize returns the base form of word.
func (c *Client) Lemmatize(ctx context.Context, word string) (string, error) {
	var out lemmaResponse
	if err := c.get(ctx, "lemmatize", word, &out); err != nil {
		return "", err
	}
	return out.Lemma, nil
}

// Analyze returns the grammar tag of word, e.g. "VERB,impf,intr sing,3per".
func (c *Client) Analyze(ctx context.Context, word string) (string, error) {
	var out tagResponse
	if err := c.get(ctx, "analyze", word, &out); err != nil {
		return "", err
	}
	return out.Tag, nil
}

func (c *Client) get(ctx context.Context, op, word string, out any) error {
	reqURL := c.baseURL + "/" + op + "?word=" + url.QueryEscape(word)

	c.log.DebugContext(ctx, "morph request", slog.String("op", op), slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("morph %s: create request: %w", op, err)
	}

	resp, err := c.doWithRetry(ctx, req, word)
	if err != nil {
		return fmt.Errorf("morph %s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("morph %s %q: %w", op, word, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("morph %s: unexpected status %d", op, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("morph %s: read body: %w", op, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("morph %s: decode json: %w", op, err)
	}
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "morph retry", slog.String("word", word), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}

	return c.httpClient.Do(req)
}
