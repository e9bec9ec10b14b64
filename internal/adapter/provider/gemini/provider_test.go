package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/heartmarshall/readalong/internal/domain"
	"github.com/heartmarshall/readalong/internal/provider"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(t *testing.T, status int, body string) *Provider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), "path %s", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewProvider(context.Background(), Config{
		APIKey:    "test-key",
		Model:     "gemini-test",
		MaxTokens: 256,
		BaseURL:   srv.URL,
	}, newTestLogger())
	require.NoError(t, err)
	return p
}

func TestProvider_Enrich_Noun(t *testing.T) {
	t.Parallel()

	body := `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ko_meanings\":[\"거리\",\"길\"],\"examples\":[{\"ru\":\"Я иду по улице.\",\"ko\":\"나는 거리를 걷는다.\"}]}"}]}}]}`
	p := newTestProvider(t, http.StatusOK, body)

	res, err := p.Enrich(context.Background(), provider.LexicalRequest{
		Literal:  "улице",
		Lemma:    "улица",
		Category: domain.CategoryNoun,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"거리", "길"}, res.Meanings)
	require.Len(t, res.Examples, 1)
	assert.Equal(t, "Я иду по улице.", res.Examples[0].Source)
	assert.Nil(t, res.AspectPair)
}

func TestProvider_Enrich_EmptyCandidatesIsMalformed(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, http.StatusOK, `{"candidates":[]}`)

	_, err := p.Enrich(context.Background(), provider.LexicalRequest{Lemma: "улица", Category: domain.CategoryNoun})

	assert.ErrorIs(t, err, provider.ErrMalformedResponse)
}

func TestProvider_Enrich_QuotaExceeded(t *testing.T) {
	t.Parallel()

	body := `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`
	p := newTestProvider(t, http.StatusTooManyRequests, body)

	_, err := p.Enrich(context.Background(), provider.LexicalRequest{Lemma: "улица", Category: domain.CategoryNoun})

	assert.ErrorIs(t, err, provider.ErrQuotaExceeded)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "quota by code", err: genai.APIError{Code: 429}, want: provider.ErrQuotaExceeded},
		{name: "quota by status", err: genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, want: provider.ErrQuotaExceeded},
		{name: "bad key", err: genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, want: provider.ErrUnconfigured},
		{name: "server", err: genai.APIError{Code: 503, Status: "UNAVAILABLE"}, want: provider.ErrUnavailable},
		{name: "network", err: errors.New("connection reset"), want: provider.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}
}
