package morph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/heartmarshall/readalong/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Lemmatize_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lemmatize" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("word"); got != "идёт" {
			t.Errorf("word = %q, want %q", got, "идёт")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lemma":"идти"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 0, newTestLogger())
	lemma, err := c.Lemmatize(context.Background(), "идёт")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lemma != "идти" {
		t.Errorf("lemma = %q, want %q", lemma, "идти")
	}
}

func TestClient_Analyze_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"tag":"VERB,impf,intr sing,3per,pres,indc"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, newTestLogger())
	tag, err := c.Analyze(context.Background(), "идёт")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := domain.CategoryFromTag(tag); got != domain.CategoryVerb {
		t.Errorf("category = %s, want %s", got, domain.CategoryVerb)
	}
}

func TestClient_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, newTestLogger())
	_, err := c.Lemmatize(context.Background(), "qwerty")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClient_RetryOn5xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"lemma":"улица"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, newTestLogger())
	lemma, err := c.Lemmatize(context.Background(), "улице")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lemma != "улица" {
		t.Errorf("lemma = %q, want %q", lemma, "улица")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestClient_PersistentServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, newTestLogger())
	if _, err := c.Analyze(context.Background(), "улице"); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", n)
	}
}

func TestClient_NoRetryOn4xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, newTestLogger())
	if _, err := c.Lemmatize(context.Background(), "улице"); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, newTestLogger())
	if _, err := c.Lemmatize(context.Background(), "улице"); err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lemma":"улица"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, 0, newTestLogger())
	if _, err := c.Lemmatize(ctx, "улице"); err == nil {
		t.Fatal("expected error")
	}
}
