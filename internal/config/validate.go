package config

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit: requests_per_minute must be >= 0 (got %d)", c.RateLimit.RequestsPerMinute)
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit: cleanup_interval must be > 0 (got %v)", c.RateLimit.CleanupInterval)
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}
	if err := c.Engine.validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Morph.validate(); err != nil {
		return fmt.Errorf("morph: %w", err)
	}
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535 (got %d)", s.Port)
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 || s.IdleTimeout <= 0 || s.ShutdownTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0")
	}
	return nil
}

func (e *EngineConfig) validate() error {
	if e.EnrichmentTTL < 0 {
		return fmt.Errorf("enrichment_ttl must be >= 0 (got %v)", e.EnrichmentTTL)
	}
	if e.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be > 0 (got %v)", e.FetchTimeout)
	}
	if e.NormalizerMemoSize <= 0 {
		return fmt.Errorf("normalizer_memo_size must be > 0 (got %d)", e.NormalizerMemoSize)
	}

	d := e.Delimiter()
	switch {
	case e.ExportDelimiter != "tab" && e.ExportDelimiter != `\t` && utf8.RuneCountInString(e.ExportDelimiter) != 1:
		return fmt.Errorf("export_delimiter must be a single character (got %q)", e.ExportDelimiter)
	case d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError:
		return fmt.Errorf("export_delimiter %q is not allowed", e.ExportDelimiter)
	}
	return nil
}

func (m *MorphConfig) validate() error {
	switch m.Backend {
	case MorphBackendStemmer:
	case MorphBackendHTTP:
		if m.BaseURL == "" {
			return fmt.Errorf("base_url is required for the %s backend", MorphBackendHTTP)
		}
		if m.Timeout <= 0 {
			return fmt.Errorf("timeout must be > 0 (got %v)", m.Timeout)
		}
	default:
		return fmt.Errorf("unknown backend %q", m.Backend)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	if l.Provider != LLMProviderClaude && l.Provider != LLMProviderGemini {
		return fmt.Errorf("unknown provider %q", l.Provider)
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", l.MaxTokens)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.IdleTTL <= 0 {
		return fmt.Errorf("idle_ttl must be > 0 (got %v)", s.IdleTTL)
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be > 0 (got %v)", s.SweepInterval)
	}
	if s.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be > 0 (got %d)", s.MaxSessions)
	}
	if s.MaxTextBytes <= 0 {
		return fmt.Errorf("max_text_bytes must be > 0 (got %d)", s.MaxTextBytes)
	}
	return nil
}
