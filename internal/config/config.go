package config

import (
	"time"
	"unicode/utf8"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Engine    EngineConfig    `yaml:"engine"`
	Morph     MorphConfig     `yaml:"morph"`
	LLM       LLMConfig       `yaml:"llm"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig holds per-client request limits. A zero limit disables
// rate limiting.
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"RATE_LIMIT_PER_MINUTE"      env-default:"120"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"1m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// EngineConfig holds annotation engine settings.
type EngineConfig struct {
	EnrichmentTTL      time.Duration `yaml:"enrichment_ttl"       env:"ENGINE_ENRICHMENT_TTL"       env-default:"24h"`
	FetchTimeout       time.Duration `yaml:"fetch_timeout"        env:"ENGINE_FETCH_TIMEOUT"        env-default:"30s"`
	NormalizerMemoSize int           `yaml:"normalizer_memo_size" env:"ENGINE_NORMALIZER_MEMO_SIZE" env-default:"4096"`
	ExportDelimiter    string        `yaml:"export_delimiter"     env:"ENGINE_EXPORT_DELIMITER"     env-default:","`
}

// Delimiter returns the export delimiter as a rune. "tab" and "\t" both
// select a tab.
func (c EngineConfig) Delimiter() rune {
	switch c.ExportDelimiter {
	case "tab", `\t`:
		return '\t'
	case "":
		return ','
	}
	r, _ := utf8.DecodeRuneInString(c.ExportDelimiter)
	return r
}

// Morph backends.
const (
	MorphBackendHTTP    = "http"
	MorphBackendStemmer = "stemmer"
)

// MorphConfig selects and configures the morphological analyzer. The http
// backend yields dictionary lemmas and grammar tags and needs base_url; the
// stemmer backend works offline but yields stems with no part of speech.
type MorphConfig struct {
	Backend string        `yaml:"backend"  env:"MORPH_BACKEND"  env-default:"http"`
	BaseURL string        `yaml:"base_url" env:"MORPH_BASE_URL"`
	Timeout time.Duration `yaml:"timeout"  env:"MORPH_TIMEOUT"  env-default:"10s"`
}

// LLM providers.
const (
	LLMProviderClaude = "claude"
	LLMProviderGemini = "gemini"
)

// LLMConfig configures the lexical enrichment service. An empty API key is
// valid and disables enrichment.
type LLMConfig struct {
	Provider  string `yaml:"provider"   env:"LLM_PROVIDER"   env-default:"claude"`
	APIKey    string `yaml:"api_key"    env:"LLM_API_KEY"`
	Model     string `yaml:"model"      env:"LLM_MODEL"`
	MaxTokens int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
	BaseURL   string `yaml:"base_url"   env:"LLM_BASE_URL"`
}

// Configured reports whether a credential is available.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// SessionConfig holds session registry settings.
type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"       env:"SESSION_IDLE_TTL"       env-default:"2h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`
	MaxSessions   int           `yaml:"max_sessions"   env:"SESSION_MAX_SESSIONS"   env-default:"1000"`
	MaxTextBytes  int           `yaml:"max_text_bytes" env:"SESSION_MAX_TEXT_BYTES" env-default:"262144"`
}
