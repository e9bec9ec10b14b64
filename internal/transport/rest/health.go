package rest

import (
	"encoding/json"
	"net/http"
	"time"
)

// sessionCounter defines the minimal interface for session health checks.
type sessionCounter interface {
	Len() int
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	sessions    sessionCounter
	maxSessions int
	lexical     string
	version     string
}

// NewHealthHandler creates a HealthHandler. lexical names the configured
// lexical provider; maxSessions <= 0 means the registry is unbounded.
func NewHealthHandler(sessions sessionCounter, maxSessions int, lexical, version string) *HealthHandler {
	return &HealthHandler{
		sessions:    sessions,
		maxSessions: maxSessions,
		lexical:     lexical,
		version:     version,
	}
}

// HealthResponse is the JSON response for /live and /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Count  *int   `json:"count,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check. It reports the session registry load and
// the lexical provider in use. A full registry is reported as "degraded"
// with status 200 since existing sessions keep working.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	overall := "ok"

	n := h.sessions.Len()
	sessions := CompStatus{Status: "ok", Count: &n}
	if h.maxSessions > 0 && n >= h.maxSessions {
		sessions.Status = "full"
		overall = "degraded"
	}

	lexical := CompStatus{Status: "ok", Detail: h.lexical}
	if h.lexical == "" || h.lexical == "unconfigured" {
		lexical = CompStatus{Status: "unconfigured"}
		overall = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  overall,
		Version: h.version,
		Components: map[string]CompStatus{
			"sessions": sessions,
			"lexical":  lexical,
		},
		Timestamp: time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
