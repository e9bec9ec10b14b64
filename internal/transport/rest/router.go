package rest

import "net/http"

// NewRouter registers every endpoint on a new ServeMux.
func NewRouter(sessions *SessionHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("POST /api/sessions", sessions.Create)
	mux.HandleFunc("GET /api/sessions/{id}", sessions.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessions.Delete)
	mux.HandleFunc("PUT /api/sessions/{id}/text", sessions.SetText)
	mux.HandleFunc("POST /api/sessions/{id}/select", sessions.Select)
	mux.HandleFunc("POST /api/sessions/{id}/search", sessions.Search)
	mux.HandleFunc("POST /api/sessions/{id}/activate", sessions.Activate)
	mux.HandleFunc("POST /api/sessions/{id}/refresh", sessions.Refresh)
	mux.HandleFunc("POST /api/sessions/{id}/reset", sessions.Reset)
	mux.HandleFunc("GET /api/sessions/{id}/words/{literal}", sessions.Word)
	mux.HandleFunc("GET /api/sessions/{id}/render.html", sessions.RenderHTML)
	mux.HandleFunc("GET /api/sessions/{id}/export.csv", sessions.Export)

	return mux
}
