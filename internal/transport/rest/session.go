package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/readalong/internal/domain"
	"github.com/heartmarshall/readalong/internal/service/highlight"
	"github.com/heartmarshall/readalong/internal/service/summary"
	"github.com/heartmarshall/readalong/internal/session"
	"github.com/heartmarshall/readalong/pkg/ctxutil"
)

// sessionRegistry defines the minimal interface needed by SessionHandler.
type sessionRegistry interface {
	Create() (*session.Session, error)
	Get(id string) (*session.Session, error)
	Delete(id string) error
}

// SessionHandler serves the session REST endpoints.
type SessionHandler struct {
	sessions     sessionRegistry
	log          *slog.Logger
	maxBodyBytes int64
}

// NewSessionHandler creates a SessionHandler. Request bodies larger than
// maxBodyBytes are rejected; a non-positive value uses a default derived
// from session.DefaultMaxTextBytes that leaves room for JSON escapes.
func NewSessionHandler(sessions sessionRegistry, logger *slog.Logger, maxBodyBytes int64) *SessionHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 4 * session.DefaultMaxTextBytes
	}
	return &SessionHandler{
		sessions:     sessions,
		log:          logger.With("handler", "session"),
		maxBodyBytes: maxBodyBytes,
	}
}

// ---------------------------------------------------------------------------
// Requests / responses
// ---------------------------------------------------------------------------

type textRequest struct {
	Text string `json:"text"`
}

type literalRequest struct {
	Literal string `json:"literal"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type textResponse struct {
	Changed bool `json:"changed"`
	Tokens  int  `json:"tokens"`
}

type spanResponse struct {
	Literal        string `json:"literal"`
	FirstSeenOrder int    `json:"firstSeenOrder"`
}

type canonicalResponse struct {
	Lemma    string `json:"lemma"`
	Category string `json:"category"`
}

type exampleResponse struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type aspectPairResponse struct {
	Imperfective string `json:"imperfective"`
	Perfective   string `json:"perfective"`
}

type recordResponse struct {
	Lemma      string              `json:"lemma"`
	Category   string              `json:"category"`
	HeadWord   string              `json:"headWord"`
	Status     string              `json:"status"`
	Meanings   []string            `json:"meanings"`
	Examples   []exampleResponse   `json:"examples"`
	AspectPair *aspectPairResponse `json:"aspectPair,omitempty"`
	ErrorKind  string              `json:"errorKind,omitempty"`
	Warning    string              `json:"warning,omitempty"`
	Detail     string              `json:"detail,omitempty"`
	FetchedAt  time.Time           `json:"fetchedAt"`
}

type selectionResponse struct {
	Span        spanResponse      `json:"span"`
	Created     bool              `json:"created"`
	Canonical   canonicalResponse `json:"canonical"`
	Record      recordResponse    `json:"record"`
	Occurrences *int              `json:"occurrences,omitempty"`
}

type detailResponse struct {
	Span      spanResponse      `json:"span"`
	Active    bool              `json:"active"`
	Canonical canonicalResponse `json:"canonical"`
	Record    *recordResponse   `json:"record"`
}

type segmentResponse struct {
	Text    string `json:"text"`
	Kind    string `json:"kind"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Marked  bool   `json:"marked,omitempty"`
	Literal string `json:"literal,omitempty"`
	Active  bool   `json:"active,omitempty"`
}

type rowResponse struct {
	CanonicalForm string `json:"canonicalForm"`
	Meaning       string `json:"meaning"`
	Lemma         string `json:"lemma"`
	Category      string `json:"category"`
}

type snapshotResponse struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Spans    []spanResponse    `json:"spans"`
	Active   *spanResponse     `json:"active"`
	Segments []segmentResponse `json:"segments"`
	Rows     []rowResponse     `json:"rows"`
	Detail   *detailResponse   `json:"detail"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+s.ID())
	writeJSON(w, http.StatusCreated, toSnapshotResponse(s.Snapshot()))
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(s.Snapshot()))
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.PathValue("id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetText handles PUT /api/sessions/{id}/text.
func (h *SessionHandler) SetText(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}

	changed, err := s.SetText(req.Text)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, textResponse{Changed: changed, Tokens: len(s.Tokens())})
}

// Select handles POST /api/sessions/{id}/select.
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req literalRequest
	if !h.decode(w, r, &req) {
		return
	}

	sel, err := s.Select(ctxutil.WithSessionID(r.Context(), s.ID()), req.Literal)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSelectionResponse(sel))
}

// Search handles POST /api/sessions/{id}/search.
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := s.Search(ctxutil.WithSessionID(r.Context(), s.ID()), req.Query)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := toSelectionResponse(res.Selection)
	resp.Occurrences = &res.Occurrences
	writeJSON(w, http.StatusOK, resp)
}

// Activate handles POST /api/sessions/{id}/activate.
func (h *SessionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req literalRequest
	if !h.decode(w, r, &req) {
		return
	}

	span, err := s.Activate(req.Literal)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	d, err := s.Detail(span.Literal)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetailResponse(d))
}

// Refresh handles POST /api/sessions/{id}/refresh.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req literalRequest
	if !h.decode(w, r, &req) {
		return
	}

	sel, err := s.Refresh(ctxutil.WithSessionID(r.Context(), s.ID()), req.Literal)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSelectionResponse(sel))
}

// Reset handles POST /api/sessions/{id}/reset.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Reset()
	writeJSON(w, http.StatusOK, toSnapshotResponse(s.Snapshot()))
}

// Word handles GET /api/sessions/{id}/words/{literal}.
func (h *SessionHandler) Word(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	d, err := s.Detail(r.PathValue("literal"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetailResponse(d))
}

// RenderHTML handles GET /api/sessions/{id}/render.html. The rendered word
// links point back here with ?w=<word>, which selects the word before
// rendering.
func (h *SessionHandler) RenderHTML(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if word := r.URL.Query().Get("w"); word != "" {
		if _, err := s.Select(ctxutil.WithSessionID(r.Context(), s.ID()), word); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.RenderHTML())) //nolint:errcheck
}

// Export handles GET /api/sessions/{id}/export.csv.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.Export(&buf); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.handleError(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *SessionHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotSelected):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrLimitReached):
		writeError(w, http.StatusTooManyRequests, "session limit reached")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func toSpanResponse(s domain.Span) spanResponse {
	return spanResponse{Literal: s.Literal, FirstSeenOrder: s.FirstSeenOrder}
}

func toCanonicalResponse(c domain.CanonicalForm) canonicalResponse {
	return canonicalResponse{Lemma: c.Lemma, Category: c.Category.String()}
}

func toRecordResponse(rec domain.EnrichmentRecord) recordResponse {
	resp := recordResponse{
		Lemma:     rec.Lemma,
		Category:  rec.Category.String(),
		HeadWord:  rec.HeadWord(),
		Status:    rec.Status.String(),
		Meanings:  make([]string, 0, len(rec.Meanings)),
		Examples:  make([]exampleResponse, 0, len(rec.Examples)),
		ErrorKind: rec.ErrorKind.String(),
		Warning:   rec.ErrorKind.Message(),
		Detail:    rec.Detail,
		FetchedAt: rec.FetchedAt,
	}
	resp.Meanings = append(resp.Meanings, rec.Meanings...)
	for _, ex := range rec.Examples {
		resp.Examples = append(resp.Examples, exampleResponse{Source: ex.Source, Target: ex.Target})
	}
	if rec.AspectPair != nil {
		resp.AspectPair = &aspectPairResponse{
			Imperfective: rec.AspectPair.Imperfective,
			Perfective:   rec.AspectPair.Perfective,
		}
	}
	return resp
}

func toSelectionResponse(sel session.Selection) selectionResponse {
	return selectionResponse{
		Span:      toSpanResponse(sel.Span),
		Created:   sel.Created,
		Canonical: toCanonicalResponse(sel.Canonical),
		Record:    toRecordResponse(sel.Record),
	}
}

func toDetailResponse(d session.Detail) detailResponse {
	resp := detailResponse{
		Span:      toSpanResponse(d.Span),
		Active:    d.Active,
		Canonical: toCanonicalResponse(d.Canonical),
	}
	if d.Record != nil {
		rec := toRecordResponse(*d.Record)
		resp.Record = &rec
	}
	return resp
}

func toSegmentResponses(segments []highlight.Segment) []segmentResponse {
	out := make([]segmentResponse, len(segments))
	for i, s := range segments {
		out[i] = segmentResponse{
			Text:    s.Text,
			Kind:    s.Kind.String(),
			Start:   s.Start,
			End:     s.End,
			Marked:  s.Marked,
			Literal: s.Literal,
			Active:  s.Active,
		}
	}
	return out
}

func toRowResponses(rows []summary.Row) []rowResponse {
	out := make([]rowResponse, len(rows))
	for i, row := range rows {
		out[i] = rowResponse{
			CanonicalForm: row.CanonicalForm,
			Meaning:       row.Meaning,
			Lemma:         row.Lemma,
			Category:      row.Category.String(),
		}
	}
	return out
}

func toSnapshotResponse(snap session.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		ID:       snap.ID,
		Text:     snap.Text,
		Spans:    make([]spanResponse, len(snap.Spans)),
		Segments: toSegmentResponses(snap.Segments),
		Rows:     toRowResponses(snap.Rows),
	}
	for i, s := range snap.Spans {
		resp.Spans[i] = toSpanResponse(s)
	}
	if snap.Active != nil {
		a := toSpanResponse(*snap.Active)
		resp.Active = &a
	}
	if snap.Detail != nil {
		d := toDetailResponse(*snap.Detail)
		resp.Detail = &d
	}
	return resp
}
