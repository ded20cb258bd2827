// Package api exposes the tutoring engine over a thin JSON REST surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/elimu-labs/mwalimu"
	"github.com/elimu-labs/mwalimu/cache"
	"github.com/elimu-labs/mwalimu/internal/metrics"
)

// Tutor is the surface the handlers need from the orchestration layer.
type Tutor interface {
	Summarize(ctx context.Context, chapter string) (mwalimu.BilingualAnswer, error)
	Ask(ctx context.Context, question string) (mwalimu.BilingualAnswer, error)
	Revision(ctx context.Context, chapter string) ([]mwalimu.RevisionItem, error)
}

// Handler serves the REST endpoints. It owns no tutoring state; it decodes
// requests, delegates to the Tutor, and shapes responses.
type Handler struct {
	tutor         Tutor
	cache         cache.Cache
	ttl           time.Duration
	logger        *slog.Logger
	model         string
	maxConcurrent int
}

// Options configures the Handler.
type Options struct {
	Tutor         Tutor
	Cache         cache.Cache
	TTL           time.Duration
	Logger        *slog.Logger
	Model         string
	MaxConcurrent int
}

// NewHandler builds the REST handler.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tutor:         opts.Tutor,
		cache:         opts.Cache,
		ttl:           opts.TTL,
		logger:        logger.With(slog.String("component", "api")),
		model:         opts.Model,
		maxConcurrent: opts.MaxConcurrent,
	}
}

// NewRouter wires the REST routes. The metrics recorder is optional; when
// present every request is counted and timed and /metrics is served.
func NewRouter(h *Handler, rec *metrics.Recorder) http.Handler {
	mux := http.NewServeMux()
	route := func(pattern, name string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(rec, name, fn))
	}

	route("POST /summarize", "summarize", h.Summarize)
	route("POST /revision", "revision", h.Revision)
	route("POST /ask", "ask", h.Ask)
	route("POST /cache/clear", "cache_clear", h.CacheClear)
	route("GET /cache/stats", "cache_stats", h.CacheStats)
	route("GET /health", "health", h.Health)
	route("GET /status", "status", h.Status)
	if rec != nil {
		mux.Handle("GET /metrics", rec.Handler())
	}
	return mux
}

// instrument wraps a handler with request metrics.
func instrument(rec *metrics.Recorder, route string, next http.HandlerFunc) http.Handler {
	if rec == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		rec.ObserveRequest(route, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type chapterRequest struct {
	Chapter string `json:"chapter"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type bilingualResponse struct {
	English string `json:"english"`
	Swahili string `json:"swahili"`
}

type summarizeResponse struct {
	Mode     string            `json:"mode"`
	Chapter  string            `json:"chapter"`
	Response bilingualResponse `json:"response"`
}

type revisionQuestion struct {
	QuestionText    string            `json:"question_text"`
	SwahiliQuestion string            `json:"swahili_question"`
	Answer          bilingualResponse `json:"answer"`
}

type revisionResponse struct {
	Mode      string             `json:"mode"`
	Chapter   string             `json:"chapter"`
	Questions []revisionQuestion `json:"questions"`
}

type askResponse struct {
	Mode         string            `json:"mode"`
	QuestionText string            `json:"question_text"`
	Response     bilingualResponse `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Summarize handles POST /summarize.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req chapterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Chapter == "" {
		h.writeError(w, http.StatusBadRequest, "chapter is required")
		return
	}

	ans, err := h.tutor.Summarize(r.Context(), req.Chapter)
	if err != nil {
		h.writeTutorError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summarizeResponse{
		Mode:     string(mwalimu.ModeSummarize),
		Chapter:  req.Chapter,
		Response: toBilingual(ans),
	})
}

// Revision handles POST /revision.
func (h *Handler) Revision(w http.ResponseWriter, r *http.Request) {
	var req chapterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Chapter == "" {
		h.writeError(w, http.StatusBadRequest, "chapter is required")
		return
	}

	items, err := h.tutor.Revision(r.Context(), req.Chapter)
	if err != nil {
		h.writeTutorError(w, err)
		return
	}

	questions := make([]revisionQuestion, 0, len(items))
	for _, item := range items {
		questions = append(questions, revisionQuestion{
			QuestionText:    item.QuestionText,
			SwahiliQuestion: item.SwahiliQuestion,
			Answer:          toBilingual(item.Answer),
		})
	}

	h.writeJSON(w, http.StatusOK, revisionResponse{
		Mode:      string(mwalimu.ModeRevision),
		Chapter:   req.Chapter,
		Questions: questions,
	})
}

// Ask handles POST /ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Question == "" {
		h.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	ans, err := h.tutor.Ask(r.Context(), req.Question)
	if err != nil {
		h.writeTutorError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, askResponse{
		Mode:         string(mwalimu.ModeAsk),
		QuestionText: req.Question,
		Response:     toBilingual(ans),
	})
}

// CacheClear handles POST /cache/clear; used after content updates to
// force fresh generation.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if err := h.cache.Clear(); err != nil {
			h.logger.Warn("cache clear failed", slog.Any("error", err))
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

// CacheStats handles GET /cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	count := 0
	if h.cache != nil {
		count = h.cache.Len()
	}
	h.writeJSON(w, http.StatusOK, map[string]int{
		"cached_queries": count,
		"ttl_seconds":    int(h.ttl.Seconds()),
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": mwalimu.Version,
	})
}

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "healthy",
		"model":                  h.model,
		"cache_ttl_seconds":      int(h.ttl.Seconds()),
		"max_parallel_questions": h.maxConcurrent,
	})
}

// decode reads a JSON body; a malformed body yields a 400 and stops
// processing before any external call.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeTutorError maps orchestration errors to HTTP statuses. Upstream
// failures surface as a generic 502; internal detail never leaks to the
// caller.
func (h *Handler) writeTutorError(w http.ResponseWriter, err error) {
	var validationErr *mwalimu.ValidationError
	if errors.As(err, &validationErr) {
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	var upstreamErr *mwalimu.UpstreamError
	if errors.As(err, &upstreamErr) || errors.Is(err, context.DeadlineExceeded) {
		h.logger.Error("upstream failure", slog.Any("error", err))
		h.writeError(w, http.StatusBadGateway, "upstream service unavailable")
		return
	}

	h.logger.Error("request failed", slog.Any("error", err))
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("response encode failed", slog.Any("error", err))
	}
}

func toBilingual(ans mwalimu.BilingualAnswer) bilingualResponse {
	return bilingualResponse{English: ans.English, Swahili: ans.Swahili}
}
