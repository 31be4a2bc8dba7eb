package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/af-corp/relay/internal/costs"
	"github.com/af-corp/relay/internal/dispatch"
	"github.com/af-corp/relay/internal/httputil"
	"github.com/af-corp/relay/internal/providers"
	"github.com/af-corp/relay/internal/types"
)

var version = "dev"

// SetVersion overrides the build version reported by the health endpoint.
func SetVersion(v string) { version = v }

// Handler holds dependencies for the relay HTTP handlers.
type Handler struct {
	svc     *dispatch.Service
	tracker *costs.Tracker
	health  *providers.HealthTracker
	logger  *slog.Logger
}

func NewHandler(svc *dispatch.Service, tracker *costs.Tracker, health *providers.HealthTracker, logger *slog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		tracker: tracker,
		health:  health,
		logger:  logger,
	}
}

// Routes builds the chi router for the relay API surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)

	r.Get("/relay/v1/health", h.Health)

	r.Post("/v1/dispatch", h.Dispatch)
	r.Get("/v1/stats", h.Stats)
	r.Post("/v1/stats/reset", h.StatsReset)

	return r
}

// dispatchBody is the JSON wire form of a dispatch call.
type dispatchBody struct {
	System   string `json:"system"`
	User     string `json:"user"`
	TraceID  string `json:"trace_id"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Dispatch handles POST /v1/dispatch
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var in dispatchBody
	if err := json.Unmarshal(body, &in); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	if in.User == "" {
		httputil.WriteBadRequestError(w, reqID, "user is required")
		return
	}

	req := &types.DispatchRequest{
		TraceID:        in.TraceID,
		System:         in.System,
		User:           in.User,
		PreferProvider: in.Provider,
		PreferModel:    in.Model,
		ReceivedAt:     receivedAt,
	}
	if req.TraceID == "" {
		req.TraceID = reqID
	}

	res, err := h.svc.Dispatch(r.Context(), req)
	if err != nil {
		h.writeDispatchError(w, reqID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) writeDispatchError(w http.ResponseWriter, reqID string, err error) {
	var de *providers.DispatchError
	if !errors.As(err, &de) {
		h.logger.Error("dispatch failed", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, "Dispatch failed")
		return
	}

	switch de.Kind {
	case providers.KindConfig, providers.KindUnsupportedProvider:
		httputil.WriteBadRequestError(w, reqID, de.Message)
	default:
		httputil.WriteServiceUnavailableError(w, reqID, de.Message)
	}
}

// Stats handles GET /v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.tracker.Summary())
}

// StatsReset handles POST /v1/stats/reset
func (h *Handler) StatsReset(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	h.logger.Info("cost ledger reset", "request_id", w.Header().Get("X-Request-ID"))
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /relay/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "healthy",
		"version": version,
	}
	if h.health != nil {
		resp["providers"] = h.health.Snapshot()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
