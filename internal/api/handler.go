// Package api provides HTTP handlers for the NeuroLens service.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/neurolens/internal/assistant"
	"github.com/ashureev/neurolens/internal/domain"
)

// maxRequestBodySize caps JSON request bodies (32MB). It sits above the
// dashboard's 20MB upload limit so extracted study text, once JSON-escaped,
// still fits.
const maxRequestBodySize = 32 << 20

// Environment is the state surface the handlers drive.
type Environment interface {
	Snapshot() domain.Environment
	Thresholds() (int, int)
	DetectThresholds() (int, int)
	AutoAdjust() domain.Environment
	SetReadings(brightness, noise int)
	SetThresholds(brightness, noise int)
	SetMode(mode domain.ComfortMode)
}

// Assistant answers the chat endpoints.
type Assistant interface {
	Companion(ctx context.Context, message string) assistant.Reply
	Highlights(ctx context.Context, text string) assistant.Highlights
	StudyAnswer(ctx context.Context, question, text string) assistant.Reply
}

// Handler serves the NeuroLens API.
type Handler struct {
	env       Environment
	assistant Assistant
}

// NewHandler creates a new Handler with its dependencies.
func NewHandler(env Environment, a Assistant) *Handler {
	return &Handler{env: env, assistant: a}
}

// RegisterRoutes registers every API route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/state", h.GetState)
	r.Get("/thresholds", h.GetThresholds)
	r.Post("/set-thresholds", h.SetThresholds)
	r.Post("/set-environment", h.SetEnvironment)
	r.Post("/set-child-mode", h.SetChildMode)
	r.Post("/auto-adjust", h.AutoAdjust)
	r.Post("/detect-thresholds", h.DetectThresholds)

	r.Post("/chat", h.Chat)
	r.Route("/study", func(r chi.Router) {
		r.Post("/highlights", h.StudyHighlights)
		r.Post("/chat", h.StudyChat)
	})

	r.Get("/healthz", h.Health)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
