// Package dashboard serves the role-gated NeuroLens web dashboard. It talks to
// the NeuroLens service only through its HTTP API.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/neurolens/internal/api"
	"github.com/ashureev/neurolens/internal/document"
	"github.com/ashureev/neurolens/internal/domain"
	"github.com/ashureev/neurolens/internal/identity"
	"github.com/ashureev/neurolens/internal/store"
)

// maxUploadSize caps a study-material form (20MB).
const maxUploadSize = 20 << 20

// DefaultLiveInterval is used when NewHandler gets a non-positive interval.
const DefaultLiveInterval = 5 * time.Second

// Backend is the slice of the service API the dashboard drives.
type Backend interface {
	State(ctx context.Context) (api.StateResponse, error)
	SetThresholds(ctx context.Context, brightness, noise int) error
	AutoAdjust(ctx context.Context) (int, int, error)
	SetChildMode(ctx context.Context, mode domain.ComfortMode) error
	Chat(ctx context.Context, message string) (api.ReplyResponse, error)
	StudyHighlights(ctx context.Context, text string) (api.HighlightsResponse, error)
	StudyChat(ctx context.Context, question, text string) (api.ReplyResponse, error)
}

// Handler serves the dashboard pages and form actions.
type Handler struct {
	repo         store.Repository
	backend      Backend
	tmpl         *template.Template
	hub          *LiveHub
	liveInterval time.Duration
}

// NewHandler creates a new Handler with its dependencies.
func NewHandler(repo store.Repository, backend Backend, tmpl *template.Template, hub *LiveHub, liveInterval time.Duration) *Handler {
	if hub == nil {
		hub = NewLiveHub()
	}
	if liveInterval <= 0 {
		liveInterval = DefaultLiveInterval
	}
	return &Handler{
		repo:         repo,
		backend:      backend,
		tmpl:         tmpl,
		hub:          hub,
		liveInterval: liveInterval,
	}
}

// RegisterRoutes registers the dashboard routes. The identity middleware must
// already be installed on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/role", h.ChooseRole)
	r.Post("/switch", h.SwitchUser)

	r.Route("/parent", func(r chi.Router) {
		r.Use(h.requireRole(domain.RoleParent))
		r.Post("/thresholds", h.ApplyThresholds)
		r.Post("/auto-adjust", h.AutoAdjust)
	})

	r.Route("/child", func(r chi.Router) {
		r.Use(h.requireRole(domain.RoleChild))
		r.Post("/mode", h.ChangeMode)
		r.Post("/chat", h.CompanionChat)
		r.Post("/study/material", h.StudyMaterial)
		r.Post("/study/chat", h.StudyChat)
	})

	r.Get("/ws/state", h.Live)
}

type sessionKey struct{}

func sessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey{}).(*domain.Session)
	return s
}

func (h *Handler) loadSession(ctx context.Context) (*domain.Session, error) {
	sessionID := identity.SessionIDFromContext(ctx)
	s, err := h.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		s = domain.NewSession(sessionID, time.Now())
	}
	return s, nil
}

func (h *Handler) saveSession(ctx context.Context, s *domain.Session) error {
	s.LastSeenAt = time.Now()
	if err := h.repo.UpsertSession(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// requireRole loads the session and sends anyone without role back to the gate.
func (h *Handler) requireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := h.loadSession(r.Context())
			if err != nil {
				h.serverError(w, err)
				return
			}
			if s.Role != role {
				redirectHome(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	slog.Error("Dashboard request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// finish persists the session and returns the browser to the page.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, s *domain.Session) {
	if err := h.saveSession(r.Context(), s); err != nil {
		h.serverError(w, err)
		return
	}
	redirectHome(w, r)
}

// Index renders the role gate or the view of the chosen role.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := h.loadSession(ctx)
	if err != nil {
		h.serverError(w, err)
		return
	}

	data := PageData{
		Role:         s.Role,
		Roles:        roleOptions,
		Theme:        BaseTheme,
		LiveInterval: h.liveInterval.Milliseconds(),
	}

	hadNotices := len(s.Notices) > 0
	data.Notices = s.TakeNotices()

	switch s.Role {
	case domain.RoleParent:
		state, stateErr := h.backend.State(ctx)
		data.State = newStateView(s.Role, state, stateErr)
		data.Parent = newParentView(data.State)
	case domain.RoleChild:
		// Every child render re-asserts the selected mode.
		if err := h.backend.SetChildMode(ctx, s.Mode); err != nil {
			slog.Warn("Failed to push comfort mode", "error", err, "mode", s.Mode)
			data.Notices = append(data.Notices, domain.Notice{Level: domain.NoticeWarning, Text: MsgModeFailed})
		}
		state, stateErr := h.backend.State(ctx)
		data.State = newStateView(s.Role, state, stateErr)

		conv := domain.ConversationCompanion
		if s.Mode == domain.ModeFocus {
			conv = domain.ConversationStudy
		}
		history, err := h.repo.ListMessages(ctx, s.ID, conv)
		if err != nil {
			h.serverError(w, err)
			return
		}
		data.Child = newChildView(s, history)
		data.Theme = ThemeFor(s.Mode)
	}

	if hadNotices {
		if err := h.saveSession(ctx, s); err != nil {
			h.serverError(w, err)
			return
		}
	}

	h.render(w, data)
}

func (h *Handler) render(w http.ResponseWriter, data PageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		h.serverError(w, fmt.Errorf("render page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Failed to write page", "error", err)
	}
}

// ChooseRole stores the role picked on the gate.
func (h *Handler) ChooseRole(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseRole(r.FormValue("role"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, err := h.loadSession(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	s.Role = role
	slog.Info("Dashboard role selected", "session_id", s.ID, "role", role)
	h.finish(w, r, s)
}

// SwitchUser clears the role and returns to the gate.
func (h *Handler) SwitchUser(w http.ResponseWriter, r *http.Request) {
	s, err := h.loadSession(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	s.Role = domain.RoleNone
	h.finish(w, r, s)
}

// ApplyThresholds forwards the caregiver sliders to the service.
func (h *Handler) ApplyThresholds(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	b, errB := sliderValue(r.FormValue("brightness"))
	n, errN := sliderValue(r.FormValue("noise"))
	if errB != nil || errN != nil {
		http.Error(w, "brightness and noise must be integers between 0 and 100", http.StatusBadRequest)
		return
	}

	if err := h.backend.SetThresholds(r.Context(), b, n); err != nil {
		slog.Warn("Failed to apply thresholds", "error", err)
		s.AddNotice(domain.NoticeWarning, MsgThresholdsFailed)
	}
	h.finish(w, r, s)
}

func sliderValue(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("%d out of range", v)
	}
	return v, nil
}

// AutoAdjust asks the service to bring readings under the thresholds.
func (h *Handler) AutoAdjust(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if _, _, err := h.backend.AutoAdjust(r.Context()); err != nil {
		slog.Warn("Auto-adjust failed", "error", err)
		s.AddNotice(domain.NoticeWarning, MsgAutoAdjustFailed)
	}
	h.finish(w, r, s)
}

// ChangeMode stores the child's comfort mode. The next render pushes it.
func (h *Handler) ChangeMode(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseComfortMode(r.FormValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s := sessionFromContext(r.Context())
	s.Mode = mode
	h.finish(w, r, s)
}

// CompanionChat relays a message to the companion and records both sides.
func (h *Handler) CompanionChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := sessionFromContext(ctx)
	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		redirectHome(w, r)
		return
	}

	resp, err := h.backend.Chat(ctx, message)
	if err != nil {
		slog.Warn("Companion chat failed", "error", err, "session_id", s.ID)
	}
	if err := h.appendExchange(ctx, s.ID, domain.ConversationCompanion, message, companionReply(resp.Reply, err)); err != nil {
		h.serverError(w, err)
		return
	}
	h.finish(w, r, s)
}

// StudyChat relays a question about the loaded material.
func (h *Handler) StudyChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := sessionFromContext(ctx)
	question := strings.TrimSpace(r.FormValue("message"))
	if question == "" {
		redirectHome(w, r)
		return
	}

	resp, err := h.backend.StudyChat(ctx, question, s.StudyText)
	if err != nil {
		slog.Warn("Study chat failed", "error", err, "session_id", s.ID)
	}
	if err := h.appendExchange(ctx, s.ID, domain.ConversationStudy, question, studyReply(resp.Reply, err)); err != nil {
		h.serverError(w, err)
		return
	}
	h.finish(w, r, s)
}

func (h *Handler) appendExchange(ctx context.Context, sessionID string, conv domain.Conversation, question, reply string) error {
	if err := h.repo.AppendMessage(ctx, sessionID, conv, domain.ChatEntry{Role: domain.SpeakerUser, Message: question}); err != nil {
		return err
	}
	return h.repo.AppendMessage(ctx, sessionID, conv, domain.ChatEntry{Role: domain.SpeakerAssistant, Message: reply})
}

// StudyMaterial loads pasted and uploaded text and requests its highlights.
func (h *Handler) StudyMaterial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := sessionFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	extracted := h.extractUpload(r, s)
	text := document.Combine(r.FormValue("pasted_text"), extracted)
	s.StudyText = text

	if text == "" {
		s.Highlights = nil
		s.AddNotice(domain.NoticeWarning, MsgNoMaterial)
		h.finish(w, r, s)
		return
	}

	resp, err := h.backend.StudyHighlights(ctx, text)
	if err != nil {
		slog.Warn("Study highlights failed", "error", err, "session_id", s.ID)
		s.Highlights = nil
		s.AddNotice(domain.NoticeWarning, highlightsFailure(err))
	} else {
		s.Highlights = resp.Highlights
	}
	h.finish(w, r, s)
}

// extractUpload returns the text of the uploaded document, or "" with a
// notice when there is none or it cannot be read.
func (h *Handler) extractUpload(r *http.Request, s *domain.Session) string {
	file, header, err := r.FormFile("document")
	if err != nil {
		return ""
	}
	defer file.Close()
	if header.Filename == "" {
		return ""
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Warn("Failed to read upload", "error", err, "filename", header.Filename)
		s.AddNotice(domain.NoticeWarning, MsgDocumentUnreadable)
		return ""
	}

	text, err := document.Extract(header.Filename, data)
	switch {
	case errors.Is(err, document.ErrUnsupportedFormat):
		s.AddNotice(domain.NoticeWarning, MsgUnsupportedFormat)
		return ""
	case err != nil:
		slog.Warn("Failed to extract upload", "error", err, "filename", header.Filename)
		s.AddNotice(domain.NoticeWarning, MsgDocumentUnreadable)
		return ""
	}
	return text
}
