package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ashureev/neurolens/internal/domain"
	"github.com/ashureev/neurolens/internal/identity"
)

const liveWriteTimeout = 5 * time.Second

// LiveHub tracks the live-state websockets of every dashboard session. One
// session may have several tabs open.
type LiveHub struct {
	mu     sync.RWMutex
	active map[string]map[*websocket.Conn]struct{}
}

// NewLiveHub creates an empty hub.
func NewLiveHub() *LiveHub {
	return &LiveHub{active: make(map[string]map[*websocket.Conn]struct{})}
}

// Register adds a connection for a session.
func (m *LiveHub) Register(sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[sessionID]; !exists {
		m.active[sessionID] = make(map[*websocket.Conn]struct{})
	}
	m.active[sessionID][conn] = struct{}{}
	slog.Debug("Live channel registered", "session_id", sessionID)
}

// Unregister removes a connection for a session.
func (m *LiveHub) Unregister(sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.active[sessionID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(m.active, sessionID)
	}
	slog.Debug("Live channel unregistered", "session_id", sessionID)
}

// Count returns the number of open channels of a session.
func (m *LiveHub) Count(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active[sessionID])
}

// CloseSession terminates every live channel of a session.
func (m *LiveHub) CloseSession(sessionID string) {
	m.mu.Lock()
	conns := m.active[sessionID]
	delete(m.active, sessionID)
	m.mu.Unlock()

	for conn := range conns {
		_ = conn.Close(websocket.StatusNormalClosure, "session expired")
	}
	if len(conns) > 0 {
		slog.Info("Live channels closed", "session_id", sessionID, "count", len(conns))
	}
}

// LiveUpdate is one frame on the live-state channel.
type LiveUpdate struct {
	Available  bool           `json:"available"`
	Brightness int            `json:"brightness"`
	Noise      int            `json:"noise"`
	Exceeded   bool           `json:"exceeded"`
	Notice     *domain.Notice `json:"notice,omitempty"`
}

func newLiveUpdate(sv StateView) LiveUpdate {
	u := LiveUpdate{
		Available:  sv.Available,
		Brightness: sv.Brightness,
		Noise:      sv.Noise,
		Exceeded:   sv.Exceeded,
	}
	if sv.Notice.Text != "" {
		n := sv.Notice
		u.Notice = &n
	}
	return u
}

// Live upgrades to a websocket and pushes a fresh backend snapshot every
// live interval until the browser goes away. The browser never sends.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	h.hub.Register(sessionID, ws)
	defer h.hub.Unregister(sessionID, ws)

	ctx := ws.CloseRead(r.Context())

	ticker := time.NewTicker(h.liveInterval)
	defer ticker.Stop()

	for {
		if err := h.pushState(ctx, ws, sessionID); err != nil {
			if ctx.Err() == nil {
				slog.Debug("Live push failed", "error", err, "session_id", sessionID)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) pushState(ctx context.Context, ws *websocket.Conn, sessionID string) error {
	session, err := h.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.Role == domain.RoleNone {
		return nil
	}

	if err := h.repo.UpdateLastSeen(ctx, sessionID, time.Now()); err != nil {
		slog.Warn("Failed to update last seen", "error", err, "session_id", sessionID)
	}

	state, stateErr := h.backend.State(ctx)
	update := newLiveUpdate(newStateView(session.Role, state, stateErr))

	writeCtx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, ws, update)
}
