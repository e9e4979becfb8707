// Package identity provides anonymous per-browser dashboard sessions.
package identity

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/neurolens/internal/domain"
	"github.com/ashureev/neurolens/internal/store"
)

// CookieName carries the dashboard session ID.
const CookieName = "neurolens_session"

type contextKey int

const sessionIDKey contextKey = iota

// Options controls the session cookie.
type Options struct {
	// MaxAge bounds the cookie lifetime. Zero makes it a browser-session cookie.
	MaxAge time.Duration
	Secure bool
}

// SessionIDFromContext extracts the dashboard session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID returns a context carrying sessionID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func isValidSessionID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// ensureSession creates the session row on first sight and touches it
// afterwards. A cookie that outlived its swept row simply starts over.
func ensureSession(ctx context.Context, repo store.Repository, sessionID string) error {
	now := time.Now()
	session, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session != nil {
		return repo.UpdateLastSeen(ctx, sessionID, now)
	}
	return repo.UpsertSession(ctx, domain.NewSession(sessionID, now))
}

func setCookie(w http.ResponseWriter, id string, opts Options) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	}
	if opts.MaxAge > 0 {
		c.MaxAge = int(opts.MaxAge.Seconds())
		c.Expires = time.Now().Add(opts.MaxAge)
	}
	http.SetCookie(w, c)
}

func getOrCreateSessionID(w http.ResponseWriter, r *http.Request, opts Options) string {
	if c, err := r.Cookie(CookieName); err == nil && isValidSessionID(c.Value) {
		setCookie(w, c.Value, opts)
		return c.Value
	}

	id := uuid.NewString()
	setCookie(w, id, opts)
	return id
}

// Middleware establishes the dashboard session for every request.
func Middleware(repo store.Repository, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := getOrCreateSessionID(w, r, opts)

			if err := ensureSession(r.Context(), repo, sessionID); err != nil {
				slog.Error("Failed to initialize dashboard session", "session_id", sessionID, "error", err)
				http.Error(w, "failed to initialize session", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}
