// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/neurolens/internal/domain"
)

// Repository defines the interface for persisting dashboard sessions and
// their conversations.
type Repository interface {
	// GetSession retrieves a session by ID. A missing session yields (nil, nil).
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// UpsertSession creates or updates a session record.
	UpsertSession(ctx context.Context, session *domain.Session) error

	// UpdateLastSeen updates the last_seen_at timestamp for a session.
	UpdateLastSeen(ctx context.Context, sessionID string, lastSeen time.Time) error

	// AppendMessage adds an entry to one of the session's conversations.
	AppendMessage(ctx context.Context, sessionID string, conv domain.Conversation, entry domain.ChatEntry) error

	// ListMessages returns a conversation in insertion order.
	ListMessages(ctx context.Context, sessionID string, conv domain.Conversation) ([]domain.ChatEntry, error)

	// DeleteSession removes a session and all of its messages.
	DeleteSession(ctx context.Context, sessionID string) error

	// GetExpiredSessions returns the IDs of sessions unseen for longer than ttl.
	GetExpiredSessions(ctx context.Context, ttl time.Duration) ([]string, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
