package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ashureev/neurolens/internal/domain"
	"github.com/ashureev/neurolens/internal/shared"
)

// MemoryDSN keeps the database inside the process. Dashboard sessions never
// outlive it.
const MemoryDSN = ":memory:"

const (
	deleteRetries   = 3
	deleteBaseDelay = 100 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository. An empty dsn selects
// MemoryDSN.
func NewSQLite(dsn string) (Repository, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database lives and dies with its connection, so keep
	// exactly one and never recycle it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		role TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL,
		study_text TEXT NOT NULL DEFAULT '',
		highlights_json TEXT NOT NULL DEFAULT '[]',
		notices_json TEXT NOT NULL DEFAULT '[]',
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen_at);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		conversation TEXT NOT NULL,
		role TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, conversation, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, role, mode, study_text, highlights_json, notices_json,
		       last_seen_at, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session domain.Session
	var role, mode, highlightsJSON, noticesJSON string
	var lastSeen, createdAt, updatedAt int64

	err := row.Scan(
		&session.ID, &role, &mode, &session.StudyText,
		&highlightsJSON, &noticesJSON,
		&lastSeen, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.Role = domain.Role(role)
	session.Mode = domain.ComfortMode(mode)
	if err := json.Unmarshal([]byte(highlightsJSON), &session.Highlights); err != nil {
		return nil, fmt.Errorf("decode highlights: %w", err)
	}
	if err := json.Unmarshal([]byte(noticesJSON), &session.Notices); err != nil {
		return nil, fmt.Errorf("decode notices: %w", err)
	}
	session.LastSeenAt = time.Unix(lastSeen, 0)
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	return &session, nil
}

// UpsertSession creates or updates a session record.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.Session) error {
	query := `
	INSERT INTO sessions (session_id, role, mode, study_text, highlights_json, notices_json,
	                      last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		role = excluded.role,
		mode = excluded.mode,
		study_text = excluded.study_text,
		highlights_json = excluded.highlights_json,
		notices_json = excluded.notices_json,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	highlights, err := marshalList(session.Highlights)
	if err != nil {
		return fmt.Errorf("encode highlights: %w", err)
	}
	notices, err := marshalList(session.Notices)
	if err != nil {
		return fmt.Errorf("encode notices: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		session.ID, string(session.Role), string(session.Mode), session.StudyText,
		highlights, notices,
		session.LastSeenAt.Unix(), session.CreatedAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a session.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, sessionID string, lastSeen time.Time) error {
	query := `UPDATE sessions SET last_seen_at = ?, updated_at = ? WHERE session_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), sessionID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "session_id", sessionID)
	}

	return nil
}

// AppendMessage adds an entry to one of the session's conversations.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, conv domain.Conversation, entry domain.ChatEntry) error {
	query := `
	INSERT INTO messages (session_id, conversation, role, message, created_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, sessionID, string(conv), entry.Role, entry.Message, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns a conversation in insertion order.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string, conv domain.Conversation) ([]domain.ChatEntry, error) {
	query := `
		SELECT role, message FROM messages
		WHERE session_id = ? AND conversation = ?
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, sessionID, string(conv))
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close message rows", "error", closeErr)
		}
	}()

	var entries []domain.ChatEntry
	for rows.Next() {
		var e domain.ChatEntry
		if err := rows.Scan(&e.Role, &e.Message); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return entries, nil
}

// DeleteSession removes a session and all of its messages, retrying with
// exponential backoff on SQLITE_BUSY.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	err := shared.RetryOnConflict(ctx, "delete_session", deleteRetries, deleteBaseDelay, func() error {
		return s.deleteSessionOnce(ctx, sessionID)
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *SQLiteStore) deleteSessionOnce(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session row: %w", err)
	}
	return tx.Commit()
}

// GetExpiredSessions returns the IDs of sessions unseen for longer than ttl.
func (s *SQLiteStore) GetExpiredSessions(ctx context.Context, ttl time.Duration) ([]string, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := `SELECT session_id FROM sessions WHERE last_seen_at < ? ORDER BY last_seen_at`

	rows, err := s.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("query expired sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close expired sessions rows", "error", closeErr)
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired session row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired sessions: %w", err)
	}

	return ids, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
