package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/neurolens/internal/store"
)

// MaxSweepInterval caps how long an expired session may linger.
const MaxSweepInterval = 5 * time.Minute

// CleanupCallback is called when a session is removed by the sweeper.
type CleanupCallback func(sessionID string)

// SweepInterval picks the sweep period for a session TTL.
func SweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > MaxSweepInterval {
		return MaxSweepInterval
	}
	return ttl
}

// StartSweeper runs a background goroutine that periodically removes
// dashboard sessions unseen for longer than ttl.
func StartSweeper(ctx context.Context, repo store.Repository, ttl, interval time.Duration, onCleanup CleanupCallback) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepExpiredSessions(ctx, repo, ttl, onCleanup)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepExpiredSessions(ctx context.Context, repo store.Repository, ttl time.Duration, onCleanup CleanupCallback) int {
	expired, err := repo.GetExpiredSessions(ctx, ttl)
	if err != nil {
		slog.Error("Session sweeper failed to get expired sessions", "error", err)
		return 0
	}

	if len(expired) == 0 {
		return 0
	}

	slog.Info("Session sweeper found expired sessions", "count", len(expired))

	cleaned := 0
	for _, sessionID := range expired {
		if onCleanup != nil {
			onCleanup(sessionID)
		}

		// DeleteSession retries on SQLITE_BUSY itself.
		if err := repo.DeleteSession(ctx, sessionID); err != nil {
			if ctx.Err() != nil {
				slog.Debug("Session sweeper interrupted", "session_id", sessionID, "error", err)
				return cleaned
			}
			slog.Warn("Session sweeper failed to delete session", "error", err, "session_id", sessionID)
			continue
		}
		cleaned++
	}

	slog.Info("Session sweeper cleanup completed", "cleaned", cleaned)
	return cleaned
}
