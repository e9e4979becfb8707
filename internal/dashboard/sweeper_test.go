package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/neurolens/internal/domain"
	"github.com/ashureev/neurolens/internal/store"
)

func TestSweepExpiredSessions(t *testing.T) {
	t.Parallel()

	repo, err := store.NewSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, repo.UpsertSession(ctx, domain.NewSession("stale", now.Add(-3*time.Hour))))
	require.NoError(t, repo.UpsertSession(ctx, domain.NewSession("fresh", now)))
	require.NoError(t, repo.AppendMessage(ctx, "stale", domain.ConversationCompanion,
		domain.ChatEntry{Role: domain.SpeakerUser, Message: "hi"}))

	var cleaned []string
	n := sweepExpiredSessions(ctx, repo, 2*time.Hour, func(id string) { cleaned = append(cleaned, id) })

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"stale"}, cleaned)

	s, err := repo.GetSession(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = repo.GetSession(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, s)

	assert.Zero(t, sweepExpiredSessions(ctx, repo, 2*time.Hour, nil))
}

func TestStartSweeperStopsWithContext(t *testing.T) {
	t.Parallel()

	repo, err := store.NewSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, repo.UpsertSession(ctx, domain.NewSession("stale", time.Now().Add(-time.Hour))))

	swept := make(chan string, 1)
	StartSweeper(ctx, repo, time.Minute, 10*time.Millisecond, func(id string) {
		select {
		case swept <- id:
		default:
		}
	})

	select {
	case id := <-swept:
		assert.Equal(t, "stale", id)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run")
	}
	cancel()
}

func TestSweepInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MaxSweepInterval, SweepInterval(2*time.Hour))
	assert.Equal(t, time.Minute, SweepInterval(time.Minute))
	assert.Equal(t, MaxSweepInterval, SweepInterval(0))
}
