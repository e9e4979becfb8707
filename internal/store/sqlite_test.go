package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/neurolens/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite("")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	got, err := repo.GetSession(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Expected (nil, nil) for missing session, got (%v, %v)", got, err)
	}

	now := time.Now().Truncate(time.Second)
	s := domain.NewSession("abc", now)
	s.Role = domain.RoleChild
	s.Mode = domain.ModeFocus
	s.StudyText = "Cells divide."
	s.Highlights = []string{"Cells divide."}
	s.AddNotice(domain.NoticeSuccess, "Study material loaded (13 characters).")

	if err := repo.UpsertSession(ctx, s); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	got, err = repo.GetSession(ctx, "abc")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Role != domain.RoleChild || got.Mode != domain.ModeFocus {
		t.Errorf("Unexpected role/mode: %q/%q", got.Role, got.Mode)
	}
	if got.StudyText != "Cells divide." || len(got.Highlights) != 1 {
		t.Errorf("Unexpected study state: %+v", got)
	}
	if len(got.Notices) != 1 || got.Notices[0].Level != domain.NoticeSuccess {
		t.Errorf("Unexpected notices: %+v", got.Notices)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("Expected created_at %v, got %v", now, got.CreatedAt)
	}

	got.Role = domain.RoleNone
	got.Highlights = nil
	got.TakeNotices()
	if err := repo.UpsertSession(ctx, got); err != nil {
		t.Fatalf("UpsertSession update: %v", err)
	}
	again, err := repo.GetSession(ctx, "abc")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if again.Role != domain.RoleNone || len(again.Highlights) != 0 || len(again.Notices) != 0 {
		t.Errorf("Expected cleared session, got %+v", again)
	}
}

func TestMessagesPerConversation(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	if err := repo.UpsertSession(ctx, domain.NewSession("s1", time.Now())); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	entries := []struct {
		conv  domain.Conversation
		entry domain.ChatEntry
	}{
		{domain.ConversationCompanion, domain.ChatEntry{Role: domain.SpeakerUser, Message: "hi"}},
		{domain.ConversationStudy, domain.ChatEntry{Role: domain.SpeakerUser, Message: "explain"}},
		{domain.ConversationCompanion, domain.ChatEntry{Role: domain.SpeakerAssistant, Message: "hello"}},
	}
	for _, e := range entries {
		if err := repo.AppendMessage(ctx, "s1", e.conv, e.entry); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	companion, err := repo.ListMessages(ctx, "s1", domain.ConversationCompanion)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(companion) != 2 || companion[0].Message != "hi" || companion[1].Message != "hello" {
		t.Errorf("Unexpected companion history: %+v", companion)
	}

	study, err := repo.ListMessages(ctx, "s1", domain.ConversationStudy)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(study) != 1 || study[0].Role != domain.SpeakerUser {
		t.Errorf("Unexpected study history: %+v", study)
	}
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	if err := repo.UpsertSession(ctx, domain.NewSession("s1", time.Now())); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	if err := repo.AppendMessage(ctx, "s1", domain.ConversationCompanion, domain.ChatEntry{Role: "user", Message: "hi"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	if err := repo.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	if got, _ := repo.GetSession(ctx, "s1"); got != nil {
		t.Errorf("Expected session to be gone, got %+v", got)
	}
	msgs, err := repo.ListMessages(ctx, "s1", domain.ConversationCompanion)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Expected no messages, got %d", len(msgs))
	}
}

func TestGetExpiredSessions(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	stale := domain.NewSession("stale", now.Add(-3*time.Hour))
	fresh := domain.NewSession("fresh", now)
	for _, s := range []*domain.Session{stale, fresh} {
		if err := repo.UpsertSession(ctx, s); err != nil {
			t.Fatalf("UpsertSession: %v", err)
		}
	}

	ids, err := repo.GetExpiredSessions(ctx, 2*time.Hour)
	if err != nil {
		t.Fatalf("GetExpiredSessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "stale" {
		t.Errorf("Expected only the stale session, got %v", ids)
	}

	if err := repo.UpdateLastSeen(ctx, "stale", now); err != nil {
		t.Fatalf("UpdateLastSeen: %v", err)
	}
	ids, err = repo.GetExpiredSessions(ctx, 2*time.Hour)
	if err != nil {
		t.Fatalf("GetExpiredSessions: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no expired sessions after touch, got %v", ids)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	if err := newTestStore(t).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewSQLiteUnopenablePath(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "missing", "sessions.db")
	repo, err := NewSQLite(dsn)
	if err == nil {
		_ = repo.Close()
		t.Fatal("Expected an error for a database in a missing directory")
	}
	if repo != nil {
		t.Errorf("Expected nil repository on error, got %T", repo)
	}
}
