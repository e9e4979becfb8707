package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role selects which dashboard view a session sees.
type Role string

const (
	RoleNone   Role = ""
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// ParseRole accepts the role identifiers used by the dashboard forms.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parent", "caregiver", "parent / caregiver":
		return RoleParent, nil
	case "child":
		return RoleChild, nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// Label returns the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleParent:
		return "Parent / Caregiver"
	case RoleChild:
		return "Child"
	}
	return ""
}

// Conversation identifies one of the child's chat panels.
type Conversation string

const (
	ConversationCompanion Conversation = "companion"
	ConversationStudy     Conversation = "study"
)

// Speaker roles within a conversation.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// ChatEntry is a single message in a conversation.
type ChatEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// NoticeLevel mirrors the dashboard's notification styles.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot message shown on the next render.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// Session holds one browser's dashboard state.
type Session struct {
	ID         string
	Role       Role
	Mode       ComfortMode
	StudyText  string
	Highlights []string
	Notices    []Notice
	LastSeenAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSession returns a session with no role chosen yet.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Mode:       ModeCalm,
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddNotice queues a notice for the next render.
func (s *Session) AddNotice(level NoticeLevel, text string) {
	s.Notices = append(s.Notices, Notice{Level: level, Text: text})
}

// TakeNotices returns and clears the queued notices.
func (s *Session) TakeNotices() []Notice {
	n := s.Notices
	s.Notices = nil
	return n
}
