package coach

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrTurnAborted     = errors.New("chat turn aborted")
)

const (
	DefaultTitle  = "New Conversation"
	titleMaxRunes = 30
	titleEllipsis = "…"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is one conversation thread. Messages are append-only.
type ChatSession struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	LastModified time.Time     `json:"lastModified"`
	Messages     []ChatMessage `json:"messages"`
}

func NewSession(now time.Time) ChatSession {
	return ChatSession{
		ID:           uuid.NewString(),
		Title:        DefaultTitle,
		LastModified: now.UTC(),
		Messages:     []ChatMessage{},
	}
}

// DeriveTitle is the first 30 runes of text, with an ellipsis when cut.
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleMaxRunes]) + titleEllipsis
}

// AppendTurn appends exactly one user and one model message and bumps lastModified.
// A session still carrying the default title is renamed after its first user message.
func (s *ChatSession) AppendTurn(user, model ChatMessage, now time.Time) {
	if len(s.Messages) == 0 && s.Title == DefaultTitle {
		if title := DeriveTitle(user.Text); title != "" {
			s.Title = title
		}
	}
	s.Messages = append(s.Messages, user, model)
	s.LastModified = now.UTC()
}

// Tail returns up to n trailing messages.
func (s ChatSession) Tail(n int) []ChatMessage {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

func (s ChatSession) Clone() ChatSession {
	if s.Messages != nil {
		s.Messages = append([]ChatMessage{}, s.Messages...)
	}
	return s
}

// SortByLastModified orders sessions newest first.
func SortByLastModified(sessions []ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastModified.After(sessions[j].LastModified)
	})
}

func cloneSessions(sessions []ChatSession) []ChatSession {
	if sessions == nil {
		return nil
	}
	c := make([]ChatSession, len(sessions))
	for i, s := range sessions {
		c[i] = s.Clone()
	}
	return c
}
