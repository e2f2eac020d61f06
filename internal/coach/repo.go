package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/zenith/internal/docstore"
)

type chatStore interface {
	CreateChatSession(ctx context.Context, identity string, rec docstore.ChatSessionRecord) error
	AppendChatMessages(ctx context.Context, identity, sessionID, title string, lastModified time.Time, messages json.RawMessage) error
	ListChatSessions(ctx context.Context, identity string) ([]docstore.ChatSessionRecord, error)
}

type Repo struct {
	store chatStore
}

func NewRepo(store chatStore) *Repo {
	return &Repo{
		store: store,
	}
}

func (r *Repo) Load(ctx context.Context, identity string) ([]ChatSession, bool, error) {
	records, err := r.store.ListChatSessions(ctx, identity)
	if err != nil {
		return nil, false, fmt.Errorf("list chat sessions: %w", err)
	}

	sessions := make([]ChatSession, 0, len(records))
	for _, rec := range records {
		session := ChatSession{
			ID:           rec.ID,
			Title:        rec.Title,
			LastModified: rec.LastModified,
			Messages:     []ChatMessage{},
		}
		if len(rec.Messages) > 0 {
			if err := json.Unmarshal(rec.Messages, &session.Messages); err != nil {
				return nil, false, fmt.Errorf("decode chat session %s: %w", rec.ID, err)
			}
		}
		sessions = append(sessions, session)
	}
	return sessions, len(sessions) > 0, nil
}

func (r *Repo) Create(ctx context.Context, identity string, session ChatSession) error {
	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("encode chat messages: %w", err)
	}
	return r.store.CreateChatSession(ctx, identity, docstore.ChatSessionRecord{
		ID:           session.ID,
		Title:        session.Title,
		LastModified: session.LastModified,
		Messages:     messages,
	})
}

// AppendTurn appends the two messages of a turn in a single write.
func (r *Repo) AppendTurn(ctx context.Context, identity, sessionID, title string, lastModified time.Time, user, model ChatMessage) error {
	messages, err := json.Marshal([]ChatMessage{user, model})
	if err != nil {
		return fmt.Errorf("encode chat turn: %w", err)
	}
	if err := r.store.AppendChatMessages(ctx, identity, sessionID, title, lastModified, messages); err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}
