package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Kind names a per-identity document.
type Kind string

const (
	KindProfile         Kind = "profile"
	KindWorkoutPlan     Kind = "workout_plan"
	KindNutrition       Kind = "nutrition"
	KindExerciseHistory Kind = "exercise_history"
)

// ChatSessionRecord is a stored chat session. Messages is a JSON array.
type ChatSessionRecord struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	LastModified time.Time       `json:"lastModified"`
	Messages     json.RawMessage `json:"messages"`
}

// Store keeps the documents of each authenticated identity.
//
// Put overwrites the whole document. Merge upserts the top-level keys of the
// JSON object patch into the stored object. Chat sessions live one record per
// session; AppendChatMessages appends to the stored array in a single write.
type Store interface {
	Get(ctx context.Context, identity string, kind Kind) (json.RawMessage, error)
	Put(ctx context.Context, identity string, kind Kind, body json.RawMessage) error
	Merge(ctx context.Context, identity string, kind Kind, patch json.RawMessage) error

	CreateChatSession(ctx context.Context, identity string, rec ChatSessionRecord) error
	AppendChatMessages(ctx context.Context, identity, sessionID, title string, lastModified time.Time, messages json.RawMessage) error
	ListChatSessions(ctx context.Context, identity string) ([]ChatSessionRecord, error)
}
