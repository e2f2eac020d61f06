package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type memoryChatSession struct {
	identity string
	record   ChatSessionRecord
	messages []json.RawMessage
}

// MemoryStore is a Store kept in process memory. Used by tests and the local dev setup.
type MemoryStore struct {
	mutex     sync.RWMutex
	documents map[string]map[Kind]json.RawMessage
	chats     map[string]*memoryChatSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]map[Kind]json.RawMessage),
		chats:     make(map[string]*memoryChatSession),
	}
}

func (s *MemoryStore) Get(_ context.Context, identity string, kind Kind) (json.RawMessage, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	body, ok := s.documents[identity][kind]
	if !ok {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), body...), nil
}

func (s *MemoryStore) Put(_ context.Context, identity string, kind Kind, body json.RawMessage) error {
	if !json.Valid(body) {
		return fmt.Errorf("put %s: invalid json", kind)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.docsFor(identity)[kind] = append(json.RawMessage(nil), body...)
	return nil
}

func (s *MemoryStore) Merge(_ context.Context, identity string, kind Kind, patch json.RawMessage) error {
	var patchObj map[string]json.RawMessage
	if err := json.Unmarshal(patch, &patchObj); err != nil {
		return fmt.Errorf("merge %s: patch must be an object: %w", kind, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	docs := s.docsFor(identity)
	current := map[string]json.RawMessage{}
	if existing, ok := docs[kind]; ok {
		if err := json.Unmarshal(existing, &current); err != nil {
			return fmt.Errorf("merge %s: stored document is not an object: %w", kind, err)
		}
	}
	for k, v := range patchObj {
		current[k] = v
	}

	merged, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("merge %s: %w", kind, err)
	}
	docs[kind] = merged
	return nil
}

func (s *MemoryStore) CreateChatSession(_ context.Context, identity string, rec ChatSessionRecord) error {
	var messages []json.RawMessage
	if len(rec.Messages) > 0 {
		if err := json.Unmarshal(rec.Messages, &messages); err != nil {
			return fmt.Errorf("create chat session: %w", err)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.chats[rec.ID]; exists {
		return fmt.Errorf("create chat session: id %s already exists", rec.ID)
	}
	s.chats[rec.ID] = &memoryChatSession{
		identity: identity,
		record:   rec,
		messages: messages,
	}
	return nil
}

func (s *MemoryStore) AppendChatMessages(
	_ context.Context,
	identity, sessionID, title string,
	lastModified time.Time,
	messages json.RawMessage,
) error {
	var toAppend []json.RawMessage
	if err := json.Unmarshal(messages, &toAppend); err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	chat, ok := s.chats[sessionID]
	if !ok || chat.identity != identity {
		return ErrNotFound
	}
	chat.messages = append(chat.messages, toAppend...)
	chat.record.Title = title
	chat.record.LastModified = lastModified
	return nil
}

func (s *MemoryStore) ListChatSessions(_ context.Context, identity string) ([]ChatSessionRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var records []ChatSessionRecord
	for _, chat := range s.chats {
		if chat.identity != identity {
			continue
		}
		rec := chat.record
		msgs := chat.messages
		if msgs == nil {
			msgs = []json.RawMessage{}
		}
		raw, err := json.Marshal(msgs)
		if err != nil {
			return nil, fmt.Errorf("list chat sessions: %w", err)
		}
		rec.Messages = raw
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastModified.After(records[j].LastModified)
	})
	return records, nil
}

// must hold s.mutex
func (s *MemoryStore) docsFor(identity string) map[Kind]json.RawMessage {
	docs, ok := s.documents[identity]
	if !ok {
		docs = make(map[Kind]json.RawMessage)
		s.documents[identity] = docs
	}
	return docs
}
