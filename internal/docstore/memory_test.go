package docstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "ana", KindProfile)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "ana", KindProfile, json.RawMessage(`{"name":"Ana","age":31}`)))
	require.NoError(t, s.Put(ctx, "ana", KindProfile, json.RawMessage(`{"name":"Ana B"}`)))

	got, err := s.Get(ctx, "ana", KindProfile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ana B"}`, string(got))

	// other identities are isolated
	_, err = s.Get(ctx, "bo", KindProfile)
	require.ErrorIs(t, err, ErrNotFound)

	require.Error(t, s.Put(ctx, "ana", KindProfile, json.RawMessage(`{broken`)))
}

func TestMemoryStore_MergeUpsertsKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Merge(ctx, "ana", KindExerciseHistory, json.RawMessage(`{"Squat":{"weight":100,"reps":5}}`)))
	require.NoError(t, s.Merge(ctx, "ana", KindExerciseHistory, json.RawMessage(`{"Bench Press":{"weight":80,"reps":8}}`)))
	require.NoError(t, s.Merge(ctx, "ana", KindExerciseHistory, json.RawMessage(`{"Squat":{"weight":105,"reps":5}}`)))

	got, err := s.Get(ctx, "ana", KindExerciseHistory)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Squat":{"weight":105,"reps":5},"Bench Press":{"weight":80,"reps":8}}`, string(got))

	require.Error(t, s.Merge(ctx, "ana", KindExerciseHistory, json.RawMessage(`[1,2]`)))
}

func TestMemoryStore_ChatSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	t0 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateChatSession(ctx, "ana", ChatSessionRecord{ID: "c1", Title: "New Conversation", LastModified: t0}))
	require.NoError(t, s.CreateChatSession(ctx, "ana", ChatSessionRecord{ID: "c2", Title: "New Conversation", LastModified: t0.Add(time.Minute)}))
	require.NoError(t, s.CreateChatSession(ctx, "bo", ChatSessionRecord{ID: "c3", Title: "New Conversation", LastModified: t0}))
	require.Error(t, s.CreateChatSession(ctx, "ana", ChatSessionRecord{ID: "c1"}))

	require.NoError(t, s.AppendChatMessages(ctx, "ana", "c1", "Leg day", t0.Add(time.Hour),
		json.RawMessage(`[{"id":"m1","role":"user","text":"Leg day"},{"id":"m2","role":"model","text":"Sure"}]`)))

	err := s.AppendChatMessages(ctx, "bo", "c1", "x", t0, json.RawMessage(`[]`))
	require.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListChatSessions(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "Leg day", list[0].Title)
	assert.JSONEq(t, `[{"id":"m1","role":"user","text":"Leg day"},{"id":"m2","role":"model","text":"Sure"}]`, string(list[0].Messages))
	assert.Equal(t, "c2", list[1].ID)
	assert.JSONEq(t, `[]`, string(list[1].Messages))
}
