package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/zenith/internal/docstore"
)

type documentStore interface {
	Get(ctx context.Context, identity string, kind docstore.Kind) (json.RawMessage, error)
	Put(ctx context.Context, identity string, kind docstore.Kind, body json.RawMessage) error
	Merge(ctx context.Context, identity string, kind docstore.Kind, patch json.RawMessage) error
}

type Repo struct {
	store documentStore
}

func NewRepo(store documentStore) *Repo {
	return &Repo{
		store: store,
	}
}

func (r *Repo) LoadPlan(ctx context.Context, identity string) (WorkoutPlan, bool, error) {
	raw, err := r.store.Get(ctx, identity, docstore.KindWorkoutPlan)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return WorkoutPlan{}, false, nil
		}
		return WorkoutPlan{}, false, fmt.Errorf("load plan: %w", err)
	}

	var plan WorkoutPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return WorkoutPlan{}, false, fmt.Errorf("decode plan: %w", err)
	}
	return plan, true, nil
}

func (r *Repo) SavePlan(ctx context.Context, identity string, plan WorkoutPlan) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := r.store.Put(ctx, identity, docstore.KindWorkoutPlan, raw); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// LoadHistory never reports found=false as an error; a new user simply has an empty map.
func (r *Repo) LoadHistory(ctx context.Context, identity string) (HistoryMap, bool, error) {
	raw, err := r.store.Get(ctx, identity, docstore.KindExerciseHistory)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return HistoryMap{}, false, nil
		}
		return nil, false, fmt.Errorf("load exercise history: %w", err)
	}

	history := HistoryMap{}
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, false, fmt.Errorf("decode exercise history: %w", err)
	}
	return history, true, nil
}

// MergeHistory upserts one key per update, leaving other exercise names alone.
func (r *Repo) MergeHistory(ctx context.Context, identity string, updates []HistoryUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	patch := make(HistoryMap, len(updates))
	for _, u := range updates {
		patch[u.Name] = HistoryEntry{Weight: u.Weight, Reps: u.Reps}
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode exercise history: %w", err)
	}
	if err := r.store.Merge(ctx, identity, docstore.KindExerciseHistory, raw); err != nil {
		return fmt.Errorf("merge exercise history: %w", err)
	}
	return nil
}
