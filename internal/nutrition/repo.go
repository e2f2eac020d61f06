package nutrition

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
}

type Repo struct {
	store documentStore
}

func NewRepo(store documentStore) *Repo {
	return &Repo{
		store: store,
	}
}

func (r *Repo) Load(ctx context.Context, identity string) ([]Log, bool, error) {
	raw, err := r.store.Get(ctx, identity, docstore.KindNutrition)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return []Log{}, false, nil
		}
		return nil, false, fmt.Errorf("load nutrition logs: %w", err)
	}

	logs := []Log{}
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, false, fmt.Errorf("decode nutrition logs: %w", err)
	}
	return logs, true, nil
}

// Save overwrites the whole log list.
func (r *Repo) Save(ctx context.Context, identity string, logs []Log) error {
	if logs == nil {
		logs = []Log{}
	}
	raw, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("encode nutrition logs: %w", err)
	}
	if err := r.store.Put(ctx, identity, docstore.KindNutrition, raw); err != nil {
		return fmt.Errorf("save nutrition logs: %w", err)
	}
	return nil
}
