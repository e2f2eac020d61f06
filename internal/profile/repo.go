package profile

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

// Load returns found=false when the identity has no profile yet.
func (r *Repo) Load(ctx context.Context, identity string) (UserProfile, bool, error) {
	raw, err := r.store.Get(ctx, identity, docstore.KindProfile)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return UserProfile{}, false, nil
		}
		return UserProfile{}, false, fmt.Errorf("load profile: %w", err)
	}

	var p UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return UserProfile{}, false, fmt.Errorf("decode profile: %w", err)
	}
	return p, true, nil
}

func (r *Repo) Save(ctx context.Context, identity string, p UserProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := r.store.Put(ctx, identity, docstore.KindProfile, raw); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
