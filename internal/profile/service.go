package profile

import (
	"context"

	"github.com/2beens/zenith/internal/persist"
	"github.com/2beens/zenith/internal/telemetry/tracing"
)

type persister interface {
	Submit(ctx context.Context, identity, name string, fn persist.Job) <-chan error
}

type Service struct {
	repo  *Repo
	queue persister
	state *persist.LocalState[UserProfile]
}

func NewService(repo *Repo, queue persister) *Service {
	return &Service{
		repo:  repo,
		queue: queue,
		state: persist.NewLocalState(repo.Load, nil),
	}
}

// Get returns the profile of identity; found is false when there is none yet.
func (s *Service) Get(ctx context.Context, identity string) (_ UserProfile, found bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.profile.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	return s.state.Lookup(ctx, identity)
}

// Save applies p locally and persists it in the background.
func (s *Service) Save(ctx context.Context, identity string, p UserProfile) <-chan error {
	_, span := tracing.GlobalTracer.Start(ctx, "service.profile.save")
	defer span.End()

	s.state.Set(identity, p)
	return s.queue.Submit(ctx, identity, "profile", func(ctx context.Context) error {
		return s.repo.Save(ctx, identity, p)
	})
}

// Forget drops the local copy, e.g. on logout.
func (s *Service) Forget(identity string) {
	s.state.Forget(identity)
}
