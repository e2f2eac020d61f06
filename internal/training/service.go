package training

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/zenith/internal/persist"
	"github.com/2beens/zenith/internal/telemetry/metrics"
	"github.com/2beens/zenith/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type persister interface {
	Submit(ctx context.Context, identity, name string, fn persist.Job) <-chan error
}

// DayStatus is the derived state of one plan day at the time of the request.
type DayStatus struct {
	DayNumber int  `json:"dayNumber"`
	Locked    bool `json:"locked"`
	Completed bool `json:"completed"`
	RestDay   bool `json:"restDay"`
}

type PlanView struct {
	Plan WorkoutPlan `json:"plan"`
	Days []DayStatus `json:"days"`
}

type FinishResult struct {
	Session        WorkoutSession  `json:"session"`
	HistoryUpdates []HistoryUpdate `json:"historyUpdates"`
}

// Service owns the workout plan, the exercise history and the active session
// of every identity. Local state is updated first, remote writes go through the queue.
type Service struct {
	repo    *Repo
	queue   persister
	metrics *metrics.Manager
	now     func() time.Time

	plans   *persist.LocalState[WorkoutPlan]
	history *persist.LocalState[HistoryMap]

	activeMutex sync.Mutex
	active      map[string]WorkoutSession
}

func NewService(repo *Repo, queue persister, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:    repo,
		queue:   queue,
		metrics: metricsManager,
		now:     time.Now,
		plans:   persist.NewLocalState(repo.LoadPlan, WorkoutPlan.Clone),
		history: persist.NewLocalState(repo.LoadHistory, HistoryMap.Clone),
		active:  make(map[string]WorkoutSession),
	}
}

// SetPlan replaces the plan of identity, e.g. after onboarding.
func (s *Service) SetPlan(ctx context.Context, identity string, plan WorkoutPlan) <-chan error {
	_, span := tracing.GlobalTracer.Start(ctx, "service.training.set_plan")
	defer span.End()

	s.plans.Set(identity, plan)
	s.clearActive(identity)
	s.metrics.CounterPlansGenerated.Inc()
	return s.savePlan(ctx, identity, plan)
}

// Plan returns the current plan; found is false when the identity has none.
func (s *Service) Plan(ctx context.Context, identity string) (_ WorkoutPlan, found bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.plan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	return s.plans.Lookup(ctx, identity)
}

func (s *Service) History(ctx context.Context, identity string) (_ HistoryMap, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.history")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	history, err := s.history.Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = HistoryMap{}
	}
	return history, nil
}

// PlanView returns the plan with the lock state of each day derived from the current time.
func (s *Service) PlanView(ctx context.Context, identity string) (_ PlanView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.plan_view")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	plan, err := s.mustPlan(ctx, identity)
	if err != nil {
		return PlanView{}, err
	}

	now := s.now()
	days := make([]DayStatus, 0, len(plan.Sessions))
	for _, session := range plan.Sessions {
		days = append(days, DayStatus{
			DayNumber: session.DayNumber,
			Locked:    IsLocked(plan.StartDate, session.DayNumber, now),
			Completed: session.Completed(),
			RestDay:   session.IsRestDay,
		})
	}
	return PlanView{Plan: plan, Days: days}, nil
}

// StartDay opens the session of day for editing, hydrated from the exercise history.
// Starting the day that is already active returns the active session unchanged.
func (s *Service) StartDay(ctx context.Context, identity string, day int) (_ WorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.start_day")
	span.SetAttributes(attribute.Int("day", day))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	plan, err := s.mustPlan(ctx, identity)
	if err != nil {
		return WorkoutSession{}, err
	}
	idx := plan.SessionByDay(day)
	if idx < 0 {
		return WorkoutSession{}, fmt.Errorf("%w: day %d", ErrSessionNotFound, day)
	}
	session := plan.Sessions[idx]
	switch {
	case session.IsRestDay:
		return WorkoutSession{}, ErrRestDay
	case session.Completed():
		return WorkoutSession{}, ErrSessionCompleted
	case IsLocked(plan.StartDate, day, s.now()):
		return WorkoutSession{}, fmt.Errorf("%w: day %d", ErrDayLocked, day)
	}

	s.activeMutex.Lock()
	current, ok := s.active[identity]
	s.activeMutex.Unlock()
	if ok && current.ID == session.ID {
		return current.Clone(), nil
	}

	history, err := s.History(ctx, identity)
	if err != nil {
		return WorkoutSession{}, err
	}
	hydrated := Hydrate(session, history)

	s.activeMutex.Lock()
	s.active[identity] = hydrated
	s.activeMutex.Unlock()

	log.Tracef("training: %s started day %d [%s]", identity, day, session.Name)
	return hydrated.Clone(), nil
}

// ActiveSession returns the session being edited by identity.
func (s *Service) ActiveSession(identity string) (WorkoutSession, error) {
	s.activeMutex.Lock()
	defer s.activeMutex.Unlock()
	session, ok := s.active[identity]
	if !ok {
		return WorkoutSession{}, ErrNoActiveSession
	}
	return session.Clone(), nil
}

// UpdateSet edits one set of the active session. Nothing is persisted until the day is finished.
func (s *Service) UpdateSet(ctx context.Context, identity string, day int, exerciseID string, index int, patch SetPatch) (_ WorkoutSession, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "service.training.update_set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.activeMutex.Lock()
	defer s.activeMutex.Unlock()

	session, ok := s.active[identity]
	if !ok || session.DayNumber != day {
		return WorkoutSession{}, ErrNoActiveSession
	}
	updated, err := UpdateSet(session, exerciseID, index, patch)
	if err != nil {
		return WorkoutSession{}, err
	}
	s.active[identity] = updated
	return updated.Clone(), nil
}

// FinishDay completes the active session of day: the plan gets the completed
// session, the history gets one upsert per exercise whose last set was completed.
// Both are applied locally before the remote writes are queued.
func (s *Service) FinishDay(ctx context.Context, identity string, day int) (_ FinishResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.finish_day")
	span.SetAttributes(attribute.Int("day", day))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	// the session leaves the active set before it is completed, so set edits
	// racing with the finish fail instead of being dropped
	s.activeMutex.Lock()
	session, ok := s.active[identity]
	if !ok || session.DayNumber != day {
		s.activeMutex.Unlock()
		return FinishResult{}, ErrNoActiveSession
	}
	delete(s.active, identity)
	s.activeMutex.Unlock()
	defer func() {
		if err == nil {
			return
		}
		s.activeMutex.Lock()
		if _, taken := s.active[identity]; !taken {
			s.active[identity] = session
		}
		s.activeMutex.Unlock()
	}()

	finished, updates, err := Complete(session, s.now())
	if err != nil {
		return FinishResult{}, err
	}

	plan, err := s.plans.Update(ctx, identity, func(plan *WorkoutPlan) error {
		idx := plan.SessionByDay(day)
		if idx < 0 || plan.Sessions[idx].ID != finished.ID {
			return fmt.Errorf("%w: day %d", ErrSessionNotFound, day)
		}
		if plan.Sessions[idx].Completed() {
			return ErrSessionCompleted
		}
		plan.Sessions[idx] = finished
		return nil
	})
	if err != nil {
		return FinishResult{}, err
	}

	if len(updates) > 0 {
		if _, err := s.history.Update(ctx, identity, func(h *HistoryMap) error {
			if *h == nil {
				*h = HistoryMap{}
			}
			for _, u := range updates {
				(*h)[u.Name] = HistoryEntry{Weight: u.Weight, Reps: u.Reps}
			}
			return nil
		}); err != nil {
			log.Errorf("training: apply history updates for %s: %s", identity, err)
		}
	}

	s.metrics.CounterSessionsCompleted.Inc()
	s.savePlan(ctx, identity, plan)
	if len(updates) > 0 {
		s.queue.Submit(ctx, identity, "exercise_history", func(ctx context.Context) error {
			return s.repo.MergeHistory(ctx, identity, updates)
		})
	}

	if updates == nil {
		updates = []HistoryUpdate{}
	}
	return FinishResult{Session: finished, HistoryUpdates: updates}, nil
}

// Forget drops all local state of identity.
func (s *Service) Forget(identity string) {
	s.plans.Forget(identity)
	s.history.Forget(identity)
	s.clearActive(identity)
}

func (s *Service) mustPlan(ctx context.Context, identity string) (WorkoutPlan, error) {
	plan, found, err := s.plans.Lookup(ctx, identity)
	if err != nil {
		return WorkoutPlan{}, err
	}
	if !found {
		return WorkoutPlan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (s *Service) savePlan(ctx context.Context, identity string, plan WorkoutPlan) <-chan error {
	return s.queue.Submit(ctx, identity, "workout_plan", func(ctx context.Context) error {
		return s.repo.SavePlan(ctx, identity, plan)
	})
}

func (s *Service) clearActive(identity string) {
	s.activeMutex.Lock()
	defer s.activeMutex.Unlock()
	delete(s.active, identity)
}
