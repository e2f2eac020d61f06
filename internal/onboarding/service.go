package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/zenith/internal/nutrition"
	"github.com/2beens/zenith/internal/profile"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/internal/training"

	log "github.com/sirupsen/logrus"
)

var (
	ErrPlanGeneration = errors.New("plan generation failed")
	ErrStorage        = errors.New("storage failed")
)

type View string

const (
	ViewOnboarding View = "onboarding"
	ViewDashboard  View = "dashboard"
)

// State is what the client needs to render right after login.
type State struct {
	View          View                  `json:"view"`
	Profile       *profile.UserProfile  `json:"profile,omitempty"`
	Plan          *training.WorkoutPlan `json:"plan,omitempty"`
	NutritionLogs []nutrition.Log       `json:"nutritionLogs,omitempty"`
}

type profileStore interface {
	Get(ctx context.Context, identity string) (profile.UserProfile, bool, error)
	Save(ctx context.Context, identity string, p profile.UserProfile) <-chan error
	Forget(identity string)
}

type planStore interface {
	Plan(ctx context.Context, identity string) (training.WorkoutPlan, bool, error)
	SetPlan(ctx context.Context, identity string, plan training.WorkoutPlan) <-chan error
	Forget(identity string)
}

type logsSource interface {
	Logs(ctx context.Context, identity string) ([]nutrition.Log, error)
	Forget(identity string)
}

type planGenerator interface {
	GeneratePlan(ctx context.Context, p profile.UserProfile) ([]training.WorkoutSession, error)
}

type forgetter interface {
	Forget(identity string)
}

type Service struct {
	profiles profileStore
	plans    planStore
	logs     logsSource
	ai       planGenerator
	// other per-identity state dropped on Reset (e.g. coach sessions)
	others []forgetter
	now    func() time.Time
}

func NewService(
	profiles profileStore,
	plans planStore,
	logs logsSource,
	ai planGenerator,
	others ...forgetter,
) *Service {
	return &Service{
		profiles: profiles,
		plans:    plans,
		logs:     logs,
		ai:       ai,
		others:   others,
		now:      time.Now,
	}
}

// Complete finishes onboarding: targets are computed, a week is generated and
// both the plan and the profile are stored before returning.
func (s *Service) Complete(ctx context.Context, identity string, p profile.UserProfile) (_ State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.onboarding.complete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := p.Validate(); err != nil {
		return State{}, err
	}
	p.Goal, _ = profile.ParseGoal(string(p.Goal))
	p.MacroTargets = profile.ComputeMacroTargets(p.Weight, p.Height, p.Age, p.DietGoal)
	p.HasPlan = false

	days, err := s.ai.GeneratePlan(ctx, p)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrPlanGeneration, err)
	}
	plan, err := training.NewPlan(fmt.Sprintf("%s Plan", p.Goal), days, s.now())
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrPlanGeneration, err)
	}

	if err := <-s.plans.SetPlan(ctx, identity, plan); err != nil {
		return State{}, fmt.Errorf("%w: save plan: %w", ErrStorage, err)
	}
	p.HasPlan = true
	if err := <-s.profiles.Save(ctx, identity, p); err != nil {
		return State{}, fmt.Errorf("%w: save profile: %w", ErrStorage, err)
	}

	log.Debugf("onboarding: [%s] got plan [%s]", identity, plan.ID)
	return State{
		View:          ViewDashboard,
		Profile:       &p,
		Plan:          &plan,
		NutritionLogs: []nutrition.Log{},
	}, nil
}

// Load decides which view to show. Load failures fall back to onboarding.
func (s *Service) Load(ctx context.Context, identity string) State {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.onboarding.load")
	defer span.End()

	p, found, err := s.profiles.Get(ctx, identity)
	if err != nil {
		log.Errorf("onboarding: load profile [%s]: %s", identity, err)
		return State{View: ViewOnboarding}
	}
	if !found {
		return State{View: ViewOnboarding}
	}
	if !p.HasPlan {
		return State{View: ViewOnboarding, Profile: &p}
	}

	plan, found, err := s.plans.Plan(ctx, identity)
	if err != nil {
		log.Errorf("onboarding: load plan [%s]: %s", identity, err)
		return State{View: ViewOnboarding, Profile: &p}
	}
	if !found {
		log.Warnf("onboarding: [%s] has no plan document, back to onboarding", identity)
		return State{View: ViewOnboarding, Profile: &p}
	}

	logs, err := s.logs.Logs(ctx, identity)
	if err != nil {
		log.Errorf("onboarding: load nutrition logs [%s]: %s", identity, err)
		logs = []nutrition.Log{}
	}

	return State{
		View:          ViewDashboard,
		Profile:       &p,
		Plan:          &plan,
		NutritionLogs: logs,
	}
}

// Reset drops every piece of local state kept for identity.
func (s *Service) Reset(identity string) {
	s.profiles.Forget(identity)
	s.plans.Forget(identity)
	s.logs.Forget(identity)
	for _, o := range s.others {
		o.Forget(identity)
	}
}
