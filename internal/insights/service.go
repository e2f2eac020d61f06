package insights

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/2beens/zenith/internal/nutrition"
	"github.com/2beens/zenith/internal/profile"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/internal/training"
)

var (
	ErrNoPlan    = errors.New("no workout plan yet")
	ErrNoProfile = errors.New("no profile yet")
)

type planSource interface {
	Plan(ctx context.Context, identity string) (training.WorkoutPlan, bool, error)
}

type profileSource interface {
	Get(ctx context.Context, identity string) (profile.UserProfile, bool, error)
}

type logsSource interface {
	Logs(ctx context.Context, identity string) ([]nutrition.Log, error)
}

type Dashboard struct {
	Name              string                   `json:"name"`
	Goal              profile.Goal             `json:"goal"`
	CompletedWorkouts int                      `json:"completedWorkouts"`
	TotalSessions     int                      `json:"totalSessions"`
	NextWorkout       *training.WorkoutSession `json:"nextWorkout,omitempty"`
	Day               string                   `json:"day"`
	CaloriesToday     float64                  `json:"caloriesToday"`
	Today             nutrition.Totals         `json:"today"`
	Targets           profile.MacroTargets     `json:"targets"`
	Remaining         nutrition.Totals         `json:"remaining"`
}

type VolumeEntry struct {
	MuscleGroup training.MuscleGroup `json:"muscleGroup"`
	Volume      float64              `json:"volume"`
}

type VolumeReport struct {
	// Groups lists every muscle group trained in a completed session, for filtering.
	Groups  []training.MuscleGroup `json:"groups"`
	Entries []VolumeEntry          `json:"entries"`
}

type NutritionDay struct {
	Day     string               `json:"day"`
	Totals  nutrition.Totals     `json:"totals"`
	Targets profile.MacroTargets `json:"targets"`
	Logs    []nutrition.Log      `json:"logs"`
}

type Service struct {
	plans    planSource
	profiles profileSource
	logs     logsSource
	now      func() time.Time
}

func NewService(plans planSource, profiles profileSource, logs logsSource) *Service {
	return &Service{
		plans:    plans,
		profiles: profiles,
		logs:     logs,
		now:      time.Now,
	}
}

func (s *Service) Dashboard(ctx context.Context, identity string) (_ Dashboard, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.insights.dashboard")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	p, found, err := s.profiles.Get(ctx, identity)
	if err != nil {
		return Dashboard{}, err
	}
	if !found {
		return Dashboard{}, ErrNoProfile
	}
	plan, err := s.plan(ctx, identity)
	if err != nil {
		return Dashboard{}, err
	}

	day := nutrition.DayOf(s.now())
	logs, err := s.logs.Logs(ctx, identity)
	if err != nil {
		return Dashboard{}, err
	}
	today := nutrition.Tally(logs, day)
	progress := training.PlanProgress(plan)

	return Dashboard{
		Name:              p.Name,
		Goal:              p.Goal,
		CompletedWorkouts: progress.Completed,
		TotalSessions:     progress.Total,
		NextWorkout:       progress.Next,
		Day:               day,
		CaloriesToday:     today.Calories,
		Today:             today,
		Targets:           p.MacroTargets,
		Remaining:         remaining(p.MacroTargets, today),
	}, nil
}

// MuscleVolume reports volume per muscle group, largest first. An empty filter keeps all groups.
func (s *Service) MuscleVolume(ctx context.Context, identity string, filter []training.MuscleGroup) (_ VolumeReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.insights.muscle_volume")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	plan, err := s.plan(ctx, identity)
	if err != nil {
		return VolumeReport{}, err
	}
	return volumeReport(plan, filter), nil
}

func (s *Service) NutritionDay(ctx context.Context, identity, day string) (_ NutritionDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.insights.nutrition_day")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	day, err = nutrition.ParseDay(day, s.now())
	if err != nil {
		return NutritionDay{}, err
	}
	logs, err := s.logs.Logs(ctx, identity)
	if err != nil {
		return NutritionDay{}, err
	}
	p, _, err := s.profiles.Get(ctx, identity)
	if err != nil {
		return NutritionDay{}, err
	}

	dayLogs := []nutrition.Log{}
	for _, l := range logs {
		if strings.HasPrefix(l.Date, day) {
			dayLogs = append(dayLogs, l)
		}
	}
	return NutritionDay{
		Day:     day,
		Totals:  nutrition.Tally(logs, day),
		Targets: p.MacroTargets,
		Logs:    dayLogs,
	}, nil
}

func (s *Service) plan(ctx context.Context, identity string) (training.WorkoutPlan, error) {
	plan, found, err := s.plans.Plan(ctx, identity)
	if err != nil {
		return training.WorkoutPlan{}, err
	}
	if !found {
		return training.WorkoutPlan{}, ErrNoPlan
	}
	return plan, nil
}

func volumeReport(plan training.WorkoutPlan, filter []training.MuscleGroup) VolumeReport {
	volume := training.MuscleGroupVolume(plan)
	groups := trainedGroups(plan)

	keep := make(map[training.MuscleGroup]bool, len(filter))
	for _, mg := range filter {
		keep[mg] = true
	}

	entries := []VolumeEntry{}
	for _, mg := range groups {
		if len(keep) > 0 && !keep[mg] {
			continue
		}
		entries = append(entries, VolumeEntry{MuscleGroup: mg, Volume: volume[mg]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Volume > entries[j].Volume
	})

	return VolumeReport{Groups: groups, Entries: entries}
}

// trainedGroups lists, sorted by name, the groups of exercises in completed sessions.
func trainedGroups(plan training.WorkoutPlan) []training.MuscleGroup {
	seen := map[training.MuscleGroup]bool{}
	groups := []training.MuscleGroup{}
	for _, s := range plan.Sessions {
		if !s.Completed() {
			continue
		}
		for _, ex := range s.Exercises {
			mg := ex.MuscleGroup
			if mg == "" {
				mg = training.MuscleOther
			}
			if !seen[mg] {
				seen[mg] = true
				groups = append(groups, mg)
			}
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

func remaining(targets profile.MacroTargets, today nutrition.Totals) nutrition.Totals {
	return nutrition.Totals{
		Calories: float64(targets.Calories) - today.Calories,
		Protein:  float64(targets.Protein) - today.Protein,
		Carbs:    float64(targets.Carbs) - today.Carbs,
		Fat:      float64(targets.Fat) - today.Fat,
	}
}
