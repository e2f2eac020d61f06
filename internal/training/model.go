package training

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrPlanNotFound       = errors.New("workout plan not found")
	ErrSessionNotFound    = errors.New("workout session not found")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrSetIndexOutOfRange = errors.New("set index out of range")
	ErrDayLocked          = errors.New("workout day is locked")
	ErrRestDay            = errors.New("rest day has no workout")
	ErrSessionCompleted   = errors.New("workout session already completed")
	ErrNoActiveSession    = errors.New("no active workout session")
	ErrInvalidPlan        = errors.New("invalid workout plan")
)

type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "Chest"
	MuscleBack      MuscleGroup = "Back"
	MuscleLegs      MuscleGroup = "Legs"
	MuscleShoulders MuscleGroup = "Shoulders"
	MuscleArms      MuscleGroup = "Arms"
	MuscleCore      MuscleGroup = "Core"
	MuscleCardio    MuscleGroup = "Cardio"
	MuscleOther     MuscleGroup = "Other"
)

var AllMuscleGroups = []MuscleGroup{
	MuscleChest, MuscleBack, MuscleLegs, MuscleShoulders,
	MuscleArms, MuscleCore, MuscleCardio, MuscleOther,
}

// NormalizeMuscleGroup maps s onto the fixed set, case-insensitively. Anything else is Other.
func NormalizeMuscleGroup(s string) MuscleGroup {
	s = strings.TrimSpace(s)
	for _, mg := range AllMuscleGroups {
		if strings.EqualFold(string(mg), s) {
			return mg
		}
	}
	return MuscleOther
}

func (m *MuscleGroup) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = NormalizeMuscleGroup(s)
	return nil
}

type ExerciseSet struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// SetPatch changes single fields of a set; nil fields are left as they are.
type SetPatch struct {
	Weight    *float64 `json:"weight,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}

type Exercise struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	MuscleGroup MuscleGroup   `json:"muscleGroup"`
	TargetSets  int           `json:"targetSets"`
	TargetReps  string        `json:"targetReps"`
	RestTime    int           `json:"restTime"`
	ActualSets  []ExerciseSet `json:"actualSets"`
	Notes       string        `json:"notes,omitempty"`
}

type WorkoutSession struct {
	ID            string     `json:"id"`
	DayNumber     int        `json:"dayNumber"`
	Name          string     `json:"name"`
	IsRestDay     bool       `json:"isRestDay"`
	Exercises     []Exercise `json:"exercises"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
}

func (s WorkoutSession) Completed() bool {
	return s.CompletedDate != nil
}

type WorkoutPlan struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	DurationWeeks int              `json:"durationWeeks"`
	StartDate     time.Time        `json:"startDate"`
	Sessions      []WorkoutSession `json:"sessions"`
}

// SessionByDay returns the index of the session with dayNumber, or -1.
func (p *WorkoutPlan) SessionByDay(dayNumber int) int {
	for i := range p.Sessions {
		if p.Sessions[i].DayNumber == dayNumber {
			return i
		}
	}
	return -1
}

// HistoryEntry is the last completed load for an exercise name.
type HistoryEntry struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// HistoryMap is keyed by exercise name, shared across plans and sessions.
type HistoryMap map[string]HistoryEntry

type HistoryUpdate struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

func (e Exercise) Clone() Exercise {
	if e.ActualSets != nil {
		e.ActualSets = append([]ExerciseSet{}, e.ActualSets...)
	}
	return e
}

func (s WorkoutSession) Clone() WorkoutSession {
	if s.Exercises != nil {
		exercises := make([]Exercise, len(s.Exercises))
		for i, ex := range s.Exercises {
			exercises[i] = ex.Clone()
		}
		s.Exercises = exercises
	}
	if s.CompletedDate != nil {
		completed := *s.CompletedDate
		s.CompletedDate = &completed
	}
	return s
}

func (p WorkoutPlan) Clone() WorkoutPlan {
	if p.Sessions != nil {
		sessions := make([]WorkoutSession, len(p.Sessions))
		for i, s := range p.Sessions {
			sessions[i] = s.Clone()
		}
		p.Sessions = sessions
	}
	return p
}

func (h HistoryMap) Clone() HistoryMap {
	if h == nil {
		return nil
	}
	c := make(HistoryMap, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}
