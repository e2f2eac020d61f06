package training

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	DaysPerPlanWeek      = 7
	DefaultDurationWeeks = 4
)

// NewPlan builds a plan from one generated week. It requires exactly seven
// distinct day numbers 1..7, assigns fresh ids everywhere and resets actual sets.
func NewPlan(title string, days []WorkoutSession, startDate time.Time) (WorkoutPlan, error) {
	if len(days) != DaysPerPlanWeek {
		return WorkoutPlan{}, fmt.Errorf("%w: expected %d days, got %d", ErrInvalidPlan, DaysPerPlanWeek, len(days))
	}

	seen := make(map[int]bool, len(days))
	sessions := make([]WorkoutSession, 0, len(days))
	for _, day := range days {
		if day.DayNumber < 1 || day.DayNumber > DaysPerPlanWeek {
			return WorkoutPlan{}, fmt.Errorf("%w: day number %d out of range", ErrInvalidPlan, day.DayNumber)
		}
		if seen[day.DayNumber] {
			return WorkoutPlan{}, fmt.Errorf("%w: duplicate day number %d", ErrInvalidPlan, day.DayNumber)
		}
		seen[day.DayNumber] = true

		session := WorkoutSession{
			ID:        uuid.NewString(),
			DayNumber: day.DayNumber,
			Name:      day.Name,
			IsRestDay: day.IsRestDay,
			Exercises: []Exercise{},
		}
		if !day.IsRestDay {
			for _, ex := range day.Exercises {
				ex.ID = uuid.NewString()
				ex.MuscleGroup = NormalizeMuscleGroup(string(ex.MuscleGroup))
				ex.ActualSets = []ExerciseSet{}
				session.Exercises = append(session.Exercises, ex)
			}
		}
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].DayNumber < sessions[j].DayNumber
	})

	return WorkoutPlan{
		ID:            uuid.NewString(),
		Title:         title,
		DurationWeeks: DefaultDurationWeeks,
		StartDate:     startDate.UTC(),
		Sessions:      sessions,
	}, nil
}
