package training

import (
	"fmt"
	"time"
)

// Hydrate pre-fills the sets of exercises that have none yet with the last
// known load from history. Exercises with sets or without history are untouched.
// The input session is not modified.
func Hydrate(session WorkoutSession, history HistoryMap) WorkoutSession {
	hydrated := session.Clone()
	for i := range hydrated.Exercises {
		ex := &hydrated.Exercises[i]
		if len(ex.ActualSets) > 0 {
			continue
		}
		last, ok := history[ex.Name]
		if !ok {
			continue
		}
		for n := 0; n < ex.TargetSets; n++ {
			ex.ActualSets = append(ex.ActualSets, ExerciseSet{
				Weight: last.Weight,
				Reps:   last.Reps,
			})
		}
	}
	return hydrated
}

// Complete stamps the session as finished at now and returns the history
// updates: one per exercise whose last set (by position) is completed.
func Complete(session WorkoutSession, now time.Time) (WorkoutSession, []HistoryUpdate, error) {
	if session.IsRestDay {
		return WorkoutSession{}, nil, ErrRestDay
	}
	if session.Completed() {
		return WorkoutSession{}, nil, ErrSessionCompleted
	}

	finished := session.Clone()
	var updates []HistoryUpdate
	for _, ex := range finished.Exercises {
		if len(ex.ActualSets) == 0 {
			continue
		}
		lastSet := ex.ActualSets[len(ex.ActualSets)-1]
		if !lastSet.Completed {
			continue
		}
		updates = append(updates, HistoryUpdate{
			Name:   ex.Name,
			Weight: lastSet.Weight,
			Reps:   lastSet.Reps,
		})
	}

	completedAt := now.UTC()
	finished.CompletedDate = &completedAt
	return finished, updates, nil
}

// UpdateSet applies patch to the set at index of the given exercise.
// Missing sets before index are padded with empty sets. Index must stay below
// the exercise's target set count (or the current number of sets, if larger).
func UpdateSet(session WorkoutSession, exerciseID string, index int, patch SetPatch) (WorkoutSession, error) {
	if session.IsRestDay {
		return WorkoutSession{}, ErrRestDay
	}
	if session.Completed() {
		return WorkoutSession{}, ErrSessionCompleted
	}

	updated := session.Clone()
	exIdx := -1
	for i := range updated.Exercises {
		if updated.Exercises[i].ID == exerciseID {
			exIdx = i
			break
		}
	}
	if exIdx < 0 {
		return WorkoutSession{}, fmt.Errorf("%w: %s", ErrExerciseNotFound, exerciseID)
	}

	ex := &updated.Exercises[exIdx]
	limit := max(ex.TargetSets, len(ex.ActualSets))
	if index < 0 || index >= limit {
		return WorkoutSession{}, fmt.Errorf("%w: %d (limit %d)", ErrSetIndexOutOfRange, index, limit)
	}

	for len(ex.ActualSets) <= index {
		ex.ActualSets = append(ex.ActualSets, ExerciseSet{})
	}
	set := &ex.ActualSets[index]
	if patch.Weight != nil {
		set.Weight = *patch.Weight
	}
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.Completed != nil {
		set.Completed = *patch.Completed
	}

	return updated, nil
}
