package training

// MuscleGroupVolume sums weight*reps of completed sets in completed sessions, per muscle group.
func MuscleGroupVolume(plan WorkoutPlan) map[MuscleGroup]float64 {
	volume := make(map[MuscleGroup]float64)
	for _, s := range plan.Sessions {
		if !s.Completed() {
			continue
		}
		for _, ex := range s.Exercises {
			mg := ex.MuscleGroup
			if mg == "" {
				mg = MuscleOther
			}
			for _, set := range ex.ActualSets {
				if set.Completed {
					volume[mg] += set.Weight * float64(set.Reps)
				}
			}
		}
	}
	return volume
}

type Progress struct {
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Next      *WorkoutSession `json:"next,omitempty"`
}

// PlanProgress counts completed sessions and finds the first one not completed yet.
func PlanProgress(plan WorkoutPlan) Progress {
	p := Progress{Total: len(plan.Sessions)}
	for i := range plan.Sessions {
		s := plan.Sessions[i]
		if s.Completed() {
			p.Completed++
			continue
		}
		if p.Next == nil {
			next := s.Clone()
			p.Next = &next
		}
	}
	return p
}
