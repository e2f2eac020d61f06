package training

import "time"

// IsLocked reports whether the session for dayNumber cannot be started yet.
// Both dates are truncated to midnight in the location of now; day 1 is never locked.
func IsLocked(startDate time.Time, dayNumber int, now time.Time) bool {
	loc := now.Location()
	start := startDate.In(loc)
	target := time.Date(start.Year(), start.Month(), start.Day()+dayNumber-1, 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return today.Before(target)
}
