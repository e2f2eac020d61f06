package nutrition

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidDay   = errors.New("invalid day, expected YYYY-MM-DD")
	ErrImageMissing = errors.New("meal image not found")
	ErrInvalidImage = errors.New("invalid meal image")
)

const (
	UnnamedMeal = "Unnamed Meal"
	dayLayout   = "2006-01-02"
)

// Log is one logged meal. Date is an RFC3339 timestamp in UTC.
type Log struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	MealName string  `json:"mealName"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Image    string  `json:"image,omitempty"`
}

type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Analysis is the macro estimate for a photographed meal.
type Analysis struct {
	MealName string  `json:"mealName"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Tally sums the macros of the logs whose date starts with day.
func Tally(logs []Log, day string) Totals {
	var t Totals
	for _, l := range logs {
		if !strings.HasPrefix(l.Date, day) {
			continue
		}
		t.Calories += l.Calories
		t.Protein += l.Protein
		t.Carbs += l.Carbs
		t.Fat += l.Fat
	}
	return t
}

// DayOf returns the UTC calendar day of t, the prefix Tally buckets by.
func DayOf(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// ParseDay accepts "today" or YYYY-MM-DD.
func ParseDay(s string, now time.Time) (string, error) {
	if s == "" || strings.EqualFold(s, "today") {
		return DayOf(now), nil
	}
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", ErrInvalidDay
	}
	return s, nil
}

func normalize(l Log) Log {
	l.MealName = strings.TrimSpace(l.MealName)
	if l.MealName == "" {
		l.MealName = UnnamedMeal
	}
	l.Calories = nonNegative(l.Calories)
	l.Protein = nonNegative(l.Protein)
	l.Fat = nonNegative(l.Fat)
	l.Carbs = nonNegative(l.Carbs)
	return l
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
