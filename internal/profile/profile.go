package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrNotFound       = errors.New("profile not found")
)

type Goal string

const (
	GoalStrength      Goal = "Strength"
	GoalHypertrophy   Goal = "Muscle Building"
	GoalWeightLoss    Goal = "Weight Loss"
	GoalEndurance     Goal = "Endurance"
	GoalGeneralHealth Goal = "General Health"
)

var goalAliases = map[string]Goal{
	"strength":        GoalStrength,
	"muscle building": GoalHypertrophy,
	"hypertrophy":     GoalHypertrophy,
	"weight loss":     GoalWeightLoss,
	"weightloss":      GoalWeightLoss,
	"endurance":       GoalEndurance,
	"general health":  GoalGeneralHealth,
	"generalhealth":   GoalGeneralHealth,
}

func ParseGoal(s string) (Goal, error) {
	if g, ok := goalAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return g, nil
	}
	return "", fmt.Errorf("unknown goal: %q", s)
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*g = ""
		return nil
	}
	parsed, err := ParseGoal(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type DietGoal string

const (
	DietCut      DietGoal = "Cut"
	DietMaintain DietGoal = "Maintain"
	DietBulk     DietGoal = "Bulk"
)

func (d DietGoal) calorieAdjustment() (float64, bool) {
	switch d {
	case DietCut:
		return -500, true
	case DietMaintain:
		return 0, true
	case DietBulk:
		return 300, true
	}
	return 0, false
}

type MacroTargets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

type UserProfile struct {
	Name          string       `json:"name"`
	Age           int          `json:"age"`
	Weight        float64      `json:"weight"`
	Height        float64      `json:"height"`
	Goal          Goal         `json:"goal"`
	Level         Level        `json:"level"`
	DietGoal      DietGoal     `json:"dietGoal"`
	DaysPerWeek   int          `json:"daysPerWeek"`
	Equipment     string       `json:"equipment"`
	Constraints   string       `json:"constraints"`
	CurrentFormat string       `json:"currentFormat"`
	MacroTargets  MacroTargets `json:"macroTargets"`
	HasPlan       bool         `json:"hasPlan"`
}

// Validate checks the attributes required to finish onboarding.
func (p UserProfile) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Age <= 0 {
		problems = append(problems, "age must be positive")
	}
	if p.Weight <= 0 {
		problems = append(problems, "weight must be positive")
	}
	if p.Height < 0 {
		problems = append(problems, "height must not be negative")
	}
	if p.DaysPerWeek < 1 || p.DaysPerWeek > 7 {
		problems = append(problems, "daysPerWeek must be within 1..7")
	}
	if _, err := ParseGoal(string(p.Goal)); err != nil {
		problems = append(problems, err.Error())
	}
	if !p.Level.Valid() {
		problems = append(problems, fmt.Sprintf("unknown level: %q", p.Level))
	}
	if _, ok := p.DietGoal.calorieAdjustment(); !ok {
		problems = append(problems, fmt.Sprintf("unknown diet goal: %q", p.DietGoal))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return nil
}

// ComputeMacroTargets derives daily targets with the Mifflin-St Jeor equation
// (male variant) and a moderate activity multiplier.
func ComputeMacroTargets(weightKg, heightCm float64, age int, dietGoal DietGoal) MacroTargets {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age) + 5
	tdee := bmr * 1.55
	adj, _ := dietGoal.calorieAdjustment()

	calories := int(math.Round(tdee + adj))
	protein := int(math.Round(2.2 * weightKg))
	fat := int(math.Round(0.25 * float64(calories) / 9))
	carbs := int(math.Round(float64(calories-protein*4-fat*9) / 4))
	if carbs < 0 {
		carbs = 0
	}

	return MacroTargets{
		Calories: calories,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
	}
}
