package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/2beens/zenith/internal/profile"
	"github.com/2beens/zenith/internal/training"
)

const planPromptTemplate = `Create a highly personalized weekly workout routine for a user with the following profile:
- Name: %s
- Level: %s
- Goal: %s
- Training Format Preference: %s
- Frequency: %d days per week
- Equipment: %s
- Constraints: %s

The output should be a list of daily sessions for one week (7 days), day numbers 1 to 7.
Mark rest days explicitly based on the user's frequency.
For exercise days, provide specific exercises tailored to their format (%s).
IMPORTANT: For each exercise, strictly categorize the 'muscleGroup' into one of: %s.`

func planPrompt(p profile.UserProfile) string {
	constraints := p.Constraints
	if strings.TrimSpace(constraints) == "" {
		constraints = "None"
	}
	groups := make([]string, 0, len(training.AllMuscleGroups))
	for _, mg := range training.AllMuscleGroups {
		if mg == training.MuscleOther {
			continue
		}
		groups = append(groups, "'"+string(mg)+"'")
	}
	return fmt.Sprintf(planPromptTemplate,
		p.Name, p.Level, p.Goal, p.CurrentFormat, p.DaysPerWeek, p.Equipment, constraints,
		p.CurrentFormat, strings.Join(groups, ", "),
	)
}

var planSchema = &schema{
	Type:        "ARRAY",
	Description: "A list of 7 daily sessions representing a weekly schedule.",
	Items: &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"dayNumber": {Type: "INTEGER"},
			"name":      {Type: "STRING"},
			"isRestDay": {Type: "BOOLEAN"},
			"exercises": {
				Type: "ARRAY",
				Items: &schema{
					Type: "OBJECT",
					Properties: map[string]*schema{
						"name":        {Type: "STRING"},
						"muscleGroup": {Type: "STRING"},
						"targetSets":  {Type: "INTEGER"},
						"targetReps":  {Type: "STRING"},
						"restTime":    {Type: "INTEGER"},
					},
				},
			},
		},
		Required: []string{"dayNumber", "name", "isRestDay", "exercises"},
	},
}

// GeneratePlan asks the model for one week of sessions. The result always has
// exactly seven entries; ids and actual sets are left for training.NewPlan.
func (c *Client) GeneratePlan(ctx context.Context, p profile.UserProfile) ([]training.WorkoutSession, error) {
	resp, err := c.generate(ctx, "generate_plan", c.textModel, generateRequest{
		Contents: []content{userText(planPrompt(p))},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   planSchema,
		},
	})
	if err != nil {
		return nil, err
	}

	var days []training.WorkoutSession
	if err := json.Unmarshal([]byte(cleanJSON(resp.text())), &days); err != nil {
		return nil, fmt.Errorf("%w: decode plan: %s", ErrMalformedResponse, err)
	}
	if len(days) != training.DaysPerPlanWeek {
		return nil, fmt.Errorf("%w: expected %d days, got %d", ErrMalformedResponse, training.DaysPerPlanWeek, len(days))
	}
	return days, nil
}
