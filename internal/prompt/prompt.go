package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"smart-diet-planner/internal/mealplan"
)

//go:embed plan_prompt.md
var planPrompt string

var planTemplate = template.Must(template.New("PlanPrompt").Parse(planPrompt))

// Values substituted when a constraint is missing or zero.
const (
	DefaultDietType          = "Balanced"
	DefaultCalorieTarget     = 2000
	DefaultAllergies         = "None"
	DefaultCuisinePreference = "Generic Indian"
	DefaultDailyBudget       = 500
)

// PlanPromptData holds the already-defaulted values rendered into the prompt.
type PlanPromptData struct {
	DietType          string
	CalorieTarget     string
	Allergies         string
	CuisinePreference string
	DailyBudget       string
}

// NewPlanPromptData applies the defaults to c.
func NewPlanPromptData(c mealplan.Constraints) PlanPromptData {
	data := PlanPromptData{
		DietType:          strings.TrimSpace(string(c.DietType)),
		CalorieTarget:     c.CalorieTarget.String(),
		Allergies:         strings.Join(c.AllergyList(), ", "),
		CuisinePreference: strings.TrimSpace(c.CuisinePreference),
		DailyBudget:       c.DailyBudget.String(),
	}
	if data.DietType == "" {
		data.DietType = DefaultDietType
	}
	if c.CalorieTarget == 0 {
		data.CalorieTarget = mealplan.Number(DefaultCalorieTarget).String()
	}
	if data.Allergies == "" {
		data.Allergies = DefaultAllergies
	}
	if data.CuisinePreference == "" {
		data.CuisinePreference = DefaultCuisinePreference
	}
	if c.DailyBudget == 0 {
		data.DailyBudget = mealplan.Number(DefaultDailyBudget).String()
	}
	return data
}

// BuildPlanPrompt renders the generation instructions for c.
func BuildPlanPrompt(c mealplan.Constraints) (string, error) {
	var buf bytes.Buffer
	if err := planTemplate.Execute(&buf, NewPlanPromptData(c)); err != nil {
		return "", fmt.Errorf("failed to render plan prompt: %w", err)
	}
	return buf.String(), nil
}
