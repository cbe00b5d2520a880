package mealplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DietType is the dietary preference a plan must respect.
type DietType string

const (
	NonVegetarian    DietType = "Non-Vegetarian"
	StrictVegetarian DietType = "Strict Vegetarian"
	Vegan            DietType = "Vegan"
)

// DietTypes lists the diet types offered by the planner front-ends.
var DietTypes = []DietType{NonVegetarian, StrictVegetarian, Vegan}

// ParseDietType matches s against the known diet types ignoring case.
// Unknown values are kept verbatim since the API accepts free text.
func ParseDietType(s string) DietType {
	s = strings.TrimSpace(s)
	for _, d := range DietTypes {
		if strings.EqualFold(s, string(d)) {
			return d
		}
	}
	switch strings.ToLower(s) {
	case "veg", "vegetarian":
		return StrictVegetarian
	case "nonveg", "non-veg", "non veg":
		return NonVegetarian
	}
	return DietType(s)
}

// ErrNotFinite is returned for NaN and infinite numbers.
var ErrNotFinite = errors.New("number must be finite")

// Number is a float64 that decodes from either a JSON number or a numeric
// string. HTML forms post numeric inputs as strings.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*n = v
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid number %s", raw)
	}
	*n = Number(f)
	return nil
}

// ParseNumber parses a decimal number. Blank input is zero; NaN and
// infinities are errors.
func ParseNumber(raw string) (Number, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid number %q: %w", s, ErrNotFinite)
	}
	return Number(f), nil
}

// String renders the number without trailing zeros.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Constraints is the user input for one plan generation.
type Constraints struct {
	DietType          DietType `json:"dietType,omitempty"`
	CalorieTarget     Number   `json:"calorieTarget" validate:"required,gt=0"`
	Allergies         string   `json:"allergies,omitempty"`
	CuisinePreference string   `json:"cuisinePreference,omitempty"`
	DailyBudget       Number   `json:"dailyBudget" validate:"required,gt=0"`
}

// DefaultConstraints returns the initial form draft.
func DefaultConstraints() Constraints {
	return Constraints{
		DietType:          NonVegetarian,
		CalorieTarget:     2200,
		CuisinePreference: "South Indian (Tamil Nadu)",
		DailyBudget:       300,
	}
}

// AllergyList splits the comma separated allergies field.
func (c Constraints) AllergyList() []string {
	var out []string
	for _, a := range strings.Split(c.Allergies, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Meal is a single suggested dish.
type Meal struct {
	MealType         string  `json:"meal_type"`
	DishName         string  `json:"dish_name"`
	RecipeSummary    string  `json:"recipe_summary"`
	CaloriesApprox   int     `json:"calories_approx"`
	BudgetCostApprox float64 `json:"budget_cost_approx"`
}

// DayPlan represents the plan for a single day.
type DayPlan struct {
	Day                  int     `json:"day"`
	Meals                []Meal  `json:"meals"`
	DailyTotalCostApprox float64 `json:"daily_total_cost_approx"`
}

// MealCost sums the per-meal cost estimates.
func (d DayPlan) MealCost() float64 {
	var total float64
	for _, m := range d.Meals {
		total += m.BudgetCostApprox
	}
	return total
}

// TotalKcal sums the per-meal calorie estimates.
func (d DayPlan) TotalKcal() int {
	var total int
	for _, m := range d.Meals {
		total += m.CaloriesApprox
	}
	return total
}

// PlanDays is the number of days in every plan.
const PlanDays = 7

// MealPlan is a full 7-day plan. It marshals as a bare JSON array.
type MealPlan []DayPlan

// Validate checks the structural guarantees the generator is asked for.
func (p MealPlan) Validate() error {
	if len(p) != PlanDays {
		return fmt.Errorf("expected %d days, got %d", PlanDays, len(p))
	}

	seen := make(map[int]bool, PlanDays)
	for i, d := range p {
		if d.Day < 1 || d.Day > PlanDays {
			return fmt.Errorf("entry %d: day %d out of range 1..%d", i, d.Day, PlanDays)
		}
		if seen[d.Day] {
			return fmt.Errorf("day %d appears more than once", d.Day)
		}
		seen[d.Day] = true

		if len(d.Meals) == 0 {
			return fmt.Errorf("day %d has no meals", d.Day)
		}
		if d.DailyTotalCostApprox < 0 {
			return fmt.Errorf("day %d has a negative total cost", d.Day)
		}
		for j, m := range d.Meals {
			if m.CaloriesApprox < 0 || m.BudgetCostApprox < 0 {
				return fmt.Errorf("day %d meal %d has negative estimates", d.Day, j+1)
			}
		}
	}
	return nil
}

// Reconcile returns a copy of the plan sorted by day in which every daily
// total that drifts from the summed meal costs by more than tolerance is
// replaced by that sum. The adjusted day numbers are returned.
func (p MealPlan) Reconcile(tolerance float64) (MealPlan, []int) {
	out := make(MealPlan, len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })

	var adjusted []int
	for i := range out {
		sum := out[i].MealCost()
		diff := out[i].DailyTotalCostApprox - sum
		if diff > tolerance || diff < -tolerance {
			out[i].DailyTotalCostApprox = sum
			adjusted = append(adjusted, out[i].Day)
		}
	}
	return out, adjusted
}
