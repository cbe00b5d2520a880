package render

import (
	"math"
	"strconv"
	"strings"

	"smart-diet-planner/internal/mealplan"
)

// Tier classifies a day's cost against the daily budget.
type Tier string

const (
	TierUnder   Tier = "under"
	TierOnTrack Tier = "on-track"
	TierOver    Tier = "over"
)

// Label is the human readable name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierUnder:
		return "Under Budget"
	case TierOnTrack:
		return "On Track"
	default:
		return "Over Budget"
	}
}

// Ratio is cost over target, with the target floored at 1.
func Ratio(cost, target float64) float64 {
	return cost / math.Max(target, 1)
}

// Classify returns the budget tier of a day.
func Classify(cost, target float64) Tier {
	r := Ratio(cost, target)
	switch {
	case r <= 0.95:
		return TierUnder
	case r <= 1.10:
		return TierOnTrack
	default:
		return TierOver
	}
}

// Percent is the budget utilisation shown to users, clamped to [0,120].
func Percent(cost, target float64) int {
	p := Ratio(cost, target) * 100
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 120:
		return 120
	}
	return int(math.Round(p))
}

// MealIcon picks an icon from keywords in the meal type.
func MealIcon(mealType string) string {
	t := strings.ToLower(mealType)
	switch {
	case strings.Contains(t, "break"):
		return "🍳"
	case strings.Contains(t, "lunch"):
		return "🍛"
	case strings.Contains(t, "snack"):
		return "🍎"
	case strings.Contains(t, "dinner"):
		return "🍲"
	default:
		return "🍽️"
	}
}

// maxINR bounds displayed amounts well inside int64.
const maxINR = 1e15

// FormatINR renders whole rupees with Indian digit grouping, e.g. ₹1,23,456.
// Amounts beyond ±maxINR are shown at the bound.
func FormatINR(v float64) string {
	switch {
	case math.IsNaN(v):
		v = 0
	case v > maxINR:
		v = maxINR
	case v < -maxINR:
		v = -maxINR
	}
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		digits = strings.Join(append(groups, tail), ",")
	}
	return sign + "₹" + digits
}

// MealView is a display-ready meal.
type MealView struct {
	Type     string
	Icon     string
	Dish     string
	Summary  string
	Calories int
	Cost     string
}

// DayView is a display-ready day with its budget figures.
type DayView struct {
	Day       int
	Meals     []MealView
	Items     int
	TotalKcal int
	Cost      float64
	CostLabel string
	Tier      Tier
	TierLabel string
	Percent   int
}

// PlanView is the display-ready plan.
type PlanView struct {
	Title       string
	DietType    string
	Cuisine     string
	Target      float64
	TargetLabel string
	Days        []DayView
}

// BuildView derives the presentation of plan under c. Inputs are not
// modified.
func BuildView(plan mealplan.MealPlan, c mealplan.Constraints) PlanView {
	target := float64(c.DailyBudget)
	v := PlanView{
		Title:       "Your 7-Day Personalized Plan",
		DietType:    string(c.DietType),
		Cuisine:     c.CuisinePreference,
		Target:      target,
		TargetLabel: FormatINR(target),
		Days:        make([]DayView, 0, len(plan)),
	}

	for _, d := range plan {
		tier := Classify(d.DailyTotalCostApprox, target)
		dv := DayView{
			Day:       d.Day,
			Items:     len(d.Meals),
			TotalKcal: d.TotalKcal(),
			Cost:      d.DailyTotalCostApprox,
			CostLabel: FormatINR(d.DailyTotalCostApprox),
			Tier:      tier,
			TierLabel: tier.Label(),
			Percent:   Percent(d.DailyTotalCostApprox, target),
			Meals:     make([]MealView, 0, len(d.Meals)),
		}
		for _, m := range d.Meals {
			dv.Meals = append(dv.Meals, MealView{
				Type:     m.MealType,
				Icon:     MealIcon(m.MealType),
				Dish:     m.DishName,
				Summary:  m.RecipeSummary,
				Calories: m.CaloriesApprox,
				Cost:     FormatINR(m.BudgetCostApprox),
			})
		}
		v.Days = append(v.Days, dv)
	}
	return v
}
