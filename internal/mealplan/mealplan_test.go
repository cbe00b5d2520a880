package mealplan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekPlan() MealPlan {
	plan := make(MealPlan, 0, PlanDays)
	for d := PlanDays; d >= 1; d-- {
		plan = append(plan, DayPlan{
			Day: d,
			Meals: []Meal{
				{MealType: "Breakfast", DishName: "Idli", CaloriesApprox: 350, BudgetCostApprox: 40},
				{MealType: "Lunch", DishName: "Sambar Rice", CaloriesApprox: 700, BudgetCostApprox: 90},
			},
			DailyTotalCostApprox: 130,
		})
	}
	return plan
}

func TestConstraintsDecodeNumbers(t *testing.T) {
	t.Run("JSON numbers", func(t *testing.T) {
		var c Constraints
		require.NoError(t, json.Unmarshal([]byte(`{"calorieTarget":1800,"dailyBudget":249.5}`), &c))
		assert.Equal(t, Number(1800), c.CalorieTarget)
		assert.Equal(t, Number(249.5), c.DailyBudget)
	})

	t.Run("numeric strings", func(t *testing.T) {
		var c Constraints
		require.NoError(t, json.Unmarshal([]byte(`{"calorieTarget":"2200","dailyBudget":" 300 "}`), &c))
		assert.Equal(t, Number(2200), c.CalorieTarget)
		assert.Equal(t, Number(300), c.DailyBudget)
	})

	t.Run("empty and null", func(t *testing.T) {
		var c Constraints
		require.NoError(t, json.Unmarshal([]byte(`{"calorieTarget":"","dailyBudget":null}`), &c))
		assert.Zero(t, c.CalorieTarget)
		assert.Zero(t, c.DailyBudget)
	})

	t.Run("garbage", func(t *testing.T) {
		var c Constraints
		assert.Error(t, json.Unmarshal([]byte(`{"calorieTarget":"lots"}`), &c))
	})

	t.Run("non-finite", func(t *testing.T) {
		for _, body := range []string{
			`{"calorieTarget":"Inf","dailyBudget":300}`,
			`{"calorieTarget":1800,"dailyBudget":"infinity"}`,
			`{"calorieTarget":"-inf","dailyBudget":300}`,
			`{"calorieTarget":"NaN","dailyBudget":300}`,
			`{"calorieTarget":"1e400","dailyBudget":300}`,
		} {
			var c Constraints
			assert.Error(t, json.Unmarshal([]byte(body), &c), body)
		}
	})
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber(" 249.5 ")
	require.NoError(t, err)
	assert.Equal(t, Number(249.5), n)

	n, err = ParseNumber("")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ParseNumber("+Inf")
	assert.ErrorIs(t, err, ErrNotFinite)
	_, err = ParseNumber("nan")
	assert.ErrorIs(t, err, ErrNotFinite)
	_, err = ParseNumber("ten")
	assert.Error(t, err)
}

func TestNumberString(t *testing.T) {
	assert.Equal(t, "1800", Number(1800).String())
	assert.Equal(t, "249.5", Number(249.5).String())
}

func TestParseDietType(t *testing.T) {
	assert.Equal(t, Vegan, ParseDietType("vegan"))
	assert.Equal(t, StrictVegetarian, ParseDietType("veg"))
	assert.Equal(t, NonVegetarian, ParseDietType(" NON-VEGETARIAN "))
	assert.Equal(t, DietType("Keto"), ParseDietType("Keto"))
}

func TestAllergyList(t *testing.T) {
	c := Constraints{Allergies: "Peanuts, shellfish,, "}
	assert.Equal(t, []string{"Peanuts", "shellfish"}, c.AllergyList())
	assert.Empty(t, Constraints{}.AllergyList())
}

func TestMealPlanValidate(t *testing.T) {
	require.NoError(t, weekPlan().Validate())

	tests := []struct {
		name   string
		mutate func(MealPlan) MealPlan
	}{
		{"six days", func(p MealPlan) MealPlan { return p[:6] }},
		{"duplicate day", func(p MealPlan) MealPlan { p[0].Day = p[1].Day; return p }},
		{"day out of range", func(p MealPlan) MealPlan { p[0].Day = 8; return p }},
		{"empty day", func(p MealPlan) MealPlan { p[3].Meals = nil; return p }},
		{"negative cost", func(p MealPlan) MealPlan { p[2].Meals[0].BudgetCostApprox = -1; return p }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.mutate(weekPlan()).Validate())
		})
	}
}

func TestMealPlanReconcile(t *testing.T) {
	plan := weekPlan()
	plan[0].DailyTotalCostApprox = 500 // day 7
	plan[1].DailyTotalCostApprox = 130.5

	out, adjusted := plan.Reconcile(1)

	assert.Equal(t, []int{7}, adjusted)
	for i, d := range out {
		assert.Equal(t, i+1, d.Day)
	}
	assert.Equal(t, 130.0, out[6].DailyTotalCostApprox)
	assert.Equal(t, 130.5, out[5].DailyTotalCostApprox)
	// the input is left untouched
	assert.Equal(t, 500.0, plan[0].DailyTotalCostApprox)
}

func TestDayPlanTotals(t *testing.T) {
	d := weekPlan()[0]
	assert.Equal(t, 1050, d.TotalKcal())
	assert.Equal(t, 130.0, d.MealCost())
}
