package telegram

import (
	"fmt"
	"regexp"
	"strings"

	"smart-diet-planner/internal/mealplan"
)

const usageText = "Send `/plan` with any of these fields:\n" +
	"`diet=Vegan kcal=1800 budget=250 cuisine=\"Bengali\" allergies=Peanuts,Shellfish`\n\n" +
	"Missing fields use the defaults: Non-Vegetarian, 2200 kcal, ₹300/day, South Indian (Tamil Nadu)."

var argPattern = regexp.MustCompile(`(\w+)=("[^"]*"|\S+)`)

// parsePlanCommand reads key=value pairs after /plan on top of the default
// draft. Values with spaces must be quoted.
func parsePlanCommand(args string) (mealplan.Constraints, error) {
	c := mealplan.DefaultConstraints()

	rest := argPattern.ReplaceAllString(args, "")
	if strings.TrimSpace(rest) != "" {
		return c, fmt.Errorf("could not read %q, use key=value", strings.TrimSpace(rest))
	}

	for _, m := range argPattern.FindAllStringSubmatch(args, -1) {
		key := strings.ToLower(m[1])
		value := strings.Trim(m[2], `"`)

		switch key {
		case "diet":
			c.DietType = mealplan.ParseDietType(value)
		case "kcal", "calories":
			n, err := parseNumber(value)
			if err != nil {
				return c, fmt.Errorf("kcal: %w", err)
			}
			c.CalorieTarget = n
		case "budget":
			n, err := parseNumber(value)
			if err != nil {
				return c, fmt.Errorf("budget: %w", err)
			}
			c.DailyBudget = n
		case "cuisine":
			c.CuisinePreference = value
		case "allergies":
			c.Allergies = value
		default:
			return c, fmt.Errorf("unknown field %q", key)
		}
	}
	return c, nil
}

func parseNumber(raw string) (mealplan.Number, error) {
	n, err := mealplan.ParseNumber(strings.TrimPrefix(raw, "₹"))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return n, nil
}
