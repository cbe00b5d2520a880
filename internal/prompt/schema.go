package prompt

// Type is a JSON schema type name.
type Type string

const (
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
)

// Schema is a provider neutral description of the structured output a
// generator must produce. It marshals as plain JSON Schema.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// PlanSchema describes the 7-day meal plan array. A fresh value is returned
// on every call so callers may adapt it freely.
func PlanSchema() *Schema {
	meal := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"meal_type": {
				Type:        TypeString,
				Description: "e.g., Breakfast, Lunch, Dinner, Snack.",
			},
			"dish_name": {
				Type:        TypeString,
				Description: "Name of the suggested regional dish.",
			},
			"recipe_summary": {
				Type:        TypeString,
				Description: "A very brief summary of the recipe/key ingredients.",
			},
			"calories_approx": {
				Type:        TypeInteger,
				Description: "Estimated calorie count for the serving.",
			},
			"budget_cost_approx": {
				Type:        TypeNumber,
				Description: "Estimated ingredient cost for this single serving in INR.",
			},
		},
		Required: []string{"meal_type", "dish_name", "recipe_summary", "calories_approx", "budget_cost_approx"},
	}

	day := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"day": {
				Type:        TypeInteger,
				Description: "The day number in the plan (1 to 7).",
			},
			"meals": {
				Type:  TypeArray,
				Items: meal,
			},
			"daily_total_cost_approx": {
				Type:        TypeNumber,
				Description: "The calculated sum of all budget_cost_approx for the day.",
			},
		},
		Required: []string{"day", "meals", "daily_total_cost_approx"},
	}

	return &Schema{
		Type:        TypeArray,
		Description: "A 7-day meal plan, with daily budget and calorie estimates.",
		Items:       day,
	}
}
