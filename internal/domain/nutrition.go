package domain

// NotSpecified is shown in place of nutrition values a source does not provide
const NotSpecified = "Not specified"

// Nutrients holds the per-100g macronutrient panel. Nil means the source did not provide the value.
type Nutrients struct {
	Fat           *float64 `json:"fat"`
	Proteins      *float64 `json:"proteins"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Sugars        *float64 `json:"sugars"`
	Fiber         *float64 `json:"fiber"`
	Sodium        *float64 `json:"sodium"`
}

// NutrientValue is one named entry of a Nutrients panel
type NutrientValue struct {
	Name  string
	Value *float64
}

// List returns the panel in display order
func (n Nutrients) List() []NutrientValue {
	return []NutrientValue{
		{Name: "fat", Value: n.Fat},
		{Name: "proteins", Value: n.Proteins},
		{Name: "carbohydrates", Value: n.Carbohydrates},
		{Name: "sugars", Value: n.Sugars},
		{Name: "fiber", Value: n.Fiber},
		{Name: "sodium", Value: n.Sodium},
	}
}

// NutritionInfo is the nutrition summary kept with a history entry
type NutritionInfo struct {
	ServingSize string    `json:"serving_size"`
	Calories    *float64  `json:"calories"`
	Nutrients   Nutrients `json:"nutrients"`
}

// LabelFacts is the structured result of reading a photographed nutrition label
type LabelFacts struct {
	ServingSize string   `json:"serving_size"`
	Calories    string   `json:"calories"`
	Ingredients string   `json:"ingredients"`
	Allergens   string   `json:"allergens"`
	Nutrients   []string `json:"nutrients"`
	RawText     string   `json:"raw_text,omitempty"`
}

// Float returns a pointer to v, for building optional nutrient values
func Float(v float64) *float64 {
	return &v
}
