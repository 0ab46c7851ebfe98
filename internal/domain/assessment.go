package domain

// SafetyRating is the overall verdict extracted from an assessment
type SafetyRating string

const (
	RatingSafe    SafetyRating = "Safe"
	RatingCaution SafetyRating = "Caution"
	RatingUnsafe  SafetyRating = "Unsafe"
	RatingUnknown SafetyRating = "Unknown"
)

// AllergenAlert is a profile allergy found in a product's allergens or ingredients
type AllergenAlert struct {
	Allergy string `json:"allergy"`
	Matched string `json:"matched"`
	Source  string `json:"source"` // "allergens" or "ingredients"
}

// Assessment is the result of one safety analysis
type Assessment struct {
	Product        *Product        `json:"product,omitempty"`
	Label          *LabelFacts     `json:"label,omitempty"`
	SafetyRating   SafetyRating    `json:"safety_rating"`
	Summary        string          `json:"summary"`
	Analysis       string          `json:"analysis"`
	AllergenAlerts []AllergenAlert `json:"allergen_alerts"`
	FromHistory    bool            `json:"from_history"`
	SavedToHistory bool            `json:"saved_to_history"`
}
