package domain

// HistoryTimeLayout is the timestamp format stored with history entries
const HistoryTimeLayout = "2006-01-02 15:04:05"

// HistoryEntry is one previously analyzed product in a user's history
type HistoryEntry struct {
	ID              string        `json:"product_id"`
	Barcode         string        `json:"barcode"`
	ProductName     string        `json:"product_name"`
	Timestamp       string        `json:"timestamp"`
	AnalysisSummary string        `json:"analysis_summary"`
	SafetyRating    SafetyRating  `json:"safety_rating"`
	FullAnalysis    string        `json:"full_analysis"`
	NutritionInfo   NutritionInfo `json:"nutrition_info"`
	Allergens       []string      `json:"allergens,omitempty"`
}

// Assessment rebuilds the stored analysis so a rescan can show it without calling the model again
func (e *HistoryEntry) Assessment() *Assessment {
	return &Assessment{
		Product:        e.Product(),
		SafetyRating:   e.SafetyRating,
		Summary:        e.AnalysisSummary,
		Analysis:       e.FullAnalysis,
		AllergenAlerts: []AllergenAlert{},
		FromHistory:    true,
		SavedToHistory: true,
	}
}

// Product rebuilds the product shown when a history entry is reopened
func (e *HistoryEntry) Product() *Product {
	return &Product{
		Barcode:     e.Barcode,
		ProductName: e.ProductName,
		ServingSize: e.NutritionInfo.ServingSize,
		Calories:    e.NutritionInfo.Calories,
		Nutrients:   e.NutritionInfo.Nutrients,
		Allergens:   e.Allergens,
		Source:      SourceHistory,
	}
}

// HistoryByRating groups history entries by safety rating
type HistoryByRating struct {
	Unsafe  []HistoryEntry `json:"unsafe"`
	Caution []HistoryEntry `json:"caution"`
	Safe    []HistoryEntry `json:"safe"`
	Unknown []HistoryEntry `json:"unknown"`
}
