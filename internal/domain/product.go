package domain

// Product sources
const (
	SourceOpenFoodFacts = "OpenFoodFacts"
	SourceUSDA          = "USDA"
	SourceCache         = "Cache"
	SourceHistory       = "History"
)

// UnknownProductName is used when a source has no product name
const UnknownProductName = "Unknown Product"

// Product represents nutrition facts for a scanned product, values per 100g
type Product struct {
	Barcode     string    `json:"barcode"`
	ProductName string    `json:"product_name"`
	Brand       string    `json:"brand,omitempty"`
	ServingSize string    `json:"serving_size"`
	Calories    *float64  `json:"calories"`
	Ingredients string    `json:"ingredients"`
	Allergens   []string  `json:"allergens"`
	Nutrients   Nutrients `json:"nutrients"`
	Source      string    `json:"source"`
}

// NutritionInfo returns the subset of the product kept in history
func (p *Product) NutritionInfo() NutritionInfo {
	return NutritionInfo{
		ServingSize: p.ServingSize,
		Calories:    p.Calories,
		Nutrients:   p.Nutrients,
	}
}
