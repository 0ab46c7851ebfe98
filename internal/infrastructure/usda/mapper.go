package usda

import (
	"strconv"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// USDA Nutrient IDs
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
	NutrientIDSugars       = 2000 // Total sugars (g)
	NutrientIDFiber        = 1079 // Fiber, total dietary (g)
	NutrientIDSodium       = 1093 // Sodium (mg)
)

type searchResponse struct {
	TotalHits int    `json:"totalHits"`
	Foods     []food `json:"foods"`
}

type food struct {
	FdcID            int        `json:"fdcId"`
	Description      string     `json:"description"`
	DataType         string     `json:"dataType"`
	GTINUPC          string     `json:"gtinUpc"`
	BrandOwner       string     `json:"brandOwner"`
	BrandName        string     `json:"brandName"`
	Ingredients      string     `json:"ingredients"`
	ServingSize      float64    `json:"servingSize"`
	ServingSizeUnit  string     `json:"servingSizeUnit"`
	HouseholdServing string     `json:"householdServingFullText"`
	FoodNutrients    []nutrient `json:"foodNutrients"`
}

type nutrient struct {
	NutrientID   int     `json:"nutrientId"`
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// MapToProduct converts a branded USDA food to our domain Product.
// Branded search values are reported per 100g, matching Open Food Facts.
func MapToProduct(barcode string, f *food) *domain.Product {
	name := strings.TrimSpace(f.Description)
	if name == "" {
		name = domain.UnknownProductName
	}

	brand := strings.TrimSpace(f.BrandName)
	if brand == "" {
		brand = strings.TrimSpace(f.BrandOwner)
	}

	return &domain.Product{
		Barcode:     barcode,
		ProductName: name,
		Brand:       brand,
		ServingSize: servingSize(f),
		Calories:    findNutrient(f.FoodNutrients, NutrientIDEnergy),
		Ingredients: strings.TrimSpace(f.Ingredients),
		Allergens:   []string{},
		Nutrients:   extractNutrients(f.FoodNutrients),
		Source:      domain.SourceUSDA,
	}
}

// extractNutrients extracts the tracked nutrients from the USDA nutrient list
func extractNutrients(nutrients []nutrient) domain.Nutrients {
	result := domain.Nutrients{
		Fat:           findNutrient(nutrients, NutrientIDTotalFat),
		Proteins:      findNutrient(nutrients, NutrientIDProtein),
		Carbohydrates: findNutrient(nutrients, NutrientIDCarbohydrate),
		Sugars:        findNutrient(nutrients, NutrientIDSugars),
		Fiber:         findNutrient(nutrients, NutrientIDFiber),
	}
	if mg := findNutrient(nutrients, NutrientIDSodium); mg != nil {
		result.Sodium = domain.Float(*mg / 1000)
	}
	return result
}

// findNutrient returns the value for nutrientID, or nil when absent
func findNutrient(nutrients []nutrient, nutrientID int) *float64 {
	for _, n := range nutrients {
		if n.NutrientID == nutrientID {
			return domain.Float(n.Value)
		}
	}
	return nil
}

func servingSize(f *food) string {
	if s := strings.TrimSpace(f.HouseholdServing); s != "" {
		return s
	}
	if f.ServingSize > 0 && f.ServingSizeUnit != "" {
		return strconv.FormatFloat(f.ServingSize, 'f', -1, 64) + " " + strings.ToLower(f.ServingSizeUnit)
	}
	return domain.NotSpecified
}
