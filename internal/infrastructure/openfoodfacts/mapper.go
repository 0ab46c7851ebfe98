package openfoodfacts

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// productResponse is the v0 product endpoint envelope
type productResponse struct {
	Status        int         `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Product       *offProduct `json:"product"`
}

type offProduct struct {
	ProductName        string              `json:"product_name"`
	Brands             string              `json:"brands"`
	ServingSize        string              `json:"serving_size"`
	IngredientsText    string              `json:"ingredients_text"`
	AllergensHierarchy []string            `json:"allergens_hierarchy"`
	Nutriments         map[string]flexible `json:"nutriments"`
}

// flexible decodes nutriment values that the API sends as numbers or numeric strings
type flexible struct {
	value *float64
}

func (f *flexible) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.value = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			f.value = &v
		}
	}
	return nil
}

// MapToProduct converts an Open Food Facts product to our domain Product
func MapToProduct(barcode string, p *offProduct) *domain.Product {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = domain.UnknownProductName
	}
	serving := strings.TrimSpace(p.ServingSize)
	if serving == "" {
		serving = domain.NotSpecified
	}

	allergens := p.AllergensHierarchy
	if allergens == nil {
		allergens = []string{}
	}

	return &domain.Product{
		Barcode:     barcode,
		ProductName: name,
		Brand:       firstBrand(p.Brands),
		ServingSize: serving,
		Calories:    p.nutriment("energy-kcal_100g"),
		Ingredients: strings.TrimSpace(p.IngredientsText),
		Allergens:   allergens,
		Nutrients: domain.Nutrients{
			Fat:           p.nutriment("fat_100g"),
			Proteins:      p.nutriment("proteins_100g"),
			Carbohydrates: p.nutriment("carbohydrates_100g"),
			Sugars:        p.nutriment("sugars_100g"),
			Fiber:         p.nutriment("fiber_100g"),
			Sodium:        p.nutriment("sodium_100g"),
		},
		Source: domain.SourceOpenFoodFacts,
	}
}

func (p *offProduct) nutriment(key string) *float64 {
	v, ok := p.Nutriments[key]
	if !ok {
		return nil
	}
	return v.value
}

func firstBrand(brands string) string {
	if idx := strings.Index(brands, ","); idx >= 0 {
		brands = brands[:idx]
	}
	return strings.TrimSpace(brands)
}
