package usda

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nutriscan/backend/internal/domain"
)

func TestMapToProduct(t *testing.T) {
	tests := []struct {
		name string
		food *food
		want *domain.Product
	}{
		{
			name: "complete branded food",
			food: &food{
				FdcID:            2041155,
				Description:      "CHOCOLATE HAZELNUT SPREAD",
				DataType:         "Branded",
				GTINUPC:          "009800895007",
				BrandOwner:       "Ferrero U.S.A., Incorporated",
				BrandName:        "NUTELLA",
				Ingredients:      "SUGAR, PALM OIL, HAZELNUTS, SKIM MILK",
				HouseholdServing: "2 Tbsp",
				FoodNutrients: []nutrient{
					{NutrientID: NutrientIDEnergy, Value: 541, UnitName: "KCAL"},
					{NutrientID: NutrientIDProtein, Value: 5.41, UnitName: "G"},
					{NutrientID: NutrientIDCarbohydrate, Value: 59.5, UnitName: "G"},
					{NutrientID: NutrientIDTotalFat, Value: 29.7, UnitName: "G"},
					{NutrientID: NutrientIDSugars, Value: 56.8, UnitName: "G"},
					{NutrientID: NutrientIDFiber, Value: 2.7, UnitName: "G"},
					{NutrientID: NutrientIDSodium, Value: 41, UnitName: "MG"},
				},
			},
			want: &domain.Product{
				Barcode:     "009800895007",
				ProductName: "CHOCOLATE HAZELNUT SPREAD",
				Brand:       "NUTELLA",
				ServingSize: "2 Tbsp",
				Calories:    domain.Float(541),
				Ingredients: "SUGAR, PALM OIL, HAZELNUTS, SKIM MILK",
				Allergens:   []string{},
				Nutrients: domain.Nutrients{
					Fat:           domain.Float(29.7),
					Proteins:      domain.Float(5.41),
					Carbohydrates: domain.Float(59.5),
					Sugars:        domain.Float(56.8),
					Fiber:         domain.Float(2.7),
					Sodium:        domain.Float(0.041),
				},
				Source: domain.SourceUSDA,
			},
		},
		{
			name: "missing nutrients and names",
			food: &food{
				FdcID:           1,
				BrandOwner:      "Store Brand",
				ServingSize:     30,
				ServingSizeUnit: "G",
				FoodNutrients: []nutrient{
					{NutrientID: NutrientIDEnergy, Value: 120},
				},
			},
			want: &domain.Product{
				Barcode:     "012345678905",
				ProductName: domain.UnknownProductName,
				Brand:       "Store Brand",
				ServingSize: "30 g",
				Calories:    domain.Float(120),
				Allergens:   []string{},
				Source:      domain.SourceUSDA,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToProduct(tt.want.Barcode, tt.food)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MapToProduct() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindNutrient(t *testing.T) {
	nutrients := []nutrient{
		{NutrientID: NutrientIDEnergy, Value: 100},
		{NutrientID: NutrientIDProtein, Value: 0},
	}

	if got := findNutrient(nutrients, NutrientIDEnergy); got == nil || *got != 100 {
		t.Errorf("findNutrient(energy) = %v, want 100", got)
	}
	if got := findNutrient(nutrients, NutrientIDProtein); got == nil || *got != 0 {
		t.Errorf("findNutrient(protein) = %v, want explicit 0", got)
	}
	if got := findNutrient(nutrients, NutrientIDFiber); got != nil {
		t.Errorf("findNutrient(fiber) = %v, want nil", *got)
	}
}

func TestFindByGTIN(t *testing.T) {
	foods := []food{
		{FdcID: 1, GTINUPC: "00012345678905"},
		{FdcID: 2, GTINUPC: "3017620422003"},
	}

	tests := []struct {
		barcode string
		wantID  int
	}{
		{"012345678905", 1},
		{"3017620422003", 2},
		{"99999999", 0},
		{"0000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.barcode, func(t *testing.T) {
			got := findByGTIN(foods, tt.barcode)
			if tt.wantID == 0 {
				if got != nil {
					t.Errorf("findByGTIN(%q) = %d, want nil", tt.barcode, got.FdcID)
				}
				return
			}
			if got == nil || got.FdcID != tt.wantID {
				t.Errorf("findByGTIN(%q) = %v, want fdcId %d", tt.barcode, got, tt.wantID)
			}
		})
	}
}
