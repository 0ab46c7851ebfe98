package usecase

import (
	"reflect"
	"testing"

	"github.com/nutriscan/backend/internal/domain"
)

func TestNewAllergenMatcher(t *testing.T) {
	t.Run("uses defaults when zero", func(t *testing.T) {
		m := NewAllergenMatcher(AllergenMatcherConfig{})
		if m.fuzzyEditDistance != 1 {
			t.Errorf("fuzzyEditDistance = %d, want 1", m.fuzzyEditDistance)
		}
		if m.minFuzzyLength != 4 {
			t.Errorf("minFuzzyLength = %d, want 4", m.minFuzzyLength)
		}
	})

	t.Run("keeps provided values", func(t *testing.T) {
		m := NewAllergenMatcher(AllergenMatcherConfig{FuzzyEditDistance: 2, MinFuzzyLength: 6})
		if m.fuzzyEditDistance != 2 || m.minFuzzyLength != 6 {
			t.Errorf("got distance %d length %d, want 2 and 6", m.fuzzyEditDistance, m.minFuzzyLength)
		}
	})
}

func TestAllergenMatcher_MatchProduct(t *testing.T) {
	m := NewAllergenMatcher(AllergenMatcherConfig{})

	tests := []struct {
		name      string
		allergies string
		product   *domain.Product
		want      []domain.AllergenAlert
	}{
		{
			name:      "matches allergen hierarchy with plural folding",
			allergies: "nuts",
			product:   nutellaProduct(),
			want: []domain.AllergenAlert{
				{Allergy: "nuts", Matched: "nut", Source: AlertSourceAllergens},
			},
		},
		{
			name:      "matches several allergies",
			allergies: "Milk; soy",
			product:   nutellaProduct(),
			want: []domain.AllergenAlert{
				{Allergy: "Milk", Matched: "milk", Source: AlertSourceAllergens},
				{Allergy: "soy", Matched: "soybean", Source: AlertSourceAllergens},
			},
		},
		{
			name:      "falls back to ingredients",
			allergies: "palm oil allergy",
			product:   nutellaProduct(),
			want: []domain.AllergenAlert{
				{Allergy: "palm oil allergy", Matched: "palm", Source: AlertSourceIngredients},
			},
		},
		{
			name:      "expands allergen families",
			allergies: "tree nuts",
			product: &domain.Product{
				Ingredients: "Roasted almonds, sea salt",
				Allergens:   []string{},
			},
			want: []domain.AllergenAlert{
				{Allergy: "tree nuts", Matched: "almond", Source: AlertSourceIngredients},
			},
		},
		{
			name:      "tolerates one missing letter in longer words",
			allergies: "sesam",
			product: &domain.Product{
				Ingredients: "Flour, sesame seeds",
			},
			want: []domain.AllergenAlert{
				{Allergy: "sesam", Matched: "sesame", Source: AlertSourceIngredients},
			},
		},
		{
			name:      "does not fuzz short words",
			allergies: "egg",
			product: &domain.Product{
				Ingredients: "Eel, rice",
			},
			want: []domain.AllergenAlert{},
		},
		{
			name:      "placeholder allergies produce no alerts",
			allergies: "None",
			product:   nutellaProduct(),
			want:      []domain.AllergenAlert{},
		},
		{
			name:      "empty allergies produce no alerts",
			allergies: "",
			product:   nutellaProduct(),
			want:      []domain.AllergenAlert{},
		},
		{
			name:      "nil product",
			allergies: "milk",
			product:   nil,
			want:      []domain.AllergenAlert{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchProduct(tt.allergies, tt.product)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MatchProduct() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitAllergies(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"peanuts, shellfish", []string{"peanuts", "shellfish"}},
		{"milk and eggs", []string{"milk", "eggs"}},
		{"Milk / milk", []string{"Milk"}},
		{"none", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := splitAllergies(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitAllergies(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hazelnuts 13%", []string{"hazelnut"}},
		{"Allergic to peanuts", []string{"peanut"}},
		{"berries, glass", []string{"berry", "glass"}},
		{"en:soybeans", []string{"en", "soybean"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"milk", "", 4},
		{"sesame", "sesmae", 2},
		{"sesame", "sesam", 1},
		{"peanut", "peanut", 0},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			if got := levenshteinDistance(tt.s1, tt.s2); got != tt.want {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
			}
		})
	}
}
