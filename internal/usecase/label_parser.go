package usecase

import (
	"regexp"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

var (
	servingSizePrefixRegex = regexp.MustCompile(`(?i)serving size[: ]*`)
	caloriesPrefixRegex    = regexp.MustCompile(`(?i)calories[: ]*`)
	ingredientsPrefixRegex = regexp.MustCompile(`(?i)^.*?ingredients[: ]*`)
	nutrientLineRegex      = regexp.MustCompile(`^[\d.]+\s*(g|mg|%)`)
)

// commonAllergenWords mark a "contains" line as an allergen statement
var commonAllergenWords = []string{"milk", "soy", "nuts", "wheat"}

// ParseLabel extracts structured facts from OCR text of a nutrition label.
// Lines are classified in order: serving size, calories, the ingredients
// header, an allergen statement, ingredient continuation, nutrient amounts.
func ParseLabel(text string) domain.LabelFacts {
	facts := domain.LabelFacts{
		Nutrients: []string{},
		RawText:   text,
	}

	var ingredients []string
	inIngredients := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "serving size"):
			facts.ServingSize = strings.TrimSpace(servingSizePrefixRegex.ReplaceAllString(line, ""))
		case strings.Contains(lower, "calories"):
			facts.Calories = strings.TrimSpace(caloriesPrefixRegex.ReplaceAllString(line, ""))
		case strings.Contains(lower, "ingredients"):
			inIngredients = true
			if rest := strings.TrimSpace(ingredientsPrefixRegex.ReplaceAllString(line, "")); rest != "" {
				ingredients = append(ingredients, rest)
			}
		case isAllergenStatement(lower):
			facts.Allergens = line
		case inIngredients:
			ingredients = append(ingredients, line)
		case nutrientLineRegex.MatchString(line):
			facts.Nutrients = append(facts.Nutrients, line)
		}
	}

	facts.Ingredients = strings.Join(ingredients, " ")
	return facts
}

func isAllergenStatement(lower string) bool {
	if !strings.Contains(lower, "contains") {
		return false
	}
	if strings.Contains(lower, "allergen") {
		return true
	}
	for _, word := range commonAllergenWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
