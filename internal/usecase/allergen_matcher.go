package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	punctuationRegex      = regexp.MustCompile(`[^\w\s]`)
	allergySeparatorRegex = regexp.MustCompile(`(?i)[,;/\n]|\band\b|\bor\b|&`)
)

// Alert sources
const (
	AlertSourceAllergens   = "allergens"
	AlertSourceIngredients = "ingredients"
)

// allergyStopWords are words in free-text allergy fields that never name an allergen
var allergyStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "of": true, "in": true,
	"with": true, "no": true, "none": true, "nothing": true, "known": true,
	"allergy": true, "allergies": true, "allergic": true, "intolerance": true,
	"intolerant": true, "sensitivity": true, "sensitive": true, "severe": true,
	"mild": true, "reported": true, "free": true, "trace": true, "traces": true,
	"may": true, "contain": true, "contains": true, "tree": true,
}

// allergenFamilies expands an allergy token to the ingredient names it covers
var allergenFamilies = map[string][]string{
	"dairy":     {"milk", "lactose", "cheese", "butter", "cream", "whey", "casein", "yogurt"},
	"lactose":   {"milk", "whey"},
	"milk":      {"lactose", "whey", "casein"},
	"soy":       {"soybean", "soya", "lecithin"},
	"soya":      {"soy", "soybean"},
	"gluten":    {"wheat", "barley", "rye", "spelt", "oat"},
	"wheat":     {"gluten", "spelt"},
	"nut":       {"hazelnut", "almond", "cashew", "walnut", "pecan", "pistachio", "macadamia"},
	"peanut":    {"groundnut", "arachis"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "crustacean", "mollusc"},
	"fish":      {"salmon", "tuna", "cod", "anchovy"},
	"sesame":    {"tahini"},
}

// AllergenMatcherConfig holds configuration for the allergen matcher
type AllergenMatcherConfig struct {
	FuzzyEditDistance int
	MinFuzzyLength    int
}

// AllergenMatcher finds profile allergies in product allergen and ingredient lists
type AllergenMatcher struct {
	fuzzyEditDistance int
	minFuzzyLength    int
}

// NewAllergenMatcher creates a matcher with the given configuration
func NewAllergenMatcher(config AllergenMatcherConfig) *AllergenMatcher {
	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1 // Default edit distance of 1
	}
	minLen := config.MinFuzzyLength
	if minLen <= 0 {
		minLen = 4
	}
	return &AllergenMatcher{
		fuzzyEditDistance: fuzzyDist,
		minFuzzyLength:    minLen,
	}
}

// MatchProduct compares the allergies text against a product's allergens and ingredients
func (m *AllergenMatcher) MatchProduct(allergies string, product *domain.Product) []domain.AllergenAlert {
	if product == nil {
		return []domain.AllergenAlert{}
	}
	return m.Match(allergies, strings.Join(product.Allergens, ", "), product.Ingredients)
}

// Match compares each allergy phrase with the allergen and ingredient texts.
// Each allergy yields at most one alert; allergen list hits win over ingredient hits.
func (m *AllergenMatcher) Match(allergies, allergensText, ingredientsText string) []domain.AllergenAlert {
	alerts := []domain.AllergenAlert{}

	phrases := splitAllergies(allergies)
	if len(phrases) == 0 {
		return alerts
	}

	allergenTokens := tokenize(strings.ReplaceAll(strings.ReplaceAll(allergensText, "en:", " "), "-", " "))
	ingredientTokens := tokenize(ingredientsText)

	for _, phrase := range phrases {
		tokens := tokenize(phrase)
		if len(tokens) == 0 {
			continue
		}

		if hit, ok := m.findMatch(tokens, allergenTokens); ok {
			alerts = append(alerts, domain.AllergenAlert{Allergy: phrase, Matched: hit, Source: AlertSourceAllergens})
			continue
		}
		if hit, ok := m.findMatch(tokens, ingredientTokens); ok {
			alerts = append(alerts, domain.AllergenAlert{Allergy: phrase, Matched: hit, Source: AlertSourceIngredients})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Source == AlertSourceAllergens && alerts[j].Source != AlertSourceAllergens
	})
	return alerts
}

// findMatch returns the first product token that matches any allergy token or its family
func (m *AllergenMatcher) findMatch(allergyTokens, productTokens []string) (string, bool) {
	candidates := expandFamilies(allergyTokens)
	for _, pt := range productTokens {
		for _, c := range candidates {
			if pt == c || m.fuzzyTokenMatch(pt, c) {
				return pt, true
			}
		}
	}
	return "", false
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func (m *AllergenMatcher) fuzzyTokenMatch(token1, token2 string) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to longer tokens to avoid false positives (egg vs eel)
	if len(token1) < m.minFuzzyLength || len(token2) < m.minFuzzyLength {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > m.fuzzyEditDistance {
		return false
	}

	return levenshteinDistance(token1, token2) <= m.fuzzyEditDistance
}

// splitAllergies splits a free-text allergy field into trimmed phrases.
// "None", "n/a" and similar placeholders produce no phrases.
func splitAllergies(allergies string) []string {
	var phrases []string
	seen := make(map[string]bool)
	for _, part := range allergySeparatorRegex.Split(allergies, -1) {
		phrase := strings.TrimSpace(part)
		key := strings.ToLower(phrase)
		if phrase == "" || seen[key] || len(tokenize(phrase)) == 0 {
			continue
		}
		seen[key] = true
		phrases = append(phrases, phrase)
	}
	return phrases
}

// expandFamilies adds the family members of each token, without duplicates
func expandFamilies(tokens []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range tokens {
		add(t)
		for _, member := range allergenFamilies[t] {
			add(member)
		}
	}
	return out
}

// tokenize splits a string into normalized lowercase singular tokens.
// Removes punctuation, stop words and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 || allergyStopWords[word] || isNumeric(word) {
			continue
		}
		tokens = append(tokens, singularize(word))
	}
	return tokens
}

// singularize folds simple English plurals: berries -> berry, nuts -> nut
func singularize(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us"):
		return word[:len(word)-1]
	}
	return word
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
