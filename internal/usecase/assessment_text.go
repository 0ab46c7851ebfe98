package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

const (
	safetyAssessmentMarker = "SAFETY ASSESSMENT:"
	noSummary              = "No summary available"
	noneReported           = "None reported"
	noneListed             = "None listed"
)

// verdictRegex finds whole-word verdicts; the leftmost match in a line is the verdict
var verdictRegex = regexp.MustCompile(`\b(not safe|unsafe|avoid|caution|cautious|moderate|safe)\b`)

// FormatProductText renders a product as the nutrition block of the assessment prompt
func FormatProductText(p *domain.Product) string {
	var nutrients []string
	for _, n := range p.Nutrients.List() {
		if n.Value == nil {
			continue
		}
		nutrients = append(nutrients, fmt.Sprintf("%s: %sg per 100g", capitalize(n.Name), formatNumber(*n.Value)))
	}

	allergens := make([]string, 0, len(p.Allergens))
	for _, a := range p.Allergens {
		allergens = append(allergens, strings.ReplaceAll(a, "en:", ""))
	}
	allergensText := strings.Join(allergens, ", ")
	if allergensText == "" {
		allergensText = noneListed
	}

	calories := domain.NotSpecified
	if p.Calories != nil {
		calories = formatNumber(*p.Calories)
	}

	text := fmt.Sprintf(`Nutrition Facts for %s:
Serving Size: %s
Calories: %s kcal per 100g

Ingredients: %s

Allergen Information: %s

Nutrient Information per 100g:
%s`, p.ProductName, p.ServingSize, calories, p.Ingredients, allergensText, strings.Join(nutrients, "\n"))

	return strings.TrimSpace(text)
}

// FormatLabelText renders OCR label facts as the nutrition block of the assessment prompt
func FormatLabelText(f *domain.LabelFacts) string {
	text := fmt.Sprintf(`Nutrition Facts:
Serving Size: %s
Calories: %s

Ingredients: %s

Allergen Information: %s

Nutrient Information:
%s`, f.ServingSize, f.Calories, f.Ingredients, f.Allergens, strings.Join(f.Nutrients, "\n"))

	return strings.TrimSpace(text)
}

// BuildPrompt combines the user's profile, the nutrition block and any
// detected allergen matches into the assessment prompt
func BuildPrompt(profile *domain.Profile, nutritionText string, alerts []domain.AllergenAlert) string {
	healthConditions := strings.TrimSpace(profile.HealthConditions)
	if healthConditions == "" {
		healthConditions = noneReported
	}
	allergies := strings.TrimSpace(profile.Allergies)
	if allergies == "" {
		allergies = noneReported
	}
	restrictions := profile.DietaryRestrictions
	if len(restrictions) == 0 {
		restrictions = []string{domain.RestrictionNone}
	}

	var b strings.Builder
	b.WriteString("As a nutrition and dietary safety expert, analyze this nutrition label for a person with the following profile:\n\n")
	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d years\n", profile.Age)
	fmt.Fprintf(&b, "- Health Conditions: %s\n", healthConditions)
	fmt.Fprintf(&b, "- Allergies: %s\n", allergies)
	fmt.Fprintf(&b, "- Dietary Restrictions: %s\n\n", strings.Join(restrictions, ", "))

	b.WriteString("NUTRITION INFORMATION:\n")
	b.WriteString(nutritionText)
	b.WriteString("\n\n")

	if len(alerts) > 0 {
		b.WriteString("DETECTED ALLERGEN MATCHES (automatic check, confirm in your assessment):\n")
		for _, a := range alerts {
			fmt.Fprintf(&b, "- %s: matched %q in product %s\n", a.Allergy, a.Matched, a.Source)
		}
		b.WriteString("\n")
	}

	b.WriteString(promptOutline)
	return b.String()
}

const promptOutline = `Please provide a comprehensive analysis in the following format. Emphasize readability and clarity for the user, utilizing formatting tricks like bullet points and varied text styles:

SAFETY ASSESSMENT:
[Provide an overall safety rating (Safe/Caution/Unsafe) and brief explanation]

FURTHER ANALYSIS -- each should be brief with detail only if important as a warning to the user given their health profile:
1. Allergen Risk:
   - Known allergens present
   - Cross-contamination risks
   - Severity level for user's specific allergies

2. Dietary Compliance:
   - Compatibility with dietary restrictions
   - Any conflicting ingredients

3. Nutritional Impact:
   - Key nutrients and their relevance to user's health conditions
   - Portion size considerations
   - Caloric and macro-nutrient assessment

4. Health Considerations:
   - Specific impacts on user's health conditions
   - Potential interactions with medications (if any)
   - Long-term consumption considerations

RECOMMENDATIONS:
- Specific advice for safe consumption
- Suggested alternatives (if needed)
- Portion size recommendations

Please prioritize accuracy and be specific about any health risks or concerns. If a food is safe but not extremely healthy (like chocolate), it is still considered safe.
`

// ExtractSafetyRating reads the verdict from the first three lines after the
// SAFETY ASSESSMENT marker. The first verdict word in a line decides it, so
// "Safe, consume in moderate amounts" is Safe and "Use caution, generally safe"
// is Caution. Whole words only: "unsafe" and "not safe" never read as Safe.
// A hedge that precedes the verdict wins, e.g. "Avoid if allergic, otherwise safe" is Unsafe.
func ExtractSafetyRating(analysis string) domain.SafetyRating {
	idx := strings.Index(analysis, safetyAssessmentMarker)
	if idx < 0 {
		return domain.RatingUnknown
	}

	lines := strings.Split(analysis[idx+len(safetyAssessmentMarker):], "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}

	for _, line := range lines {
		switch verdictRegex.FindString(strings.ToLower(line)) {
		case "not safe", "unsafe", "avoid":
			return domain.RatingUnsafe
		case "caution", "cautious", "moderate":
			return domain.RatingCaution
		case "safe":
			return domain.RatingSafe
		}
	}
	return domain.RatingUnknown
}

// ExtractSummary returns the first paragraph after the SAFETY ASSESSMENT marker
func ExtractSummary(analysis string) string {
	idx := strings.Index(analysis, safetyAssessmentMarker)
	if idx < 0 {
		return noSummary
	}
	rest := strings.ReplaceAll(analysis[idx+len(safetyAssessmentMarker):], "\r\n", "\n")
	rest = strings.TrimLeft(rest, " \t\n")
	if end := strings.Index(rest, "\n\n"); end >= 0 {
		rest = rest[:end]
	}
	if summary := strings.TrimSpace(rest); summary != "" {
		return summary
	}
	return noSummary
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatNumber prints a value without trailing zeros: 30.9, 539, 0.0428
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
