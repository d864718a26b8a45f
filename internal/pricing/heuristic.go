package pricing

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strings"
)

// adjustment is one step of a first-match-wins multiplier chain. Order
// matters: "new" deliberately masks "used" when both appear.
type adjustment struct {
	keywords []string
	factor   float64
}

var conditionAdjustments = []adjustment{
	{[]string{"new", "sealed", "unopened"}, 1.6},
	{[]string{"like new", "excellent"}, 1.35},
	{[]string{"good"}, 1.05},
	{[]string{"fair", "used"}, 0.75},
	{[]string{"poor", "damaged", "broken"}, 0.35},
}

var oldYearPattern = regexp.MustCompile(`20(0\d|1[0-4])`)

// vintageCategories appreciate rather than depreciate when the text calls
// the item vintage, antique or retro.
var vintageCategories = map[string]bool{
	"Collectibles": true,
	"Furniture":    true,
	"Jewelry":      true,
}

var vintageKeywords = []string{"vintage", "antique", "retro"}

// Heuristic is the deterministic pricing fallback: category base price,
// premium and condition multipliers, age decay and bounded randomization.
// It never fails and always returns a "$<integer>" string with a value of
// at least $5.
type Heuristic struct {
	rules []CategoryRule

	// randFloat returns a value in [0, 1). Injectable so tests can pin
	// the jitter step.
	randFloat func() float64
}

// NewHeuristic creates a model over the given rule table, or the built-in
// table when rules is nil.
func NewHeuristic(rules []CategoryRule) *Heuristic {
	if rules == nil {
		rules = DefaultCategoryRules()
	}
	return &Heuristic{rules: rules, randFloat: rand.Float64}
}

// Classify returns the first matching category rule for a description.
func (h *Heuristic) Classify(description string) CategoryRule {
	text := strings.ToLower(description)
	for _, rule := range h.rules {
		if rule.Matches(text) {
			return rule
		}
	}
	// Unreachable: the last rule is a validated catch-all.
	return h.rules[len(h.rules)-1]
}

// GeneratePrice estimates a resale price for a free-text item description.
// The jitter step makes repeated calls on the same input return different
// prices within a bounded range, so quotes don't look mechanical.
func (h *Heuristic) GeneratePrice(description string) string {
	text := strings.ToLower(description)
	category := h.Classify(description)

	price := category.BasePrice

	for _, kw := range category.PremiumKeywords {
		if strings.Contains(text, kw) {
			price *= category.PremiumMultiplier
			break
		}
	}

	for _, adj := range conditionAdjustments {
		if containsAny(text, adj.keywords) {
			price *= adj.factor
			break
		}
	}

	price *= ageMultiplier(text, category.AgeDecayFactor)

	if vintageCategories[category.Name] && containsAny(text, vintageKeywords) {
		price *= 2.0
	}

	// Jitter: uniform factor in [0.85, 1.15].
	price *= 0.85 + h.randFloat()*0.3

	if price < 5 {
		price = 5
	}

	return fmt.Sprintf("$%d", roundToDenomination(price))
}

// ageMultiplier walks the year-mention chain in precedence order.
func ageMultiplier(text string, decay float64) float64 {
	switch {
	case containsAny(text, []string{"new", "2023", "2024"}):
		return 1.25
	case containsAny(text, []string{"2020", "2021", "2022"}):
		return 1.0
	case containsAny(text, []string{"2018", "2019"}):
		return decay
	case containsAny(text, []string{"2015", "2016", "2017"}):
		return decay * 0.8
	case oldYearPattern.MatchString(text):
		return decay * 0.6
	}
	return 1.0
}

// roundToDenomination rounds to a human-friendly step by magnitude:
// nearest $100 above $1000, $50 above $200, $10 above $50, else $5.
func roundToDenomination(price float64) int {
	switch {
	case price > 1000:
		return int(math.Round(price/100) * 100)
	case price > 200:
		return int(math.Round(price/50) * 50)
	case price > 50:
		return int(math.Round(price/10) * 10)
	default:
		return int(math.Round(price/5) * 5)
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
