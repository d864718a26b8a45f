package pricing

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var priceFormat = regexp.MustCompile(`^\$\d+$`)

// newFixedHeuristic pins the jitter factor so results are deterministic.
// randFloat 0.5 makes the jitter multiplier exactly 1.0.
func newFixedHeuristic(randValue float64) *Heuristic {
	h := NewHeuristic(nil)
	h.randFloat = func() float64 { return randValue }
	return h
}

func parsePrice(t *testing.T, price string) int {
	t.Helper()
	require.Regexp(t, priceFormat, price)
	n, err := strconv.Atoi(strings.TrimPrefix(price, "$"))
	require.NoError(t, err)
	return n
}

func TestGeneratePriceFormatAndFloor(t *testing.T) {
	h := NewHeuristic(nil)
	descriptions := []string{
		"iphone 14 new",
		"old broken toaster",
		"x",
		"a poor damaged broken thing from 2003",
		"leather sofa excellent condition",
		"gold ring vintage",
	}
	for _, desc := range descriptions {
		for i := 0; i < 20; i++ {
			n := parsePrice(t, h.GeneratePrice(desc))
			assert.GreaterOrEqual(t, n, 5, "description %q", desc)
		}
	}
}

func TestGeneratePriceSmartphoneUnjittered(t *testing.T) {
	h := newFixedHeuristic(0.5)

	// Smartphones base 150, "iphone" premium x2.5, "new" condition x1.6,
	// "new" age x1.25 = 750, rounded to the nearest $50.
	assert.Equal(t, "$750", h.GeneratePrice("iphone 14 new"))
}

func TestGeneratePriceJitterBounds(t *testing.T) {
	h := NewHeuristic(nil)

	// Unjittered value is 750; jitter spans [0.85, 1.15] and values above
	// $200 round to the nearest $50, so results stay in [650, 850].
	for i := 0; i < 100; i++ {
		n := parsePrice(t, h.GeneratePrice("iphone 14 new"))
		assert.GreaterOrEqual(t, n, 650)
		assert.LessOrEqual(t, n, 850)
		assert.Zero(t, n%50, "price above $200 rounds to a $50 step")
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	h := NewHeuristic(nil)

	assert.Equal(t, "Smartphones", h.Classify("iPhone 13 with charger").Name)
	assert.Equal(t, "Laptops", h.Classify("MacBook Pro 2019").Name)
	assert.Equal(t, "Furniture", h.Classify("leather sofa, some wear").Name)
	assert.Equal(t, "General", h.Classify("mystery box of stuff").Name)
}

func TestGeneralCategoryBase(t *testing.T) {
	h := newFixedHeuristic(0.5)

	// General base 45, no premium, no condition or year keywords: rounds
	// to the nearest $5.
	assert.Equal(t, "$45", h.GeneratePrice("mystery box of stuff"))
}

func TestConditionPrecedence(t *testing.T) {
	h := newFixedHeuristic(0.5)

	// "new" masks "used" when both appear: first match wins.
	both := parsePrice(t, h.GeneratePrice("mystery box of stuff, barely used, almost new"))
	onlyUsed := parsePrice(t, h.GeneratePrice("mystery box of stuff, barely used"))
	assert.Greater(t, both, onlyUsed)
}

func TestPoorConditionReducesPrice(t *testing.T) {
	h := newFixedHeuristic(0.5)

	good := parsePrice(t, h.GeneratePrice("leather sofa good condition"))
	broken := parsePrice(t, h.GeneratePrice("leather sofa broken frame"))
	assert.Greater(t, good, broken)
}

func TestAgeDecay(t *testing.T) {
	h := newFixedHeuristic(0.5)

	recent := parsePrice(t, h.GeneratePrice("macbook laptop 2021"))
	older := parsePrice(t, h.GeneratePrice("macbook laptop 2018"))
	oldest := parsePrice(t, h.GeneratePrice("macbook laptop 2009"))
	assert.Greater(t, recent, older)
	assert.Greater(t, older, oldest)
}

func TestVintageAppreciation(t *testing.T) {
	h := newFixedHeuristic(0.5)

	plain := parsePrice(t, h.GeneratePrice("oak table sturdy"))
	vintage := parsePrice(t, h.GeneratePrice("vintage oak table sturdy"))
	assert.Greater(t, vintage, plain)
}

func TestLoadCategoryRulesValidation(t *testing.T) {
	_, err := LoadCategoryRules([]byte("categories: []"))
	assert.Error(t, err)

	_, err = LoadCategoryRules([]byte(`
categories:
  - name: OnlyRule
    keywords: [thing]
    basePrice: 10
    premiumMultiplier: 1.5
    ageDecayFactor: 0.8
`))
	assert.Error(t, err, "last rule must be a catch-all")

	rules, err := LoadCategoryRules(rulesYAML)
	assert.NoError(t, err)
	assert.Equal(t, "General", rules[len(rules)-1].Name)
	assert.Equal(t, 45.0, rules[len(rules)-1].BasePrice)
}
