package ebay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevanceScoreRejectsUnrelatedTitle(t *testing.T) {
	score := relevanceScore("iPhone 13", "Vintage Rotary Phone")
	assert.Less(t, score, minRelevanceScore)
}

func TestRelevanceScoreAcceptsCloseMatch(t *testing.T) {
	score := relevanceScore("iPhone 13", "Apple iPhone 13 128GB Unlocked")
	assert.GreaterOrEqual(t, score, minRelevanceScore)
}

func TestRelevanceScoreIgnoresShortTokens(t *testing.T) {
	// "13" is shorter than 3 characters, so only "iphone" counts.
	exact := relevanceScore("iPhone 13", "iphone")
	assert.InDelta(t, 7.0, exact, 0.001, "2 for the exact match plus the full-coverage bonus of 5")
}

func TestRelevanceScoreSubstringMatch(t *testing.T) {
	// "macbook" appears inside "macbookpro2019" but not as its own token:
	// worth 1 point, no exact-match bonus.
	score := relevanceScore("macbook charger", "macbookpro2019")
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestFilterByRelevanceSortsByScore(t *testing.T) {
	items := []ItemSummary{
		{ItemID: "1", Title: "Garden hose"},
		{ItemID: "2", Title: "Apple iPhone 13 Pro"},
		{ItemID: "3", Title: "iphone case"},
		{ItemID: "4", Title: "Apple iPhone 13"},
	}

	scored := filterByRelevance("Apple iPhone 13", items)
	assert.NotEmpty(t, scored)
	for _, item := range scored {
		assert.NotEqual(t, "1", item.ItemID)
	}
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
}
