package ebay

import (
	"sort"
	"strings"
)

// minRelevanceScore is the cutoff below which a candidate listing is not
// considered comparable to the query.
const minRelevanceScore = 3.0

// relevanceScore rates how well a listing title matches the query. Both are
// tokenized on whitespace, lower-cased, and tokens shorter than 3
// characters are ignored. Each exact token match is worth 2 points, each
// substring match 1; a bonus of (exactMatches/significantTokens)*5 rewards
// titles that cover the whole query.
func relevanceScore(query, title string) float64 {
	queryTokens := significantTokens(query)
	if len(queryTokens) == 0 {
		return 0
	}

	titleLower := strings.ToLower(title)
	titleSet := make(map[string]bool)
	for _, t := range strings.Fields(titleLower) {
		titleSet[t] = true
	}

	var score float64
	exact := 0
	for _, qt := range queryTokens {
		switch {
		case titleSet[qt]:
			score += 2
			exact++
		case strings.Contains(titleLower, qt):
			score++
		}
	}
	score += float64(exact) / float64(len(queryTokens)) * 5
	return score
}

func significantTokens(s string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(s)) {
		if len(t) >= 3 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// filterByRelevance scores candidates against the query, drops those under
// the threshold and sorts the rest by descending score.
func filterByRelevance(query string, items []ItemSummary) []scoredItem {
	var scored []scoredItem
	for _, item := range items {
		score := relevanceScore(query, item.Title)
		if score < minRelevanceScore {
			continue
		}
		scored = append(scored, scoredItem{ItemSummary: item, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

type scoredItem struct {
	ItemSummary
	Score float64
}
