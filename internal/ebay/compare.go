package ebay

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bluberry-app/pricing/internal/pricing"
)

const (
	maxDisplayItems = 15

	// Pause between the sequential search strategies so one comparison
	// doesn't burst the marketplace API.
	defaultStrategyDelay = 250 * time.Millisecond
)

// SearchOptions tunes a comparison.
type SearchOptions struct {
	// IncludeShipping folds the first shipping option's cost into each
	// listing price.
	IncludeShipping bool
}

// ComparableItem is one listing in the comparison payload, trimmed for
// display.
type ComparableItem struct {
	ItemID    string  `json:"itemId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Condition string  `json:"condition,omitempty"`
	URL       string  `json:"url,omitempty"`
	Relevance float64 `json:"relevance"`
}

// Analysis carries the secondary statistics of a comparison.
type Analysis struct {
	Outliers           int                  `json:"outliers"`
	PriceDistribution  []DistributionBucket `json:"priceDistribution"`
	ConditionBreakdown map[string]int       `json:"conditionBreakdown"`
}

// Comparison is the full result of a marketplace price comparison.
type Comparison struct {
	AveragePrice float64            `json:"averagePrice"`
	MedianPrice  float64            `json:"medianPrice"`
	MinPrice     float64            `json:"minPrice"`
	MaxPrice     float64            `json:"maxPrice"`
	PriceRange   string             `json:"priceRange"`
	Confidence   pricing.Confidence `json:"confidence"`
	SampleSize   int                `json:"sampleSize"`
	Items        []ComparableItem   `json:"items"`
	Analysis     Analysis           `json:"analysis"`
	Message      string             `json:"message,omitempty"`
}

// Comparator queries the marketplace with several search strategies,
// filters candidates by relevance, and summarizes the surviving prices.
// It fails softly: strategy failures are logged and partial results are
// acceptable, so a comparison never propagates an error to the pricing
// pipeline.
type Comparator struct {
	client *Client

	// strategyDelay is overridable so tests don't sleep.
	strategyDelay time.Duration
}

// NewComparator wraps a Browse API client.
func NewComparator(client *Client) *Comparator {
	return &Comparator{client: client, strategyDelay: defaultStrategyDelay}
}

// Compare searches the marketplace for listings comparable to the query
// and computes a confidence-scored price summary.
func (c *Comparator) Compare(ctx context.Context, query string, opts SearchOptions) *Comparison {
	raw := c.collect(ctx, query)
	if len(raw) == 0 {
		return &Comparison{
			Confidence: pricing.ConfidenceLow,
			Message:    "no items found",
		}
	}

	relevant := filterByRelevance(query, raw)
	if len(relevant) == 0 {
		return &Comparison{
			Confidence: pricing.ConfidenceLow,
			Message:    "found items but none relevant",
		}
	}

	var prices []float64
	var priced []ComparableItem
	conditions := make(map[string]int)
	for _, item := range relevant {
		price, ok := listingPrice(item.ItemSummary, opts.IncludeShipping)
		if !ok || price <= 0 {
			continue
		}
		prices = append(prices, price)
		conditions[normalizeCondition(item.Condition)]++
		priced = append(priced, ComparableItem{
			ItemID:    item.ItemID,
			Title:     item.Title,
			Price:     price,
			Condition: item.Condition,
			URL:       item.ItemWebURL,
			Relevance: item.Score,
		})
	}
	if len(prices) == 0 {
		return &Comparison{
			Confidence: pricing.ConfidenceLow,
			Message:    "found items but none relevant",
		}
	}

	filtered, outliers := removeOutliers(prices)
	stats := computeStats(filtered)

	spread := math.Inf(1)
	if stats.Median > 0 {
		spread = (stats.Max - stats.Min) / stats.Median
	}

	display := priced
	if len(display) > maxDisplayItems {
		display = display[:maxDisplayItems]
	}

	return &Comparison{
		AveragePrice: stats.Mean,
		MedianPrice:  stats.Median,
		MinPrice:     stats.Min,
		MaxPrice:     stats.Max,
		PriceRange:   fmt.Sprintf("$%d - $%d", int(math.Round(stats.Min)), int(math.Round(stats.Max))),
		Confidence:   confidenceFor(len(filtered), spread),
		SampleSize:   len(filtered),
		Items:        display,
		Analysis: Analysis{
			Outliers:           len(outliers),
			PriceDistribution:  priceDistribution(filtered),
			ConditionBreakdown: conditions,
		},
	}
}

// Quote adapts a comparison to the pipeline's MarketQuote contract. A nil
// quote with nil error means no usable comparables; network and API
// failures were already swallowed by Compare.
func (c *Comparator) Quote(ctx context.Context, query string) (*pricing.MarketQuote, error) {
	comparison := c.Compare(ctx, query, SearchOptions{})
	if comparison.SampleSize == 0 || comparison.MedianPrice <= 0 {
		return nil, nil
	}
	return &pricing.MarketQuote{
		Price:      comparison.MedianPrice,
		SampleSize: comparison.SampleSize,
		Confidence: comparison.Confidence,
		MinPrice:   comparison.MinPrice,
		MaxPrice:   comparison.MaxPrice,
	}, nil
}

// collect runs the search strategies sequentially, merging and
// de-duplicating results by item ID. Individual strategy failures are
// logged and skipped.
func (c *Comparator) collect(ctx context.Context, query string) []ItemSummary {
	strategies := searchStrategies(query)

	seen := make(map[string]bool)
	var merged []ItemSummary
	for i, params := range strategies {
		if i > 0 && c.strategyDelay > 0 {
			select {
			case <-ctx.Done():
				return merged
			case <-time.After(c.strategyDelay):
			}
		}

		items, err := c.client.Search(ctx, params)
		if err != nil {
			log.Warn().Err(err).Str("query", params.Query).Str("sort", params.Sort).
				Msg("search strategy failed, continuing with others")
			continue
		}
		for _, item := range items {
			if item.ItemID == "" || seen[item.ItemID] {
				continue
			}
			seen[item.ItemID] = true
			merged = append(merged, item)
		}
	}
	return merged
}

// searchStrategies builds the three query variants: exact phrase, plain
// keyword, and a broad first-three-words search.
func searchStrategies(query string) []searchParams {
	strategies := []searchParams{
		{Query: fmt.Sprintf("%q", query), Limit: 50},
		{Query: query, Sort: "price", Limit: 50},
	}
	words := strings.Fields(query)
	if len(words) > 3 {
		strategies = append(strategies, searchParams{
			Query: strings.Join(words[:3], " "),
			Sort:  "newlyListed",
			Limit: 25,
		})
	}
	return strategies
}

// listingPrice extracts the numeric price of a listing, optionally adding
// the first shipping option's cost.
func listingPrice(item ItemSummary, includeShipping bool) (float64, bool) {
	price, ok := item.Price.Amount()
	if !ok {
		return 0, false
	}
	if includeShipping && len(item.ShippingOptions) > 0 {
		if shipping, ok := item.ShippingOptions[0].ShippingCost.Amount(); ok {
			price += shipping
		}
	}
	return price, true
}

// normalizeCondition folds marketplace condition labels into a small set
// of buckets for the breakdown.
func normalizeCondition(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return "unspecified"
	case strings.Contains(s, "brand new"), s == "new", strings.Contains(s, "sealed"):
		return "new"
	case strings.Contains(s, "open box"), strings.Contains(s, "like new"), strings.Contains(s, "refurbished"):
		return "like new"
	case strings.Contains(s, "parts"), strings.Contains(s, "not working"):
		return "for parts"
	case strings.Contains(s, "pre-owned"), strings.Contains(s, "used"):
		return "used"
	default:
		return s
	}
}
