package pricing

import "context"

// Source identifies where a price figure came from. It is exposed in API
// responses so the UI can disclose how an estimate was produced.
type Source string

const (
	SourceEbay      Source = "ebay"
	SourceOpenAI    Source = "openai"
	SourceAlgorithm Source = "algorithm"
	SourceCache     Source = "cache"
	SourceDefault   Source = "default"
)

// Confidence grades how trustworthy a marketplace-derived estimate is,
// based on sample size and price spread.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ItemDescriptor is the input to the pipeline. Description is the only
// required field; everything else defaults to neutral values.
type ItemDescriptor struct {
	Name        string
	Description string
	Condition   string
	Issues      string
}

// PriceEstimate is the pipeline's output. SampleSize, Confidence, MinPrice
// and MaxPrice are only populated on the marketplace path.
type PriceEstimate struct {
	Price      string
	Source     Source
	SampleSize int
	Confidence Confidence
	MinPrice   float64
	MaxPrice   float64
}

// MarketQuote is the subset of a marketplace comparison the pipeline needs
// to decide whether a live price is usable.
type MarketQuote struct {
	Price      float64
	SampleSize int
	Confidence Confidence
	MinPrice   float64
	MaxPrice   float64
}

// MarketComparator queries a live marketplace for comparable listings.
// Implementations fail softly: a nil quote with a nil error means no
// usable comparables were found.
type MarketComparator interface {
	Quote(ctx context.Context, query string) (*MarketQuote, error)
}

// Estimator produces a price estimate from a language model. The returned
// string must already be validated as a bare dollar price.
type Estimator interface {
	EstimatePrice(ctx context.Context, item ItemDescriptor) (string, error)
}
