package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMarket struct {
	quote *MarketQuote
	err   error
	panic bool
	calls int
}

func (s *stubMarket) Quote(ctx context.Context, query string) (*MarketQuote, error) {
	s.calls++
	if s.panic {
		panic("marketplace blew up")
	}
	return s.quote, s.err
}

type stubEstimator struct {
	price string
	err   error
	calls int
}

func (s *stubEstimator) EstimatePrice(ctx context.Context, item ItemDescriptor) (string, error) {
	s.calls++
	return s.price, s.err
}

func newTestPipeline(market MarketComparator, estimator Estimator) *Pipeline {
	return NewPipeline(PipelineOpts{
		Cache:     NewCache(time.Hour),
		Limiter:   NewTokenBucket(100, time.Minute),
		Gate:      NewIntervalGate(0),
		Market:    market,
		Estimator: estimator,
	})
}

func TestPriceMissingDescription(t *testing.T) {
	p := newTestPipeline(nil, nil)

	_, err := p.Price(context.Background(), ItemDescriptor{})
	assert.ErrorIs(t, err, ErrMissingDescription)

	_, err = p.Price(context.Background(), ItemDescriptor{Description: "   "})
	assert.ErrorIs(t, err, ErrMissingDescription)
}

func TestPriceMarketplacePath(t *testing.T) {
	market := &stubMarket{quote: &MarketQuote{
		Price:      74.6,
		SampleSize: 12,
		Confidence: ConfidenceHigh,
		MinPrice:   60,
		MaxPrice:   90,
	}}
	p := newTestPipeline(market, nil)

	est, err := p.Price(context.Background(), ItemDescriptor{Name: "iPhone 13", Description: "iPhone 13 128GB"})
	require.NoError(t, err)
	assert.Equal(t, "$75", est.Price)
	assert.Equal(t, SourceEbay, est.Source)
	assert.Equal(t, 12, est.SampleSize)
	assert.Equal(t, ConfidenceHigh, est.Confidence)
}

func TestPriceFallsBackToAlgorithm(t *testing.T) {
	// Marketplace errors and no LLM key: the source must be the
	// heuristic model, never ebay or openai.
	market := &stubMarket{err: errors.New("ebay is down")}
	p := newTestPipeline(market, nil)

	est, err := p.Price(context.Background(), ItemDescriptor{Description: "leather sofa good condition"})
	require.NoError(t, err)
	assert.Equal(t, SourceAlgorithm, est.Source)
	assert.Regexp(t, `^\$\d+$`, est.Price)
}

func TestPriceLLMPath(t *testing.T) {
	market := &stubMarket{err: errors.New("ebay is down")}
	estimator := &stubEstimator{price: "$75"}
	p := newTestPipeline(market, estimator)

	est, err := p.Price(context.Background(), ItemDescriptor{Description: "iPhone 13 128GB"})
	require.NoError(t, err)
	assert.Equal(t, "$75", est.Price)
	assert.Equal(t, SourceOpenAI, est.Source)
}

func TestPriceLLMFailureFallsThrough(t *testing.T) {
	market := &stubMarket{err: errors.New("ebay is down")}
	estimator := &stubEstimator{err: errors.New("model returned an essay")}
	p := newTestPipeline(market, estimator)

	est, err := p.Price(context.Background(), ItemDescriptor{Description: "iPhone 13 128GB"})
	require.NoError(t, err)
	assert.Equal(t, SourceAlgorithm, est.Source)
	assert.Equal(t, 1, estimator.calls)
}

func TestPriceCachesResult(t *testing.T) {
	market := &stubMarket{quote: &MarketQuote{Price: 80, SampleSize: 10, Confidence: ConfidenceMedium}}
	p := newTestPipeline(market, nil)

	first, err := p.Price(context.Background(), ItemDescriptor{Description: "iPhone 13 128GB"})
	require.NoError(t, err)
	assert.Equal(t, SourceEbay, first.Source)
	assert.Equal(t, 1, market.calls)

	// The second identical request is served from cache without touching
	// the marketplace.
	second, err := p.Price(context.Background(), ItemDescriptor{Description: "iPhone 13 128GB"})
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, 1, market.calls)
}

func TestPriceRateLimitSkipsMarketplace(t *testing.T) {
	market := &stubMarket{quote: &MarketQuote{Price: 80, SampleSize: 10}}
	p := NewPipeline(PipelineOpts{
		Cache:   NewCache(time.Hour),
		Limiter: NewTokenBucket(0, time.Hour),
		Gate:    NewIntervalGate(0),
		Market:  market,
	})

	est, err := p.Price(context.Background(), ItemDescriptor{Description: "iPhone 13 128GB"})
	require.NoError(t, err)
	assert.Equal(t, SourceAlgorithm, est.Source)
	assert.Zero(t, market.calls)
}

func TestPriceEmptyQuoteFallsThrough(t *testing.T) {
	market := &stubMarket{quote: nil}
	p := newTestPipeline(market, nil)

	est, err := p.Price(context.Background(), ItemDescriptor{Description: "obscure widget"})
	require.NoError(t, err)
	assert.Equal(t, SourceAlgorithm, est.Source)
	assert.Equal(t, 1, market.calls)
}

func TestPricePanicReturnsDefault(t *testing.T) {
	market := &stubMarket{panic: true}
	p := newTestPipeline(market, nil)

	est, err := p.Price(context.Background(), ItemDescriptor{Description: "iPhone 13 128GB"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPrice, est.Price)
	assert.Equal(t, SourceDefault, est.Source)
}

func TestMarketQueryPrefersName(t *testing.T) {
	assert.Equal(t, "iPhone 13", marketQuery(ItemDescriptor{Name: "iPhone 13", Description: "long description here"}))
	assert.Equal(t, "one two three four five six",
		marketQuery(ItemDescriptor{Description: "one two three four five six seven eight"}))
}
