package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrMissingDescription is returned when a price request carries no
// description. This is the only input the caller must reject up front.
var ErrMissingDescription = errors.New("description is required")

// DefaultPrice is the catch-all response when every strategy, including
// the heuristic model, fails unexpectedly. Pricing must never hard-fail a
// user-facing submission flow.
const DefaultPrice = "$50"

// errSkip marks a strategy that produced no usable result. The orchestrator
// logs it and moves on to the next strategy in the chain.
type errSkip struct {
	reason string
}

func (e errSkip) Error() string { return e.reason }

func skip(format string, args ...any) error {
	return errSkip{reason: fmt.Sprintf(format, args...)}
}

// strategy is one step of the fallback chain. A nil estimate with a nil
// error is not allowed: strategies either produce an estimate or explain
// why they were skipped.
type strategy struct {
	name    string
	attempt func(ctx context.Context, item ItemDescriptor) (*PriceEstimate, error)
}

// Pipeline resolves a price for a described item by walking an ordered
// chain of strategies: cache, live marketplace comparison, LLM estimate,
// heuristic model. The first strategy to produce an estimate wins; computed
// (non-cache) results are written back to the cache.
//
// The pipeline owns its cache and limiter state; construct one per process
// and share it across request handlers.
type Pipeline struct {
	cache     *Cache
	limiter   *TokenBucket
	gate      *IntervalGate
	market    MarketComparator // optional
	estimator Estimator        // optional
	heuristic *Heuristic

	strategies []strategy
}

// PipelineOpts configures a Pipeline. Market and Estimator may be nil, in
// which case their strategies are skipped.
type PipelineOpts struct {
	Cache     *Cache
	Limiter   *TokenBucket
	Gate      *IntervalGate
	Market    MarketComparator
	Estimator Estimator
	Heuristic *Heuristic
}

// NewPipeline wires the fallback chain. Missing cache, limiter, gate or
// heuristic fall back to defaults.
func NewPipeline(opts PipelineOpts) *Pipeline {
	p := &Pipeline{
		cache:     opts.Cache,
		limiter:   opts.Limiter,
		gate:      opts.Gate,
		market:    opts.Market,
		estimator: opts.Estimator,
		heuristic: opts.Heuristic,
	}
	if p.cache == nil {
		p.cache = NewCache(DefaultCacheTTL)
	}
	if p.limiter == nil {
		p.limiter = NewTokenBucket(10, time.Minute)
	}
	if p.gate == nil {
		p.gate = NewIntervalGate(10 * time.Second)
	}
	if p.heuristic == nil {
		p.heuristic = NewHeuristic(nil)
	}
	p.strategies = []strategy{
		{name: "cache", attempt: p.attemptCache},
		{name: "marketplace", attempt: p.attemptMarket},
		{name: "llm", attempt: p.attemptLLM},
		{name: "heuristic", attempt: p.attemptHeuristic},
	}
	return p
}

// Price produces an estimate for the item. It returns an error only for
// invalid input; every internal failure degrades to a fallback and, in the
// worst case, the fixed default price.
func (p *Pipeline) Price(ctx context.Context, item ItemDescriptor) (est PriceEstimate, err error) {
	if strings.TrimSpace(item.Description) == "" {
		return PriceEstimate{}, ErrMissingDescription
	}

	// A panic anywhere in the chain degrades to the default price rather
	// than failing the submission flow.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("price pipeline panicked, returning default price")
			est = PriceEstimate{Price: DefaultPrice, Source: SourceDefault}
			err = nil
		}
	}()

	fingerprint := Fingerprint(item.Description)

	for _, s := range p.strategies {
		result, attemptErr := s.attempt(ctx, item)
		if attemptErr != nil {
			var es errSkip
			if errors.As(attemptErr, &es) {
				log.Debug().Str("strategy", s.name).Str("reason", es.reason).Msg("pricing strategy skipped")
			} else {
				log.Warn().Err(attemptErr).Str("strategy", s.name).Msg("pricing strategy failed")
			}
			continue
		}
		if result == nil {
			continue
		}
		if result.Source != SourceCache {
			p.cache.Put(fingerprint, result.Price)
		}
		log.Info().
			Str("strategy", s.name).
			Str("price", result.Price).
			Str("source", string(result.Source)).
			Msg("price resolved")
		return *result, nil
	}

	// Unreachable while the heuristic strategy is in the chain, but the
	// contract is that a price always comes back.
	return PriceEstimate{Price: DefaultPrice, Source: SourceDefault}, nil
}

func (p *Pipeline) attemptCache(ctx context.Context, item ItemDescriptor) (*PriceEstimate, error) {
	price, ok := p.cache.Get(Fingerprint(item.Description))
	if !ok {
		return nil, skip("cache miss")
	}
	return &PriceEstimate{Price: price, Source: SourceCache}, nil
}

func (p *Pipeline) attemptMarket(ctx context.Context, item ItemDescriptor) (*PriceEstimate, error) {
	if p.market == nil {
		return nil, skip("marketplace comparator not configured")
	}
	if !p.limiter.TryAcquire(1) {
		return nil, skip("rate limit exceeded")
	}
	if !p.gate.TryPass() {
		return nil, skip("minimum interval between marketplace calls not elapsed")
	}

	quote, err := p.market.Quote(ctx, marketQuery(item))
	if err != nil {
		return nil, fmt.Errorf("marketplace comparison failed: %w", err)
	}
	if quote == nil || quote.SampleSize == 0 || quote.Price <= 0 {
		return nil, skip("no usable marketplace comparables")
	}
	return &PriceEstimate{
		Price:      fmt.Sprintf("$%d", int(math.Round(quote.Price))),
		Source:     SourceEbay,
		SampleSize: quote.SampleSize,
		Confidence: quote.Confidence,
		MinPrice:   quote.MinPrice,
		MaxPrice:   quote.MaxPrice,
	}, nil
}

func (p *Pipeline) attemptLLM(ctx context.Context, item ItemDescriptor) (*PriceEstimate, error) {
	if p.estimator == nil {
		return nil, skip("no language model configured")
	}
	price, err := p.estimator.EstimatePrice(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("llm estimate failed: %w", err)
	}
	if price == "" {
		return nil, skip("llm output was not a usable price")
	}
	return &PriceEstimate{Price: price, Source: SourceOpenAI}, nil
}

func (p *Pipeline) attemptHeuristic(ctx context.Context, item ItemDescriptor) (*PriceEstimate, error) {
	text := heuristicText(item)
	return &PriceEstimate{Price: p.heuristic.GeneratePrice(text), Source: SourceAlgorithm}, nil
}

// marketQuery picks the search text for the marketplace: the item name when
// present, otherwise the leading words of the description.
func marketQuery(item ItemDescriptor) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	words := strings.Fields(item.Description)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

// heuristicText folds the optional fields into the classification text so
// condition and defect keywords participate in the multiplier chains.
func heuristicText(item ItemDescriptor) string {
	parts := []string{item.Name, item.Description, item.Condition, item.Issues}
	var nonEmpty []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, " ")
}
