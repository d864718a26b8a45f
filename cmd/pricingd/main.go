package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bluberry-app/pricing/internal/config"
	"github.com/bluberry-app/pricing/internal/ebay"
	"github.com/bluberry-app/pricing/internal/llm"
	"github.com/bluberry-app/pricing/internal/pricing"
	"github.com/bluberry-app/pricing/internal/server"
	"github.com/bluberry-app/pricing/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("dbPath", cfg.DBPath).Msg("failed to open item store")
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("item store initialized")

	var comparator *ebay.Comparator
	if cfg.EbayClientID != "" && cfg.EbayClientSecret != "" {
		tokenURL := ebay.ProductionTokenURL
		baseURL := ebay.ProductionAPIBaseURL
		if cfg.EbaySandbox {
			tokenURL = ebay.SandboxTokenURL
			baseURL = ebay.SandboxAPIBaseURL
		}
		tokens := ebay.NewClientCredentialsProvider(cfg.EbayClientID, cfg.EbayClientSecret, tokenURL)
		comparator = ebay.NewComparator(ebay.NewClient(ebay.ClientOpts{
			BaseURL: baseURL,
			Tokens:  tokens,
		}))
		log.Info().Bool("sandbox", cfg.EbaySandbox).Msg("ebay marketplace comparator initialized")
	} else {
		log.Info().Msg("ebay credentials not set, marketplace comparison disabled")
	}

	var estimator pricing.Estimator
	switch {
	case cfg.OpenAIAPIKey != "":
		estimator = llm.NewOpenAIEstimator(llm.OpenAIOpts{APIKey: cfg.OpenAIAPIKey})
		log.Info().Msg("openai price estimator initialized")
	case cfg.GeminiAPIKey != "":
		gemini, err := llm.NewGeminiEstimator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize gemini estimator")
		}
		estimator = gemini
		log.Info().Msg("gemini price estimator initialized")
	default:
		log.Info().Msg("no llm key set, llm price estimates disabled")
	}

	limiter := pricing.NewTokenBucket(cfg.RateLimitCapacity, cfg.RateLimitInterval)
	gate := pricing.NewIntervalGate(cfg.EbayMinInterval)

	var market pricing.MarketComparator
	if comparator != nil {
		market = comparator
	}
	pipeline := pricing.NewPipeline(pricing.PipelineOpts{
		Cache:     pricing.NewCache(cfg.CacheTTL),
		Limiter:   limiter,
		Gate:      gate,
		Market:    market,
		Estimator: estimator,
		Heuristic: pricing.NewHeuristic(nil),
	})

	srv := server.New(server.Opts{
		Pipeline:   pipeline,
		Comparator: comparator,
		Store:      store,
		Limiter:    limiter,
		Gate:       gate,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("listening")
		return srv.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}
