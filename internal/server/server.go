// Package server exposes the pricing pipeline over HTTP.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/bluberry-app/pricing/internal/ebay"
	"github.com/bluberry-app/pricing/internal/pricing"
	"github.com/bluberry-app/pricing/internal/storage"
)

// Server wires the HTTP surface over the pipeline, the marketplace
// comparator and the item store. Comparator and Store may be nil when not
// configured; the affected endpoints then degrade or report unavailability.
type Server struct {
	app        *fiber.App
	pipeline   *pricing.Pipeline
	comparator *ebay.Comparator
	store      *storage.Store
	limiter    *pricing.TokenBucket
	gate       *pricing.IntervalGate
}

// Opts carries the server's collaborators. Limiter and Gate are the same
// instances the pipeline uses, so marketplace quota is shared across both
// endpoints.
type Opts struct {
	Pipeline   *pricing.Pipeline
	Comparator *ebay.Comparator
	Store      *storage.Store
	Limiter    *pricing.TokenBucket
	Gate       *pricing.IntervalGate
}

// New builds the fiber app and its routes.
func New(opts Opts) *Server {
	s := &Server{
		pipeline:   opts.Pipeline,
		comparator: opts.Comparator,
		store:      opts.Store,
		limiter:    opts.Limiter,
		gate:       opts.Gate,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/healthz", s.handleHealth)
	app.Post("/price-item", s.handlePriceItem)
	app.Get("/price-estimate", s.handlePriceEstimate)

	api := app.Group("/api")
	api.Post("/items", s.handleCreateItem)
	api.Get("/items/:id", s.handleGetItem)

	s.app = app
	return s
}

// App returns the underlying fiber app, used by tests via app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
