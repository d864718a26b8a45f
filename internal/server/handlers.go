package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bluberry-app/pricing/internal/ebay"
	"github.com/bluberry-app/pricing/internal/pricing"
	"github.com/bluberry-app/pricing/internal/storage"
)

type priceItemRequest struct {
	Description string `json:"description"`
	Name        string `json:"name"`
	Condition   string `json:"condition"`
	Issues      string `json:"issues"`
	ItemID      string `json:"itemId"`
}

type priceItemResponse struct {
	Price     string         `json:"price"`
	Source    pricing.Source `json:"source"`
	ItemCount int            `json:"itemCount,omitempty"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handlePriceItem runs the pricing pipeline. Pricing failures never
// surface as a 5xx: the pipeline degrades internally and this handler only
// rejects missing input.
func (s *Server) handlePriceItem(c *fiber.Ctx) error {
	var req priceItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	estimate, err := s.pipeline.Price(c.Context(), pricing.ItemDescriptor{
		Name:        req.Name,
		Description: req.Description,
		Condition:   req.Condition,
		Issues:      req.Issues,
	})
	if errors.Is(err, pricing.ErrMissingDescription) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Description is required"})
	}
	if err != nil {
		// Unreachable today: invalid input is the pipeline's only error.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.ItemID != "" && s.store != nil {
		if err := s.store.SetItemPrice(c.Context(), req.ItemID, estimate.Price, string(estimate.Source)); err != nil {
			// The price still goes back to the caller; only the write-back failed.
			log.Warn().Err(err).Str("itemId", req.ItemID).Msg("failed to persist price against item")
		}
	}

	return c.JSON(priceItemResponse{
		Price:     estimate.Price,
		Source:    estimate.Source,
		ItemCount: estimate.SampleSize,
	})
}

// handlePriceEstimate serves the marketplace-comparison variant: the full
// statistics payload rather than a single resolved price.
func (s *Server) handlePriceEstimate(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}
	if s.comparator == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Marketplace comparison is not configured"})
	}
	if !s.limiter.TryAcquire(1) || !s.gate.TryPass() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Rate limit exceeded, try again later"})
	}

	comparison := s.comparator.Compare(c.Context(), title, ebay.SearchOptions{
		IncludeShipping: c.QueryBool("includeShipping", false),
	})
	return c.JSON(comparison)
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
	Issues      string `json:"issues"`
}

func (s *Server) handleCreateItem(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Item storage is not configured"})
	}

	var req createItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Description is required"})
	}

	item := &storage.Item{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Condition:   req.Condition,
		Issues:      req.Issues,
	}
	if err := s.store.CreateItem(c.Context(), item); err != nil {
		log.Error().Err(err).Msg("failed to create item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create item"})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) handleGetItem(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Item storage is not configured"})
	}

	item, err := s.store.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		log.Error().Err(err).Str("itemId", c.Params("id")).Msg("failed to load item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load item"})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	}
	return c.JSON(item)
}
