package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lipsense/portal/internal/pkg/catalog"
	"github.com/lipsense/portal/internal/pkg/checkout"
	"github.com/lipsense/portal/internal/pkg/metrics"
	"github.com/lipsense/portal/internal/pkg/pricing"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// GetPlans lists the catalog in display order.
func (s *APIServer) GetPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": catalog.All()})
}

// GetQuote runs the usage calculator. Out-of-range inputs are a 400; the
// calculator itself never rejects input.
func (s *APIServer) GetQuote(c *fiber.Ctx, params GetQuoteParams) error {
	u := pricing.DefaultUsage()
	if params.APICalls != nil {
		u.APICalls = *params.APICalls
	}
	if params.Languages != nil {
		u.Languages = *params.Languages
	}
	if params.Resolution != nil {
		r, err := pricing.ParseResolution(*params.Resolution)
		if err != nil {
			return invalidUsage(c, err)
		}
		u.Resolution = r
	}
	if params.Support != nil {
		sup, err := pricing.ParseSupport(*params.Support)
		if err != nil {
			return invalidUsage(c, err)
		}
		u.Support = sup
	}
	if err := u.Validate(); err != nil {
		return invalidUsage(c, err)
	}

	q := pricing.Calculate(u)
	metrics.QuotesTotal.WithLabelValues(string(q.Tier)).Inc()
	return c.JSON(fiber.Map{"usage": u, "quote": q})
}

// GetCardBrand detects the card network for live form feedback.
func (s *APIServer) GetCardBrand(c *fiber.Ctx, params GetCardBrandParams) error {
	return c.JSON(CardBrand{
		Brand:     string(checkout.CardBrand(params.Number)),
		Formatted: checkout.FormatCardNumber(params.Number),
	})
}

func invalidUsage(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "invalid_usage", Message: err.Error()})
}
