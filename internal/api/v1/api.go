package apiv1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pong is the health check answer.
type Pong struct {
	Ping string `json:"ping"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CardBrand is the detected network of a partial card number.
type CardBrand struct {
	Brand     string `json:"brand"`
	Formatted string `json:"formatted"`
}

// GetQuoteParams are the calculator inputs of GET /quote. Absent values take
// the calculator defaults.
type GetQuoteParams struct {
	APICalls   *int    `json:"apiCalls,omitempty"`
	Resolution *string `json:"resolution,omitempty"`
	Languages  *int    `json:"languages,omitempty"`
	Support    *string `json:"support,omitempty"`
}

type GetCardBrandParams struct {
	Number string `json:"number"`
}

// ServerInterface is implemented by the v1 handlers.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (GET /plans)
	GetPlans(c *fiber.Ctx) error
	// (GET /quote)
	GetQuote(c *fiber.Ctx, params GetQuoteParams) error
	// (GET /card-brand)
	GetCardBrand(c *fiber.Ctx, params GetCardBrandParams) error
}

// ServerInterfaceWrapper binds query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (siw *ServerInterfaceWrapper) GetPing(c *fiber.Ctx) error {
	return siw.Handler.GetPing(c)
}

func (siw *ServerInterfaceWrapper) GetPlans(c *fiber.Ctx) error {
	return siw.Handler.GetPlans(c)
}

func (siw *ServerInterfaceWrapper) GetQuote(c *fiber.Ctx) error {
	var params GetQuoteParams

	if v := c.Query("apiCalls"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badParam(c, "apiCalls")
		}
		params.APICalls = &n
	}
	if v := c.Query("resolution"); v != "" {
		params.Resolution = &v
	}
	if v := c.Query("languages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badParam(c, "languages")
		}
		params.Languages = &n
	}
	if v := c.Query("support"); v != "" {
		params.Support = &v
	}

	return siw.Handler.GetQuote(c, params)
}

func (siw *ServerInterfaceWrapper) GetCardBrand(c *fiber.Ctx) error {
	params := GetCardBrandParams{Number: c.Query("number")}
	if params.Number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: "Query argument number is required"})
	}
	return siw.Handler.GetCardBrand(c, params)
}

func badParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Error{
		Error:   "bad_request",
		Message: "Invalid format for parameter " + name + ": expected an integer",
	})
}

// RegisterHandlers mounts the v1 operations on router.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.Get("/ping", wrapper.GetPing)
	router.Get("/plans", wrapper.GetPlans)
	router.Get("/quote", wrapper.GetQuote)
	router.Get("/card-brand", wrapper.GetCardBrand)
}
