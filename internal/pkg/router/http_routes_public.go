package router

import (
	"github.com/gofiber/fiber/v2"
)

// registerPublicRoutes mounts the htmx fragments that never carry a form token.
func (h HttpRouter) registerPublicRoutes(app *fiber.App, c handlers) {
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	// Calculator and card field feedback
	app.Get("/pricing/quote", c.pricing.HandleQuote)
	app.Get("/checkout/card-brand", c.checkout.HandleCardBrand)
}
