package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/env"
	"github.com/lipsense/portal/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App, c handlers) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", csrf.New(csrfConf))
	group.Get("/", c.pages.HandleStart)
	group.Get("/features", c.pages.HandleFeatures)
	group.Get(constants.PricingRoute, c.pricing.HandlePricing)

	// Checkout is open to visitors; the backend decides whether a session is required.
	group.Get(constants.CheckoutRoute, c.checkout.HandleCheckout)
	group.Post(constants.CheckoutRoute, c.checkout.HandleCheckoutSubmit)

	// Auth
	group.Get(constants.SignInRoute, c.auth.HandleSignIn)
	group.Get("/auth/complete", c.auth.HandleAuthComplete)
	group.Post("/logout", middleware.RequireAuth, c.auth.HandleAuthLogout)

	// Dashboard
	group.Get(constants.DashboardRoute, middleware.RequireAuth, c.dashboard.HandleDashboard)
	group.Get("/dashboard/plan", middleware.RequireAuth, c.dashboard.HandlePlan)
	group.Get("/dashboard/usage", middleware.RequireAuth, c.dashboard.HandleUsage)
	group.Get("/dashboard/payments", middleware.RequireAuth, c.dashboard.HandlePayments)
	group.Get("/dashboard/results", middleware.RequireAuth, c.dashboard.HandleResults)
	group.Post("/dashboard/cancel", middleware.RequireAuth, c.dashboard.HandleCancel)

	// Footer newsletter and enterprise enquiries
	group.Post("/newsletter", c.newsletter.HandleNewsletterSubscribe)
	group.Get(constants.ContactSalesRoute, c.contact.HandleContactSales)
	group.Post(constants.ContactSalesRoute, c.contact.HandleContactSalesSubmit)

	// CMS pages and blog
	group.Get("/page/:slug", c.pages.HandlePageDisplay)
	group.Get(constants.BlogRoute, c.pages.HandleBlogIndex)
	group.Get("/blog/:slug", c.pages.HandleBlogShow)
}
