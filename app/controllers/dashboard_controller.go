package controllers

import (
	"errors"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/cache"
	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/dashboard"
	"github.com/lipsense/portal/internal/pkg/middleware"
	"github.com/lipsense/portal/internal/pkg/partials"
	"github.com/lipsense/portal/internal/pkg/session"
	"github.com/lipsense/portal/internal/pkg/usercontext"
)

const CheckoutSuccessMessage = "Thank you! Your subscription is now active."

// DashboardController serves the account pages. Every section is a separate
// fragment so one failing backend read never blanks the others.
type DashboardController struct {
	api      *backend.Client
	store    cache.Store
	linker   dashboard.Linker
	sessions *session.Store
}

// NewDashboardController wires the readers. store and linker may be nil.
func NewDashboardController(api *backend.Client, store cache.Store, linker dashboard.Linker, sessions *session.Store) *DashboardController {
	return &DashboardController{api: api, store: store, linker: linker, sessions: sessions}
}

func (dc *DashboardController) reader(c *fiber.Ctx) *dashboard.Reader {
	return dashboard.NewReader(dc.api.WithToken(usercontext.AccessToken(c)), dc.store, dc.linker, usercontext.Scope(c))
}

// HandleDashboard renders the page shell. Sections load themselves over htmx.
func (dc *DashboardController) HandleDashboard(c *fiber.Ctx) error {
	sections := map[string]templ.Component{
		"Plan":     partials.Loading("dashboard-plan", partials.SectionPlan),
		"Usage":    partials.Loading("dashboard-usage", partials.SectionUsage),
		"Payments": partials.Loading("dashboard-payments", partials.SectionPayments),
		"Results":  partials.Loading("dashboard-results", partials.SectionResults),
	}
	data := fiber.Map{}
	for name, comp := range sections {
		html, err := componentHTML(c, comp)
		if err != nil {
			return err
		}
		data[name] = html
	}
	if c.Query("checkout") == "success" {
		data["Notice"] = CheckoutSuccessMessage
	}
	return renderPage(c, "dashboard", "Dashboard", nil, data)
}

func (dc *DashboardController) HandlePlan(c *fiber.Ctx) error {
	v := dc.reader(c).CurrentPlan(c.UserContext(), refresh(c))
	return dc.section(c, v.Unauthorized, partials.PlanSection(v, csrfToken(c)))
}

func (dc *DashboardController) HandleUsage(c *fiber.Ctx) error {
	v := dc.reader(c).Usage(c.UserContext(), refresh(c))
	return dc.section(c, v.Unauthorized, partials.UsageSection(v))
}

func (dc *DashboardController) HandlePayments(c *fiber.Ctx) error {
	p := dc.reader(c).Payments(c.UserContext(), c.QueryInt("page", 1), refresh(c))
	return dc.section(c, p.Unauthorized, partials.PaymentsSection(p))
}

func (dc *DashboardController) HandleResults(c *fiber.Ctx) error {
	p := dc.reader(c).Results(c.UserContext(), c.QueryInt("page", 1), refresh(c))
	return dc.section(c, p.Unauthorized, partials.ResultsSection(p))
}

// HandleCancel cancels the active subscription and returns to the dashboard.
func (dc *DashboardController) HandleCancel(c *fiber.Ctx) error {
	resp, err := dc.api.WithToken(usercontext.AccessToken(c)).CancelSubscription(c.UserContext())
	if err != nil || !resp.OK() {
		log.Warnf("[Dashboard] cancel failed for %s: %v", usercontext.Scope(c), err)
		msg := "We could not cancel your subscription. Please try again."
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return flashError(c, msg, constants.DashboardRoute)
	}

	dc.reader(c).Invalidate(c.UserContext())
	msg := "Your subscription has been cancelled."
	if resp.Message != "" {
		msg = resp.Message
	}
	return flashSuccess(c, msg, constants.DashboardRoute)
}

// section writes a fragment, or ends the session when the backend rejected its token.
func (dc *DashboardController) section(c *fiber.Ctx, unauthorized bool, comp templ.Component) error {
	if unauthorized {
		if dc.sessions != nil {
			if err := dc.sessions.Logout(c); err != nil {
				log.Warnf("[Dashboard] logout after expired token failed: %v", err)
			}
		}
		c.Set("HX-Redirect", middleware.SignInRoute)
		return renderComponent(c, comp, fiber.StatusUnauthorized)
	}
	return renderComponent(c, comp)
}

func refresh(c *fiber.Ctx) bool {
	return c.Query("refresh") == "1"
}
