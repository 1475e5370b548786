package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lipsense/portal/internal/pkg/catalog"
	"github.com/lipsense/portal/internal/pkg/checkout"
	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/metrics"
	"github.com/lipsense/portal/internal/pkg/partials"
	"github.com/lipsense/portal/internal/pkg/pricing"
	"github.com/lipsense/portal/internal/pkg/summary"
	"github.com/lipsense/portal/internal/pkg/viewmodel"
)

// PricingController serves the plan table and the usage calculator.
type PricingController struct{}

func NewPricingController() *PricingController {
	return &PricingController{}
}

// planCard is a catalog plan with its checkout link resolved.
type planCard struct {
	catalog.Plan
	MonthlyDisplay string
	YearlyDisplay  string
	MonthlyURL     string
	YearlyURL      string
	ContactURL     string
}

func planCards() []planCard {
	var cards []planCard
	for _, p := range catalog.All() {
		card := planCard{Plan: p}
		if p.CustomPricing {
			card.ContactURL = partials.ContactSalesPath
		} else {
			card.MonthlyDisplay = summary.Money(p.PriceMonthly)
			card.YearlyDisplay = summary.Money(p.PriceYearly)
			card.MonthlyURL = checkout.NewHandoff(p, checkout.IntervalMonthly, p.PriceMonthly, nil).URL(partials.CheckoutPath)
			card.YearlyURL = checkout.NewHandoff(p, checkout.IntervalYearly, p.PriceYearly, nil).URL(partials.CheckoutPath)
		}
		cards = append(cards, card)
	}
	return cards
}

// HandlePricing renders the plan table with the calculator preset to the query or defaults.
// A malformed preset replaces the estimate with the validation message.
func (pc *PricingController) HandlePricing(c *fiber.Ctx) error {
	u, interval, presetErr := usageFromQuery(c)

	card := partials.QuoteCard(pricing.Calculate(u), u, interval)
	if presetErr != nil {
		card = partials.QuoteError(quoteErrorMessage(presetErr))
	}
	quote, err := componentHTML(c, card)
	if err != nil {
		return err
	}

	og := &viewmodel.OpenGraph{
		Title:       "Pricing - " + viewmodel.SiteName,
		Description: "Lip reading and gesture recognition APIs from $29 a month.",
		URL:         constants.PricingRoute,
	}
	return renderPage(c, "pricing", "Pricing", og, fiber.Map{
		"Plans":        planCards(),
		"Usage":        u,
		"Interval":     string(interval),
		"Quote":        quote,
		"Resolutions":  []pricing.Resolution{pricing.Resolution720p, pricing.Resolution1080p, pricing.Resolution4K},
		"SupportTiers": []pricing.Support{pricing.SupportBasic, pricing.SupportPriority, pricing.SupportEnterprise},
		"MinAPICalls":  pricing.MinAPICalls,
		"MaxLanguages": pricing.MaxLanguages,
	})
}

// HandleQuote re-renders the estimate as the calculator inputs change.
func (pc *PricingController) HandleQuote(c *fiber.Ctx) error {
	u, interval, err := usageFromQuery(c)
	if err != nil {
		return renderComponent(c, partials.QuoteError(quoteErrorMessage(err)))
	}
	q := pricing.Calculate(u)
	metrics.QuotesTotal.WithLabelValues(string(q.Tier)).Inc()
	return renderComponent(c, partials.QuoteCard(q, u, interval))
}

// usageFromQuery reads the calculator inputs. Absent values take the defaults,
// present but malformed values are an error.
func usageFromQuery(c *fiber.Ctx) (pricing.UsageParameters, checkout.Interval, error) {
	u := pricing.DefaultUsage()
	interval := checkout.IntervalMonthly

	if v := strings.TrimSpace(c.Query(checkout.ParamAPICalls)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return u, interval, &checkout.ParamError{Param: checkout.ParamAPICalls, Value: v, Reason: "not a whole number"}
		}
		u.APICalls = n
	}
	if v := strings.TrimSpace(c.Query(checkout.ParamLanguages)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return u, interval, &checkout.ParamError{Param: checkout.ParamLanguages, Value: v, Reason: "not a whole number"}
		}
		u.Languages = n
	}
	if v := c.Query(checkout.ParamResolution); v != "" {
		r, err := pricing.ParseResolution(v)
		if err != nil {
			return u, interval, err
		}
		u.Resolution = r
	}
	if v := c.Query(checkout.ParamSupport); v != "" {
		s, err := pricing.ParseSupport(v)
		if err != nil {
			return u, interval, err
		}
		u.Support = s
	}
	switch checkout.Interval(strings.ToLower(c.Query(checkout.ParamInterval))) {
	case "", checkout.IntervalMonthly:
	case checkout.IntervalYearly:
		interval = checkout.IntervalYearly
	default:
		return u, interval, &checkout.ParamError{Param: checkout.ParamInterval, Value: c.Query(checkout.ParamInterval), Reason: "must be monthly or yearly"}
	}

	if err := u.Validate(); err != nil {
		return u, interval, err
	}
	return u, interval, nil
}

func quoteErrorMessage(err error) string {
	var pe *checkout.ParamError
	if errors.As(err, &pe) {
		return "Invalid " + pe.Param + ": " + pe.Reason + "."
	}
	switch {
	case strings.Contains(err.Error(), "apicalls"):
		return "API calls must be at least " + strconv.Itoa(pricing.MinAPICalls) + " per month."
	case strings.Contains(err.Error(), "languages"):
		return "Languages must be between " + strconv.Itoa(pricing.MinLanguages) + " and " + strconv.Itoa(pricing.MaxLanguages) + "."
	}
	return "Those usage parameters are out of range."
}
