// Package catalog holds the static subscription plans offered on the pricing page.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Slug string

const (
	SlugBasic      Slug = "basic"
	SlugPro        Slug = "pro"
	SlugEnterprise Slug = "enterprise"
)

// Unlimited marks a plan without a call quota.
const Unlimited = -1

// Plan is an immutable subscription tier.
type Plan struct {
	Slug          Slug            `json:"slug"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PriceMonthly  decimal.Decimal `json:"price_monthly"`
	PriceYearly   decimal.Decimal `json:"price_yearly"`
	Features      []string        `json:"features"`
	APICallsLimit int             `json:"api_calls_limit"`
	Popular       bool            `json:"popular"`
	// CustomPricing plans are sold through the sales team, never through checkout.
	CustomPricing bool `json:"custom_pricing"`
}

var plans = []Plan{
	{
		Slug:         SlugBasic,
		Name:         "Basic",
		Description:  "For prototypes and small projects.",
		PriceMonthly: decimal.NewFromInt(29),
		PriceYearly:  decimal.NewFromInt(290),
		Features: []string{
			"5,000 API calls per month",
			"Lip reading up to 720p",
			"5 languages",
			"Email support",
		},
		APICallsLimit: 5000,
	},
	{
		Slug:         SlugPro,
		Name:         "Pro",
		Description:  "For production workloads.",
		PriceMonthly: decimal.NewFromInt(99),
		PriceYearly:  decimal.NewFromInt(990),
		Features: []string{
			"50,000 API calls per month",
			"Lip reading and gesture recognition up to 4K",
			"Up to 40 languages",
			"Priority support",
			"Usage analytics",
		},
		APICallsLimit: 50000,
		Popular:       true,
	},
	{
		Slug:        SlugEnterprise,
		Name:        "Enterprise",
		Description: "Dedicated capacity and custom contracts.",
		Features: []string{
			"Unlimited API calls",
			"On-premise deployment",
			"Custom model training",
			"Dedicated support engineer",
			"99.9% SLA",
		},
		APICallsLimit: Unlimited,
		CustomPricing: true,
	},
}

// All returns the plans in display order. The slice is a copy.
func All() []Plan {
	out := make([]Plan, len(plans))
	for i, p := range plans {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}

// Lookup finds a plan by slug. Matching is case-insensitive.
func Lookup(slug string) (Plan, bool) {
	s := Slug(strings.ToLower(strings.TrimSpace(slug)))
	for _, p := range plans {
		if p.Slug == s {
			p.Features = append([]string(nil), p.Features...)
			return p, true
		}
	}
	return Plan{}, false
}

// MustLookup is for the built-in slugs only.
func MustLookup(slug Slug) Plan {
	p, ok := Lookup(string(slug))
	if !ok {
		panic("catalog: unknown built-in plan " + string(slug))
	}
	return p
}

// Rank orders plans from cheapest to most capable. Unknown slugs rank lowest.
func Rank(slug Slug) int {
	switch slug {
	case SlugEnterprise:
		return 2
	case SlugPro:
		return 1
	default:
		return 0
	}
}
