// Package summary turns a chosen plan into the order summary shown beside the
// checkout form and on the confirmation page.
package summary

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lipsense/portal/internal/pkg/checkout"
)

type LineItem struct {
	Label  string
	Detail string
	Amount decimal.Decimal
}

func (l LineItem) Display() string { return Money(l.Amount) }

type Summary struct {
	PlanName string
	Interval checkout.Interval
	Items    []LineItem
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Features []string
	Usage    []string
}

// Build derives the summary from a parsed handoff. Tax is always zero.
func Build(h checkout.Handoff) Summary {
	price := h.Price.Round(2)
	s := Summary{
		PlanName: h.Name,
		Interval: h.Interval,
		Items: []LineItem{{
			Label:  fmt.Sprintf("%s plan", h.Name),
			Detail: intervalLabel(h.Interval),
			Amount: price,
		}},
		Subtotal: price,
		Tax:      decimal.Zero,
		Total:    price,
		Features: h.Features,
	}

	if h.APICalls != nil {
		s.Usage = append(s.Usage, fmt.Sprintf("%s API calls / month", Count(*h.APICalls)))
	}
	if h.Resolution != "" {
		s.Usage = append(s.Usage, fmt.Sprintf("%s video", h.Resolution))
	}
	if h.Languages != nil {
		unit := "languages"
		if *h.Languages == 1 {
			unit = "language"
		}
		s.Usage = append(s.Usage, fmt.Sprintf("%d %s", *h.Languages, unit))
	}
	if h.Support != "" {
		s.Usage = append(s.Usage, fmt.Sprintf("%s support", capitalize(string(h.Support))))
	}
	return s
}

func (s Summary) TaxDisplay() string   { return Money(s.Tax) }
func (s Summary) TotalDisplay() string { return Money(s.Total) }

// PerInterval renders e.g. "$154.00 / month".
func (s Summary) PerInterval() string {
	unit := "month"
	if s.Interval == checkout.IntervalYearly {
		unit = "year"
	}
	return fmt.Sprintf("%s / %s", Money(s.Total), unit)
}

// Money formats an amount as US dollars with thousands separators, e.g. "$1,234.00".
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + group(whole) + "." + frac
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	if n < 0 {
		return "-" + group(fmt.Sprint(-n))
	}
	return group(fmt.Sprint(n))
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func intervalLabel(i checkout.Interval) string {
	if i == checkout.IntervalYearly {
		return "Billed yearly"
	}
	return "Billed monthly"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
