package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lipsense/portal/internal/pkg/catalog"
	"github.com/lipsense/portal/internal/pkg/pricing"
)

// Query parameter names shared by the pricing page and checkout.
const (
	ParamPlan       = "plan"
	ParamName       = "name"
	ParamPrice      = "price"
	ParamInterval   = "interval"
	ParamAPICalls   = "apiCalls"
	ParamResolution = "resolution"
	ParamLanguages  = "languages"
	ParamSupport    = "support"
	ParamFeatures   = "features"

	featureSeparator = "|"
	maxPlanNameLen   = 80
)

type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

var (
	// ErrMissingHandoff means plan, name or price was absent.
	ErrMissingHandoff = errors.New("missing checkout parameters")
	// ErrMalformedHandoff means a parameter was present but unusable.
	ErrMalformedHandoff = errors.New("malformed checkout parameter")
	// ErrCustomPricing means the plan is sold through sales, not checkout.
	ErrCustomPricing = errors.New("plan requires custom pricing")
)

// MissingParamsError lists the required parameters that were absent.
type MissingParamsError struct {
	Params []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingHandoff, strings.Join(e.Params, ", "))
}

func (e *MissingParamsError) Is(target error) bool { return target == ErrMissingHandoff }

// ParamError reports one malformed parameter.
type ParamError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s %s=%q: %s", ErrMalformedHandoff, e.Param, e.Value, e.Reason)
}

func (e *ParamError) Is(target error) bool { return target == ErrMalformedHandoff }

// Handoff is the typed form of the pricing to checkout query string.
// Optional usage fields are nil or empty when the link did not carry them.
type Handoff struct {
	Plan       catalog.Slug
	Name       string
	Price      decimal.Decimal
	Interval   Interval
	APICalls   *int
	Resolution pricing.Resolution
	Languages  *int
	Support    pricing.Support
	Features   []string
}

// NewHandoff builds the link for a calculator quote.
func NewHandoff(plan catalog.Plan, interval Interval, price decimal.Decimal, u *pricing.UsageParameters) Handoff {
	h := Handoff{
		Plan:     plan.Slug,
		Name:     plan.Name,
		Price:    price,
		Interval: interval,
		Features: append([]string(nil), plan.Features...),
	}
	if u != nil {
		calls, langs := u.APICalls, u.Languages
		h.APICalls = &calls
		h.Languages = &langs
		h.Resolution = u.Resolution
		h.Support = u.Support
	}
	return h
}

// ParseHandoff validates the query. Missing required parameters are reported
// together; otherwise the first malformed parameter is returned.
func ParseHandoff(q url.Values) (Handoff, error) {
	get := func(k string) string { return strings.TrimSpace(q.Get(k)) }

	var missing []string
	for _, k := range []string{ParamPlan, ParamName, ParamPrice} {
		if get(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Handoff{}, &MissingParamsError{Params: missing}
	}

	var h Handoff

	plan, ok := catalog.Lookup(get(ParamPlan))
	if !ok {
		return Handoff{}, &ParamError{Param: ParamPlan, Value: get(ParamPlan), Reason: "unknown plan"}
	}
	if plan.CustomPricing {
		return Handoff{}, fmt.Errorf("%w: %s", ErrCustomPricing, plan.Slug)
	}
	h.Plan = plan.Slug

	h.Name = get(ParamName)
	if len(h.Name) > maxPlanNameLen {
		return Handoff{}, &ParamError{Param: ParamName, Value: h.Name[:maxPlanNameLen], Reason: "too long"}
	}

	price, err := decimal.NewFromString(get(ParamPrice))
	if err != nil {
		return Handoff{}, &ParamError{Param: ParamPrice, Value: get(ParamPrice), Reason: "not a number"}
	}
	if !price.IsPositive() {
		return Handoff{}, &ParamError{Param: ParamPrice, Value: get(ParamPrice), Reason: "must be greater than zero"}
	}
	h.Price = price

	switch Interval(strings.ToLower(get(ParamInterval))) {
	case "", IntervalMonthly:
		h.Interval = IntervalMonthly
	case IntervalYearly:
		h.Interval = IntervalYearly
	default:
		return Handoff{}, &ParamError{Param: ParamInterval, Value: get(ParamInterval), Reason: "must be monthly or yearly"}
	}

	if v := get(ParamAPICalls); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < pricing.MinAPICalls {
			return Handoff{}, &ParamError{Param: ParamAPICalls, Value: v, Reason: fmt.Sprintf("must be a whole number of at least %d", pricing.MinAPICalls)}
		}
		h.APICalls = &n
	}
	if v := get(ParamResolution); v != "" {
		r, err := pricing.ParseResolution(v)
		if err != nil {
			return Handoff{}, &ParamError{Param: ParamResolution, Value: v, Reason: "must be 720p, 1080p or 4K"}
		}
		h.Resolution = r
	}
	if v := get(ParamLanguages); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < pricing.MinLanguages || n > pricing.MaxLanguages {
			return Handoff{}, &ParamError{Param: ParamLanguages, Value: v, Reason: fmt.Sprintf("must be between %d and %d", pricing.MinLanguages, pricing.MaxLanguages)}
		}
		h.Languages = &n
	}
	if v := get(ParamSupport); v != "" {
		s, err := pricing.ParseSupport(v)
		if err != nil {
			return Handoff{}, &ParamError{Param: ParamSupport, Value: v, Reason: "must be basic, priority or enterprise"}
		}
		h.Support = s
	}

	h.Features = splitFeatures(q.Get(ParamFeatures))
	return h, nil
}

// Encode is the inverse of ParseHandoff.
func (h Handoff) Encode() url.Values {
	q := url.Values{}
	q.Set(ParamPlan, string(h.Plan))
	q.Set(ParamName, h.Name)
	q.Set(ParamPrice, h.Price.String())
	if h.Interval != "" {
		q.Set(ParamInterval, string(h.Interval))
	}
	if h.APICalls != nil {
		q.Set(ParamAPICalls, strconv.Itoa(*h.APICalls))
	}
	if h.Resolution != "" {
		q.Set(ParamResolution, string(h.Resolution))
	}
	if h.Languages != nil {
		q.Set(ParamLanguages, strconv.Itoa(*h.Languages))
	}
	if h.Support != "" {
		q.Set(ParamSupport, string(h.Support))
	}
	if len(h.Features) > 0 {
		q.Set(ParamFeatures, strings.Join(h.Features, featureSeparator))
	}
	return q
}

// URL returns the checkout link for the handoff.
func (h Handoff) URL(path string) string {
	return path + "?" + h.Encode().Encode()
}

func splitFeatures(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, featureSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
