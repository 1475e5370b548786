// Package pricing estimates a monthly price and recommends a plan from usage parameters.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/lipsense/portal/internal/pkg/catalog"
)

type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
	Resolution4K    Resolution = "4K"
)

type Support string

const (
	SupportBasic      Support = "basic"
	SupportPriority   Support = "priority"
	SupportEnterprise Support = "enterprise"
)

const (
	// BasicCallLimit is the highest call volume still served by the Basic tier.
	BasicCallLimit = 5000
	// ProCallLimit is the highest call volume still served by the Pro tier.
	ProCallLimit = 50000

	MinAPICalls  = 1000
	MinLanguages = 1
	MaxLanguages = 40
)

var (
	basicMonthly = decimal.NewFromInt(29)
	proBase      = decimal.NewFromInt(99)
	monthsInYear = decimal.NewFromInt(12)

	langCap  = decimal.RequireFromString("1.5")
	langStep = decimal.RequireFromString("0.1")
)

// UsageParameters are the calculator inputs chosen on the pricing page.
type UsageParameters struct {
	APICalls   int        `json:"api_calls" validate:"min=1000"`
	Resolution Resolution `json:"resolution" validate:"oneof=720p 1080p 4K"`
	Languages  int        `json:"languages" validate:"min=1,max=40"`
	Support    Support    `json:"support" validate:"oneof=basic priority enterprise"`
}

// DefaultUsage is what the calculator shows before the visitor moves a slider.
func DefaultUsage() UsageParameters {
	return UsageParameters{
		APICalls:   10000,
		Resolution: Resolution1080p,
		Languages:  5,
		Support:    SupportBasic,
	}
}

var validate = validator.New()

// ErrInvalidUsage wraps every usage validation failure.
var ErrInvalidUsage = errors.New("invalid usage parameters")

// Validate checks the documented ranges. Calculate itself never rejects input.
func (u UsageParameters) Validate() error {
	if err := validate.Struct(u); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %s=%s", ErrInvalidUsage, strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %v", ErrInvalidUsage, err)
	}
	return nil
}

// ParseResolution accepts the display spellings used in query strings.
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "720p":
		return Resolution720p, nil
	case "1080p":
		return Resolution1080p, nil
	case "4k", "2160p":
		return Resolution4K, nil
	default:
		return "", fmt.Errorf("%w: unknown resolution %q", ErrInvalidUsage, s)
	}
}

func ParseSupport(s string) (Support, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SupportBasic):
		return SupportBasic, nil
	case string(SupportPriority):
		return SupportPriority, nil
	case string(SupportEnterprise):
		return SupportEnterprise, nil
	default:
		return "", fmt.Errorf("%w: unknown support level %q", ErrInvalidUsage, s)
	}
}

// Multipliers are the factors applied to the Pro base price.
type Multipliers struct {
	Resolution decimal.Decimal `json:"resolution"`
	Language   decimal.Decimal `json:"language"`
	Support    decimal.Decimal `json:"support"`
}

// Quote is the calculator result. Custom quotes carry no price.
type Quote struct {
	Tier        catalog.Slug     `json:"tier"`
	Custom      bool             `json:"custom"`
	Monthly     *decimal.Decimal `json:"monthly,omitempty"`
	Yearly      *decimal.Decimal `json:"yearly,omitempty"`
	Multipliers *Multipliers     `json:"multipliers,omitempty"`
}

// Plan returns the catalog entry for the recommended tier.
func (q Quote) Plan() catalog.Plan {
	return catalog.MustLookup(q.Tier)
}

// Recommend maps a call volume to its tier.
func Recommend(apiCalls int) catalog.Slug {
	switch {
	case apiCalls <= BasicCallLimit:
		return catalog.SlugBasic
	case apiCalls <= ProCallLimit:
		return catalog.SlugPro
	default:
		return catalog.SlugEnterprise
	}
}

// Calculate is pure: equal inputs always produce equal quotes.
// Yearly is a flat twelve months, no annual discount.
func Calculate(u UsageParameters) Quote {
	tier := Recommend(u.APICalls)
	switch tier {
	case catalog.SlugBasic:
		return priced(tier, basicMonthly, nil)
	case catalog.SlugPro:
		m := Multipliers{
			Resolution: ResolutionMultiplier(u.Resolution),
			Language:   LanguageMultiplier(u.Languages),
			Support:    SupportMultiplier(u.Support),
		}
		monthly := proBase.Mul(m.Resolution).Mul(m.Language).Mul(m.Support).Round(0)
		return priced(tier, monthly, &m)
	default:
		return Quote{Tier: tier, Custom: true}
	}
}

func priced(tier catalog.Slug, monthly decimal.Decimal, m *Multipliers) Quote {
	yearly := monthly.Mul(monthsInYear)
	return Quote{Tier: tier, Monthly: &monthly, Yearly: &yearly, Multipliers: m}
}

func ResolutionMultiplier(r Resolution) decimal.Decimal {
	switch r {
	case Resolution4K:
		return decimal.RequireFromString("1.5")
	case Resolution1080p:
		return decimal.RequireFromString("1.2")
	default:
		return decimal.NewFromInt(1)
	}
}

// LanguageMultiplier is capped at 1.5 and has no lower bound.
func LanguageMultiplier(languages int) decimal.Decimal {
	m := decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(languages - 5)).Mul(langStep))
	return decimal.Min(langCap, m)
}

func SupportMultiplier(s Support) decimal.Decimal {
	switch s {
	case SupportEnterprise:
		return decimal.NewFromInt(2)
	case SupportPriority:
		return decimal.RequireFromString("1.3")
	default:
		return decimal.NewFromInt(1)
	}
}
