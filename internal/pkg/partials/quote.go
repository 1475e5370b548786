package partials

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/lipsense/portal/internal/pkg/checkout"
	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/pricing"
	"github.com/lipsense/portal/internal/pkg/summary"
)

const (
	CheckoutPath     = constants.CheckoutRoute
	ContactSalesPath = constants.ContactSalesRoute
)

// QuoteCard shows the calculator estimate and the next step for it.
func QuoteCard(q pricing.Quote, u pricing.UsageParameters, interval checkout.Interval) templ.Component {
	return component(func(w *writer) {
		plan := q.Plan()
		w.printf(`<div id="quote" class="quote-card quote-%s">`, e(string(q.Tier)))
		w.printf(`<p class="quote-plan">Recommended: <strong>%s</strong></p>`, e(plan.Name))

		if q.Custom {
			w.printf(`<p class="quote-price">Custom pricing</p>`)
			w.printf(`<a class="btn btn-primary" href="%s">Contact sales</a>`, e(ContactSalesURL(u)))
			w.printf(`</div>`)
			return
		}

		price, unit := q.Monthly, "month"
		if interval == checkout.IntervalYearly {
			price, unit = q.Yearly, "year"
		}
		w.printf(`<p class="quote-price">%s <span>/ %s</span></p>`, e(summary.Money(*price)), unit)

		if m := q.Multipliers; m != nil {
			w.printf(`<ul class="quote-factors">`)
			w.printf(`<li>Resolution &times;%s</li>`, e(m.Resolution.String()))
			w.printf(`<li>Languages &times;%s</li>`, e(m.Language.String()))
			w.printf(`<li>Support &times;%s</li>`, e(m.Support.String()))
			w.printf(`</ul>`)
		}

		h := checkout.NewHandoff(plan, interval, *price, &u)
		w.printf(`<a class="btn btn-primary" href="%s">Continue to checkout</a>`, e(h.URL(CheckoutPath)))
		w.printf(`</div>`)
	})
}

// QuoteError replaces the estimate while the inputs are out of range.
func QuoteError(message string) templ.Component {
	return component(func(w *writer) {
		w.printf(`<div id="quote" class="quote-card quote-invalid"><p class="error">%s</p></div>`, e(message))
	})
}

// ContactSalesURL carries the calculator inputs over to the sales form.
func ContactSalesURL(u pricing.UsageParameters) string {
	q := url.Values{}
	q.Set(checkout.ParamAPICalls, strconv.Itoa(u.APICalls))
	q.Set(checkout.ParamResolution, string(u.Resolution))
	q.Set(checkout.ParamLanguages, strconv.Itoa(u.Languages))
	q.Set(checkout.ParamSupport, string(u.Support))
	return ContactSalesPath + "?" + q.Encode()
}
