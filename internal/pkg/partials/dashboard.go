package partials

import (
	"fmt"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/catalog"
	"github.com/lipsense/portal/internal/pkg/dashboard"
	"github.com/lipsense/portal/internal/pkg/summary"
)

const dateLayout = "Jan 2, 2006"

// Dashboard section routes. Each one renders a single fragment.
const (
	SectionPlan     = "/dashboard/plan"
	SectionUsage    = "/dashboard/usage"
	SectionPayments = "/dashboard/payments"
	SectionResults  = "/dashboard/results"
)

// Loading is the placeholder that fetches a section once the page is shown.
func Loading(id, src string) templ.Component {
	return component(func(w *writer) {
		w.printf(`<section id="%s" class="dash-section" hx-get="%s" hx-trigger="load" hx-swap="outerHTML">`, e(id), e(src))
		w.printf(`<p class="dash-state dash-%s">Loading&hellip;</p></section>`, dashboard.StateLoading)
	})
}

// open writes the section header with its refresh control.
func open(w *writer, id, title, refresh string) {
	w.printf(`<section id="%s" class="dash-section">`, e(id))
	w.printf(`<header><h2>%s</h2>`, e(title))
	w.printf(`<button type="button" class="btn btn-link" hx-get="%s" hx-target="#%s" hx-swap="outerHTML">Refresh</button>`, e(refresh), e(id))
	w.printf(`</header>`)
}

// state renders the non-ready states. It reports whether the caller should stop.
func state(w *writer, s dashboard.State, message, emptyText string) bool {
	switch s {
	case dashboard.StateReady:
		return false
	case dashboard.StateEmpty:
		w.printf(`<p class="dash-state dash-empty">%s</p>`, e(emptyText))
	default:
		w.printf(`<p class="dash-state dash-%s">%s</p>`, e(string(s)), e(message))
	}
	return true
}

func PlanSection(v dashboard.View[backend.CurrentPlan], csrf string) templ.Component {
	return component(func(w *writer) {
		const id = "dashboard-plan"
		open(w, id, "Current plan", SectionPlan+"?refresh=1")
		defer w.printf(`</section>`)

		if state(w, v.State, v.Message, "You have no active subscription.") {
			w.printf(`<a class="btn btn-primary" href="/pricing">Choose a plan</a>`)
			return
		}
		p := v.Data
		status := "Active"
		if !p.IsActive {
			status = "Inactive"
		}
		w.printf(`<p class="plan-name"><strong>%s</strong> <span class="badge">%s</span></p>`, e(p.Name), status)
		w.printf(`<p class="plan-price">%s / month</p>`, e(summary.Money(p.PriceMonthly)))
		if p.APICallsLimit == catalog.Unlimited {
			w.printf(`<p>Unlimited API calls</p>`)
		} else {
			w.printf(`<p>%s API calls / month</p>`, e(summary.Count(p.APICallsLimit)))
		}
		if p.ExpiresAt != nil {
			w.printf(`<p>Renews %s</p>`, e(p.ExpiresAt.Format(dateLayout)))
		}
		if len(p.Features) > 0 {
			w.printf(`<ul class="plan-features">`)
			for _, f := range p.Features {
				w.printf(`<li>%s</li>`, e(f))
			}
			w.printf(`</ul>`)
		}
		if catalog.Rank(catalog.Slug(p.Slug)) < catalog.Rank(catalog.SlugEnterprise) {
			w.printf(`<a class="btn btn-primary" href="/pricing">Upgrade</a>`)
		}
		if p.IsActive {
			w.printf(`<form method="post" action="/dashboard/cancel" onsubmit="return confirm('Cancel your subscription?')">`)
			w.printf(`<input type="hidden" name="_csrf" value="%s">`, e(csrf))
			w.printf(`<button type="submit" class="btn btn-danger">Cancel subscription</button></form>`)
		}
	})
}

func UsageSection(v dashboard.View[backend.UsageStats]) templ.Component {
	return component(func(w *writer) {
		open(w, "dashboard-usage", "Usage", SectionUsage+"?refresh=1")
		defer w.printf(`</section>`)

		if v.State == dashboard.StateEmpty && v.Data != nil {
			w.printf(`<p class="dash-state dash-empty">No API calls yet this period. Limit: %s.</p>`, e(limitText(v.Data.APICallsLimit)))
			return
		}
		if state(w, v.State, v.Message, "No API calls yet this period.") {
			return
		}
		u := v.Data
		w.printf(`<p class="usage-total"><strong>%s</strong> of %s calls used</p>`, e(summary.Count(u.APICallsUsed)), e(limitText(u.APICallsLimit)))
		if u.APICallsLimit > 0 {
			pct := u.APICallsUsed * 100 / u.APICallsLimit
			w.printf(`<progress max="100" value="%d">%d%%</progress>`, min(pct, 100), pct)
		}
		if u.PeriodStart != nil && u.PeriodEnd != nil {
			w.printf(`<p class="usage-period">%s to %s</p>`, e(u.PeriodStart.Format(dateLayout)), e(u.PeriodEnd.Format(dateLayout)))
		}
		if len(u.Daily) > 0 {
			w.printf(`<table class="table"><thead><tr><th>Date</th><th>Lip reading</th><th>Gesture recognition</th></tr></thead><tbody>`)
			for _, d := range u.Daily {
				w.printf(`<tr><td>%s</td><td>%s</td><td>%s</td></tr>`, e(d.Date), e(summary.Count(d.LipReading)), e(summary.Count(d.Gesture)))
			}
			w.printf(`</tbody></table>`)
		}
	})
}

func PaymentsSection(p dashboard.Page[backend.Payment]) templ.Component {
	return component(func(w *writer) {
		const id = "dashboard-payments"
		open(w, id, "Billing history", pageURL(SectionPayments, p.Page, true))
		defer w.printf(`</section>`)

		if state(w, p.State, p.Message, "No payments on this page.") {
			pager(w, id, SectionPayments, p.Page, p.HasPrev(), false)
			return
		}
		w.printf(`<table class="table"><thead><tr><th>Date</th><th>Plan</th><th>Amount</th><th>Status</th><th>Transaction</th></tr></thead><tbody>`)
		for _, pay := range p.Items {
			w.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td><span class="status status-%s">%s</span></td><td><code>%s</code></td></tr>`,
				e(formatTime(pay.PaidAt)), e(pay.PlanName), e(amount(pay)), e(string(pay.Status)), e(string(pay.Status)), e(pay.TransactionID))
		}
		w.printf(`</tbody></table>`)
		pager(w, id, SectionPayments, p.Page, p.HasPrev(), p.HasNext())
	})
}

func ResultsSection(p dashboard.Page[dashboard.ResultRow]) templ.Component {
	return component(func(w *writer) {
		const id = "dashboard-results"
		open(w, id, "Results", pageURL(SectionResults, p.Page, true))
		defer w.printf(`</section>`)

		if state(w, p.State, p.Message, "No results yet. Jobs you run through the API show up here.") {
			pager(w, id, SectionResults, p.Page, p.HasPrev(), false)
			return
		}
		w.printf(`<table class="table"><thead><tr><th>Created</th><th>Job</th><th>Status</th><th>Transcript</th><th>Confidence</th><th></th></tr></thead><tbody>`)
		for _, r := range p.Items {
			w.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%.0f%%</td><td>`,
				e(r.CreatedAt.Format(dateLayout)), e(r.JobType), e(r.Status), e(r.Transcript), r.Confidence*100)
			if r.DownloadURL != "" {
				w.printf(`<a href="%s" rel="noopener">Download</a>`, e(r.DownloadURL))
			}
			w.printf(`</td></tr>`)
		}
		w.printf(`</tbody></table>`)
		pager(w, id, SectionResults, p.Page, p.HasPrev(), p.HasNext())
	})
}

func pager(w *writer, id, base string, page int, prev, next bool) {
	if !prev && !next {
		return
	}
	w.printf(`<nav class="pager">`)
	if prev {
		w.printf(`<button type="button" class="btn" hx-get="%s" hx-target="#%s" hx-swap="outerHTML">Previous</button>`, e(pageURL(base, page-1, false)), e(id))
	}
	w.printf(`<span>Page %d</span>`, page)
	if next {
		w.printf(`<button type="button" class="btn" hx-get="%s" hx-target="#%s" hx-swap="outerHTML">Next</button>`, e(pageURL(base, page+1, false)), e(id))
	}
	w.printf(`</nav>`)
}

func pageURL(base string, page int, refresh bool) string {
	u := base + "?page=" + strconv.Itoa(max(page, 1))
	if refresh {
		u += "&refresh=1"
	}
	return u
}

func limitText(limit int) string {
	if limit <= 0 {
		return "unlimited"
	}
	return summary.Count(limit)
}

func amount(p backend.Payment) string {
	if p.Currency == "" || p.Currency == "USD" {
		return summary.Money(p.Amount)
	}
	return fmt.Sprintf("%s %s", p.Amount.StringFixed(2), p.Currency)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}
