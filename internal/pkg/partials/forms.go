package partials

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/lipsense/portal/internal/pkg/checkout"
)

// CardBrandBadge is swapped next to the card number input as the visitor types.
func CardBrandBadge(brand checkout.Brand) templ.Component {
	return component(func(w *writer) {
		if brand == "" {
			w.printf(`<span id="card-brand" class="card-brand"></span>`)
			return
		}
		class := strings.ReplaceAll(strings.ToLower(string(brand)), " ", "-")
		w.printf(`<span id="card-brand" class="card-brand card-brand-%s">%s</span>`, e(class), e(string(brand)))
	})
}

// NewsletterResult replaces the footer signup form. The backend message is shown as is.
func NewsletterResult(ok bool, message string) templ.Component {
	return component(func(w *writer) {
		class := "newsletter-error"
		if ok {
			class = "newsletter-success"
		}
		w.printf(`<div id="newsletter" class="%s" role="status">%s</div>`, class, e(message))
	})
}
