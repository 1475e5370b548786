package controllers

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/cache"
	"github.com/lipsense/portal/internal/pkg/checkout"
	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/dashboard"
	"github.com/lipsense/portal/internal/pkg/partials"
	"github.com/lipsense/portal/internal/pkg/session"
	"github.com/lipsense/portal/internal/pkg/summary"
	"github.com/lipsense/portal/internal/pkg/usercontext"
)

const (
	checkoutLockPrefix = "checkout:lock:"
	checkoutKeyPrefix  = "checkout:key:"
	idempotencyField   = "idempotency_key"

	// checkoutLockTTL outlives the backend timeout so a slow call keeps its lock.
	checkoutLockTTL = 45 * time.Second

	LockedMessage = "A payment for this session is already being processed."
)

// CheckoutController runs the payment form for a plan handed over from pricing.
type CheckoutController struct {
	api      *backend.Client
	locks    cache.Store
	sessions *session.Store
}

func NewCheckoutController(api *backend.Client, locks cache.Store, sessions *session.Store) *CheckoutController {
	return &CheckoutController{api: api, locks: locks, sessions: sessions}
}

// HandleCheckout renders the empty form, or sends the visitor back when the link is unusable.
// The session is started here so the submit lock sees the same id on every POST.
func (cc *CheckoutController) HandleCheckout(c *fiber.Ctx) error {
	h, ok, err := cc.handoff(c)
	if !ok {
		return err
	}
	if cc.sessions != nil {
		if _, err := cc.sessions.ID(c); err != nil {
			log.Warnf("[Checkout] could not start session: %v", err)
		}
	}
	return cc.renderForm(c, fiber.StatusOK, checkout.NewForm(h))
}

// HandleCheckoutSubmit validates the card and creates the subscription.
func (cc *CheckoutController) HandleCheckoutSubmit(c *fiber.Ctx) error {
	h, ok, err := cc.handoff(c)
	if !ok {
		return err
	}
	form := checkout.NewForm(h)
	if key, err := uuid.Parse(c.FormValue(idempotencyField)); err == nil {
		form.IdempotencyKey = key.String()
	}
	in := instrumentFromForm(c)

	if release, locked := cc.lock(c, form.Key()); locked {
		defer release()
	} else {
		form.Values = in
		form.Message = LockedMessage
		return cc.renderForm(c, fiber.StatusConflict, form)
	}

	client := cc.api.WithToken(usercontext.AccessToken(c))
	err = form.Submit(c.UserContext(), client, in)
	switch {
	case err == nil:
		return cc.renderSuccess(c, form)
	case errors.Is(err, checkout.ErrValidation):
		return cc.renderForm(c, fiber.StatusUnprocessableEntity, form)
	default:
		return cc.renderForm(c, fiber.StatusOK, form)
	}
}

// HandleCardBrand returns the brand badge for the digits typed so far.
func (cc *CheckoutController) HandleCardBrand(c *fiber.Ctx) error {
	return renderComponent(c, partials.CardBrandBadge(checkout.CardBrand(c.Query("card_number"))))
}

// handoff parses the pricing link. When it is unusable the redirect has
// already been written and ok is false.
func (cc *CheckoutController) handoff(c *fiber.Ctx) (checkout.Handoff, bool, error) {
	h, err := checkout.ParseHandoff(queryValues(c))
	if err == nil {
		return h, true, nil
	}

	var missing *checkout.MissingParamsError
	var malformed *checkout.ParamError
	switch {
	case errors.Is(err, checkout.ErrCustomPricing):
		return h, false, c.Redirect(contactSalesRedirect(queryValues(c)), fiber.StatusSeeOther)
	case errors.As(err, &missing):
		log.Infof("[Checkout] missing handoff parameters: %s", strings.Join(missing.Params, ", "))
		return h, false, flashError(c, "Please choose a plan first. Missing: "+strings.Join(missing.Params, ", ")+".", constants.PricingRoute)
	case errors.As(err, &malformed):
		log.Warnf("[Checkout] malformed handoff: %v", err)
		return h, false, flashError(c, "This checkout link is invalid: "+malformed.Param+" "+malformed.Reason+".", constants.PricingRoute)
	default:
		return h, false, flashError(c, "This checkout link is invalid.", constants.PricingRoute)
	}
}

// lock takes the submit locks for the visitor's session and for the form's
// idempotency key. Either one being held rejects the submit. Without a store
// the form state alone guards the submission.
func (cc *CheckoutController) lock(c *fiber.Ctx, key string) (func(), bool) {
	noop := func() {}
	if cc.locks == nil {
		return noop, true
	}

	names := []string{checkoutKeyPrefix + key}
	if cc.sessions != nil {
		if sid, err := cc.sessions.ID(c); err == nil {
			names = append(names, checkoutLockPrefix+sid)
		} else {
			log.Warnf("[Checkout] no session for submit lock: %v", err)
		}
	}

	var releases []func()
	releaseAll := func() {
		for _, r := range releases {
			r()
		}
	}
	for _, name := range names {
		release, ok, err := cache.TryLock(c.UserContext(), cc.locks, name, checkoutLockTTL)
		if err != nil {
			log.Warnf("[Checkout] submit lock unavailable: %v", err)
			continue
		}
		if !ok {
			log.Infof("[Checkout] rejected concurrent submit, %s is held", name)
			releaseAll()
			return noop, false
		}
		releases = append(releases, release)
	}
	return releaseAll, true
}

func (cc *CheckoutController) renderForm(c *fiber.Ctx, status int, form *checkout.Form) error {
	values := form.Values
	if len(checkout.DigitsOnly(values.CardNumber)) <= 16 {
		values.CardNumber = checkout.FormatCardNumber(values.CardNumber)
	}
	address := checkout.Address{}
	if values.BillingAddress != nil {
		address = *values.BillingAddress
	}

	c.Status(status)
	return renderPage(c, "checkout", "Checkout", nil, fiber.Map{
		"Summary":     summary.Build(form.Handoff),
		"Action":      form.Handoff.URL(partials.CheckoutPath),
		"Values":      values,
		"Address":     address,
		"Brand":       string(checkout.CardBrand(values.CardNumber)),
		"FieldErrors": form.FieldErrors,
		"Message":     form.Message,
		"State":       string(form.State()),
		"Key":         form.Key(),
	})
}

func (cc *CheckoutController) renderSuccess(c *fiber.Ctx, form *checkout.Form) error {
	if scope := usercontext.Scope(c); scope != "" && cc.locks != nil {
		dashboard.NewReader(nil, cc.locks, nil, scope).Invalidate(c.UserContext())
	}

	delay := int(checkout.RedirectDelay / time.Second)
	c.Set("Refresh", strconv.Itoa(delay)+"; url="+form.Redirect())
	return renderPage(c, "checkout_success", "Payment complete", nil, fiber.Map{
		"Summary":      summary.Build(form.Handoff),
		"Message":      form.Message,
		"RedirectURL":  form.Redirect(),
		"DelaySeconds": delay,
	})
}

// instrumentFromForm reads the card fields. The billing address is only set
// when at least one of its fields was filled in.
func instrumentFromForm(c *fiber.Ctx) checkout.PaymentInstrument {
	in := checkout.PaymentInstrument{
		CardNumber:  c.FormValue("card_number"),
		ExpiryMonth: c.FormValue("expiry_month"),
		ExpiryYear:  c.FormValue("expiry_year"),
		CVV:         c.FormValue("cvv"),
		CardHolder:  c.FormValue("card_holder"),
	}
	addr := checkout.Address{
		Line1:      c.FormValue("billing_line1"),
		City:       c.FormValue("billing_city"),
		State:      c.FormValue("billing_state"),
		PostalCode: c.FormValue("billing_postal_code"),
		Country:    c.FormValue("billing_country"),
	}
	if strings.TrimSpace(addr.Line1+addr.City+addr.State+addr.PostalCode+addr.Country) != "" {
		in.BillingAddress = &addr
	}
	return in
}

// contactSalesRedirect keeps the usage parameters of a custom-priced handoff.
func contactSalesRedirect(q url.Values) string {
	keep := url.Values{}
	for _, k := range []string{checkout.ParamAPICalls, checkout.ParamResolution, checkout.ParamLanguages, checkout.ParamSupport} {
		if v := q.Get(k); v != "" {
			keep.Set(k, v)
		}
	}
	if len(keep) == 0 {
		return partials.ContactSalesPath
	}
	return partials.ContactSalesPath + "?" + keep.Encode()
}
