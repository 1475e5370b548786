package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/app/models"
	"github.com/lipsense/portal/app/repository"
	"github.com/lipsense/portal/internal/pkg/checkout"
	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/hcaptcha"
	"github.com/lipsense/portal/internal/pkg/viewmodel"
)

const ContactThanksMessage = "Thanks! Our sales team will get back to you within one business day."

// LeadNotifier tells the sales team about a stored lead.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead *models.ContactRequest) error
}

// ContactController takes enterprise enquiries from the custom-pricing route.
type ContactController struct {
	repo     repository.ContactRequestRepository
	notifier LeadNotifier
	captcha  hcaptcha.Verifier
	siteKey  string
}

// NewContactController builds the controller. notifier and captcha may be nil
// to skip notification and bot checks.
func NewContactController(repo repository.ContactRequestRepository, notifier LeadNotifier, captcha hcaptcha.Verifier, siteKey string) *ContactController {
	return &ContactController{repo: repo, notifier: notifier, captcha: captcha, siteKey: siteKey}
}

func (cc *ContactController) HandleContactSales(c *fiber.Ctx) error {
	req := models.ContactRequest{
		Resolution: c.Query(checkout.ParamResolution),
		Support:    c.Query(checkout.ParamSupport),
	}
	req.APICalls, _ = strconv.Atoi(c.Query(checkout.ParamAPICalls))
	req.Languages, _ = strconv.Atoi(c.Query(checkout.ParamLanguages))
	return cc.render(c, fiber.StatusOK, req, nil)
}

func (cc *ContactController) HandleContactSalesSubmit(c *fiber.Ctx) error {
	req := contactFromForm(c)
	req.Normalize()

	if cc.captcha != nil {
		if err := cc.captcha.Verify(c.UserContext(), c.FormValue("h-captcha-response"), GetClientIP(c)); err != nil {
			log.Infof("[Contact] captcha rejected: %v", err)
			return cc.render(c, fiber.StatusUnprocessableEntity, req, map[string]string{"captcha": "Please complete the captcha."})
		}
	}
	if err := req.Validate(); err != nil {
		return cc.render(c, fiber.StatusUnprocessableEntity, req, contactErrors(err))
	}
	if cc.repo == nil {
		log.Error("[Contact] no database configured, enquiry dropped")
		c.Status(fiber.StatusServiceUnavailable)
		return renderPage(c, "error", "Unavailable", nil, fiber.Map{"Message": "The contact form is temporarily unavailable. Please email us instead."})
	}

	req.IPAddress = GetClientIP(c)
	if err := cc.repo.Create(&req); err != nil {
		log.Errorf("[Contact] could not store enquiry: %v", err)
		return flashError(c, "We could not send your message. Please try again.", constants.ContactSalesRoute)
	}
	log.Infof("[Contact] stored enquiry %s", req.PublicID)
	if cc.notifier != nil {
		// The lead stays in status new when this fails.
		if err := cc.notifier.NotifyLead(c.UserContext(), &req); err != nil {
			log.Warnf("[Contact] notification for %s not sent: %v", req.PublicID, err)
		}
	}

	return flashSuccess(c, ContactThanksMessage, constants.ContactSalesRoute)
}

func (cc *ContactController) render(c *fiber.Ctx, status int, req models.ContactRequest, errs map[string]string) error {
	c.Status(status)
	og := &viewmodel.OpenGraph{
		Title:       "Contact sales - " + viewmodel.SiteName,
		Description: "Custom plans with dedicated capacity, on-premise deployment and an SLA.",
		URL:         constants.ContactSalesRoute,
	}
	return renderPage(c, "contact_sales", "Contact sales", og, fiber.Map{
		"Form":    req,
		"Errors":  errs,
		"SiteKey": cc.siteKey,
		"Captcha": cc.captcha != nil,
	})
}

func contactFromForm(c *fiber.Ctx) models.ContactRequest {
	req := models.ContactRequest{
		Name:       c.FormValue("name"),
		Email:      c.FormValue("email"),
		Company:    c.FormValue("company"),
		Message:    c.FormValue("message"),
		Resolution: c.FormValue("resolution"),
		Support:    c.FormValue("support"),
	}
	req.APICalls, _ = strconv.Atoi(strings.TrimSpace(c.FormValue("api_calls")))
	req.Languages, _ = strconv.Atoi(strings.TrimSpace(c.FormValue("languages")))
	return req
}

var contactMessages = map[string]string{
	"name":       "Please tell us your name.",
	"email":      "Please enter a valid email address.",
	"company":    "Company name is too long.",
	"message":    "Please describe your use case in at least 10 characters.",
	"api_calls":  "Expected volume must be zero or more.",
	"resolution": "Resolution must be 720p, 1080p or 4K.",
	"languages":  "Languages must be between 1 and 40.",
	"support":    "Support must be basic, priority or enterprise.",
}

func contactErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "Please check the form and try again."
		return out
	}
	for _, fe := range verrs {
		key := toSnake(fe.Field())
		if msg, ok := contactMessages[key]; ok {
			out[key] = msg
		} else {
			out[key] = "Invalid value."
		}
	}
	return out
}

// toSnake maps struct field names like APICalls to form names like api_calls.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := s[i-1] >= 'a' && s[i-1] <= 'z'
			nextLower := i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
