package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/partials"
)

const (
	NewsletterInvalidEmail = "Please enter a valid email address."
	NewsletterThanks       = "Thanks for subscribing!"
	NewsletterFailed       = "Subscription failed. Please try again later."
	NewsletterUnreachable  = "We could not reach the server. Please check your connection."
)

var validate = validator.New()

type NewsletterController struct {
	api *backend.Client
}

func NewNewsletterController(api *backend.Client) *NewsletterController {
	return &NewsletterController{api: api}
}

// HandleNewsletterSubscribe posts the footer signup to the backend. The
// backend's message is shown verbatim when it sends one.
func (nc *NewsletterController) HandleNewsletterSubscribe(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return renderComponent(c, partials.NewsletterResult(false, NewsletterInvalidEmail))
	}

	resp, err := nc.api.SubscribeNewsletter(c.UserContext(), email)
	if err != nil {
		log.Warnf("[Newsletter] subscribe failed: %v", err)
		var apiErr *backend.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Message != "":
			return renderComponent(c, partials.NewsletterResult(false, apiErr.Message))
		case errors.Is(err, backend.ErrTransport):
			return renderComponent(c, partials.NewsletterResult(false, NewsletterUnreachable))
		default:
			return renderComponent(c, partials.NewsletterResult(false, NewsletterFailed))
		}
	}

	msg := resp.Message
	if !resp.OK() {
		if msg == "" {
			msg = NewsletterFailed
		}
		return renderComponent(c, partials.NewsletterResult(false, msg))
	}
	if msg == "" {
		msg = NewsletterThanks
	}
	return renderComponent(c, partials.NewsletterResult(true, msg))
}
