package controllers

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sujit-baniya/flash"

	"github.com/lipsense/portal/internal/pkg/env"
	"github.com/lipsense/portal/internal/pkg/usercontext"
	"github.com/lipsense/portal/internal/pkg/viewmodel"
)

const mainLayout = "layouts/main"

// renderPage renders a full page template inside the main layout.
func renderPage(c *fiber.Ctx, name, title string, og *viewmodel.OpenGraph, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	userCtx := usercontext.GetUserContext(c)
	data["Layout"] = viewmodel.Layout{
		Title:         title,
		Page:          c.Path(),
		FromProtected: userCtx.IsLoggedIn,
		User:          userCtx,
		Msg:           flash.Get(c),
		CSRF:          csrfToken(c),
		IsDev:         env.IsDev(),
		OGViewModel:   og,
	}
	return c.Render(name, data, mainLayout)
}

// renderComponent writes a templ fragment. An optional status overrides 200.
func renderComponent(c *fiber.Ctx, comp templ.Component, status ...int) error {
	var opts []func(*templ.ComponentHandler)
	if len(status) > 0 {
		opts = append(opts, templ.WithStatus(status[0]))
	}
	handler := adaptor.HTTPHandler(templ.Handler(comp, opts...))
	return handler(c)
}

// componentHTML renders a fragment for embedding into a page template.
func componentHTML(c *fiber.Ctx, comp templ.Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := comp.Render(c.UserContext(), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}

// queryValues returns the raw query string as url.Values, keeping repeated keys.
func queryValues(c *fiber.Ctx) url.Values {
	q, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	return q
}

// GetClientIP determines the client address, preferring proxy headers.
func GetClientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		// the first entry is the original client
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	return strings.TrimPrefix(c.IP(), "::ffff:")
}

func flashError(c *fiber.Ctx, message, location string) error {
	return flash.WithError(c, fiber.Map{"type": "error", "message": message}).Redirect(location)
}

func flashSuccess(c *fiber.Ctx, message, location string) error {
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": message}).Redirect(location)
}
