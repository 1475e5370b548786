package middleware

import (
	"github.com/lipsense/portal/internal/pkg/constants"
	icuser "github.com/lipsense/portal/internal/pkg/usercontext"

	"github.com/gofiber/fiber/v2"
)

// SignInRoute is where anonymous visitors are sent.
const SignInRoute = constants.SignInRoute

// RequireAuth ensures a logged-in web session; redirects to the sign-in page if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !fromProtected(c) {
		if c.Get("HX-Request") == "true" {
			c.Set("HX-Redirect", SignInRoute)
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Redirect(SignInRoute, fiber.StatusSeeOther)
	}
	return c.Next()
}

func fromProtected(c *fiber.Ctx) bool {
	loggedIn, _ := c.Locals(icuser.KeyFromProtected).(bool)
	return loggedIn
}
