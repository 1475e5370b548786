package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/internal/pkg/session"
	"github.com/lipsense/portal/internal/pkg/usercontext"
	"github.com/lipsense/portal/internal/pkg/utils"
)

// UserContextMiddleware loads the signed-in identity from the session for
// every request. Visitors get an anonymous context.
func UserContextMiddleware(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := store.Current(c)
		if err != nil {
			log.Warnf("[Session] could not load session: %v", err)
		}

		if !id.LoggedIn() {
			c.Locals(usercontext.KeyUserContext, usercontext.UserContext{})
			c.Locals(usercontext.KeyFromProtected, false)
			return c.Next()
		}

		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
			UserID:     id.User.ID,
			Name:       id.User.Name,
			Email:      id.User.Email,
			AvatarURL:  utils.AvatarURL(id.User.AvatarURL, id.User.Email, 64),
			IsLoggedIn: true,
		})
		c.Locals(usercontext.KeyFromProtected, true)
		c.Locals(usercontext.KeyAccessToken, id.Token)
		return c.Next()
	}
}
