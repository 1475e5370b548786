package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/env"
	"github.com/lipsense/portal/internal/pkg/middleware"
	"github.com/lipsense/portal/internal/pkg/session"
	"github.com/lipsense/portal/internal/pkg/usercontext"
)

const (
	// authErrorDelay is how long the failure notice shows before returning to sign-in.
	authErrorDelay = 3 * time.Second

	MissingTokenMessage = "The sign-in link is missing its token."
	InvalidTokenMessage = "This sign-in link is invalid or has expired."
	AuthFailedMessage   = "We could not complete your sign-in. Please try again."
)

// AuthController completes the backend's sign-in handshake and owns logout.
type AuthController struct {
	api      *backend.Client
	sessions *session.Store
}

func NewAuthController(api *backend.Client, sessions *session.Store) *AuthController {
	return &AuthController{api: api, sessions: sessions}
}

// HandleSignIn links to the backend's hosted sign-in, which returns to /auth/complete.
func (ac *AuthController) HandleSignIn(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(constants.DashboardRoute, fiber.StatusSeeOther)
	}
	return renderPage(c, "signin", "Sign in", nil, fiber.Map{
		"LoginURL": env.GetEnv("AUTH_LOGIN_URL", "/auth/login"),
	})
}

// HandleAuthComplete exchanges ?token= for the account profile and starts a session.
// Without a token no backend call is made.
func (ac *AuthController) HandleAuthComplete(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		log.Warnf("[Auth] completion without token from %s", GetClientIP(c))
		return ac.renderFailure(c, fiber.StatusBadRequest, MissingTokenMessage)
	}

	user, err := ac.api.WithToken(token).GetUser(c.UserContext())
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && (apiErr.Unauthorized() || apiErr.Status == fiber.StatusForbidden) {
			log.Infof("[Auth] rejected sign-in token: %v", err)
			return ac.renderFailure(c, fiber.StatusUnauthorized, InvalidTokenMessage)
		}
		log.Errorf("[Auth] profile lookup failed: %v", err)
		return ac.renderFailure(c, fiber.StatusBadGateway, AuthFailedMessage)
	}

	if err := ac.sessions.Login(c, token, *user); err != nil {
		log.Errorf("[Auth] could not store session: %v", err)
		return ac.renderFailure(c, fiber.StatusInternalServerError, AuthFailedMessage)
	}
	log.Infof("[Auth] user %d signed in", user.ID)

	// Redirecting drops the token from the address bar and history.
	return c.Redirect(constants.DashboardRoute, fiber.StatusSeeOther)
}

// HandleAuthLogout tears the session down.
func (ac *AuthController) HandleAuthLogout(c *fiber.Ctx) error {
	if err := ac.sessions.Logout(c); err != nil {
		log.Warnf("[Auth] logout failed: %v", err)
	}
	return flashSuccess(c, "You have been signed out.", "/")
}

func (ac *AuthController) renderFailure(c *fiber.Ctx, status int, message string) error {
	delay := int(authErrorDelay / time.Second)
	c.Set("Refresh", strconv.Itoa(delay)+"; url="+middleware.SignInRoute)
	c.Status(status)
	return renderPage(c, "auth_complete", "Signing in", nil, fiber.Map{
		"Message":      message,
		"RedirectURL":  middleware.SignInRoute,
		"DelaySeconds": delay,
	})
}
