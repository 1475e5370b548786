package usercontext

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// UserContext represents the signed-in account for a request
type UserContext struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatar_url"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// AccessToken returns the backend token of the signed-in user, or "".
func AccessToken(c *fiber.Ctx) string {
	token, _ := c.Locals(KeyAccessToken).(string)
	return token
}

// Scope is a stable per-account cache scope, empty for visitors.
func Scope(c *fiber.Ctx) string {
	u := GetUserContext(c)
	if !u.IsLoggedIn || u.UserID == 0 {
		return ""
	}
	return "user-" + strconv.FormatInt(u.UserID, 10)
}
