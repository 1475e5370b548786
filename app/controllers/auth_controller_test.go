package controllers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/middleware"
	"github.com/lipsense/portal/internal/pkg/usercontext"
)

func newAuthApp(t *testing.T) (*fiber.App, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend(t)
	app, store := newTestApp(t)
	ac := NewAuthController(fb.client(), store)
	app.Get("/signin", ac.HandleSignIn)
	app.Get("/auth/complete", ac.HandleAuthComplete)
	app.Post("/logout", ac.HandleAuthLogout)
	app.Get("/whoami", middleware.RequireAuth, func(c *fiber.Ctx) error {
		return c.SendString(usercontext.GetUserContext(c).Name)
	})
	return app, fb
}

func TestAuthCompleteWithoutTokenMakesNoCall(t *testing.T) {
	app, fb := newAuthApp(t)

	for _, target := range []string{"/auth/complete", "/auth/complete?token=", "/auth/complete?token=%20%20"} {
		resp := get(t, app, target)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.Equal(t, "3; url=/signin", resp.Header.Get("Refresh"))
		assert.Contains(t, resp.Body, MissingTokenMessage)
	}
	assert.Zero(t, fb.calls())
}

func TestAuthCompleteStartsSession(t *testing.T) {
	app, fb := newAuthApp(t)
	fb.handle(http.MethodGet, "/user", http.StatusOK, map[string]any{
		"status": "success",
		"data":   backend.User{ID: 7, Name: "Ada", Email: "ada@example.com"},
	})

	resp := get(t, app, "/auth/complete?token=abc123")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	req, _ := fb.last()
	assert.Equal(t, "Bearer abc123", req.Header.Get("Authorization"))

	me := get(t, app, "/whoami", resp.Cookies()...)
	assert.Equal(t, http.StatusOK, me.StatusCode)
	assert.Equal(t, "Ada", me.Body)

	signin := get(t, app, "/signin", resp.Cookies()...)
	assert.Equal(t, http.StatusSeeOther, signin.StatusCode)
}

func TestAuthCompleteRejectedToken(t *testing.T) {
	app, fb := newAuthApp(t)
	fb.handle(http.MethodGet, "/user", http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})

	resp := get(t, app, "/auth/complete?token=stale")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Body, InvalidTokenMessage)
	assert.Equal(t, "3; url=/signin", resp.Header.Get("Refresh"))
}

func TestAuthCompleteBackendDown(t *testing.T) {
	app, fb := newAuthApp(t)
	fb.srv.Close()

	resp := get(t, app, "/auth/complete?token=abc")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, resp.Body, AuthFailedMessage)
}

func TestLogoutEndsSession(t *testing.T) {
	app, _ := newAuthApp(t)
	cookies := login(t, app)

	require.Equal(t, http.StatusOK, get(t, app, "/whoami", cookies...).StatusCode)

	resp := postForm(t, app, "/logout", nil, cookies...)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	after := get(t, app, "/whoami", cookies...)
	assert.Equal(t, http.StatusSeeOther, after.StatusCode)
}
