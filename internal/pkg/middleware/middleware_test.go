package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/session"
	"github.com/lipsense/portal/internal/pkg/usercontext"
)

func TestRequireAuthRedirectsVisitors(t *testing.T) {
	store := session.New(fibersession.New())
	app := fiber.New()
	app.Use(UserContextMiddleware(store))
	app.Get("/dashboard", RequireAuth, func(c *fiber.Ctx) error {
		return c.SendString("hello " + usercontext.GetUserContext(c).Name)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, SignInRoute, resp.Header.Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, SignInRoute, resp.Header.Get("HX-Redirect"))
}

func TestUserContextFromSession(t *testing.T) {
	store := session.New(fibersession.New())
	app := fiber.New()
	app.Use(UserContextMiddleware(store))
	app.Post("/login", func(c *fiber.Ctx) error {
		return store.Login(c, "tok", backend.User{ID: 42, Name: "Grace"})
	})
	app.Get("/dashboard", RequireAuth, func(c *fiber.Ctx) error {
		return c.SendString(usercontext.GetUserContext(c).Name + " " + usercontext.AccessToken(c) + " " + usercontext.Scope(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookies := resp.Cookies()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Grace tok user-42", string(body))
}
