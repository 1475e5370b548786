package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/cache"
	"github.com/lipsense/portal/internal/pkg/session"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	app := fiber.New(fiber.Config{Views: html.New("../../../views", ".html")})
	setup(app,
		NewHttpRouterWith(&Deps{
			API:      backend.NewClient(srv.URL, time.Second),
			Cache:    cache.NewMemory(),
			Sessions: session.New(fibersession.New()),
		}),
		NewApiRouter(),
	)
	return app
}

func TestRoutes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/features", http.StatusOK},
		{http.MethodGet, "/pricing", http.StatusOK},
		{http.MethodGet, "/pricing/quote?apiCalls=3000", http.StatusOK},
		{http.MethodGet, "/checkout/card-brand?card_number=4111", http.StatusOK},
		{http.MethodGet, "/checkout", http.StatusFound},
		{http.MethodGet, "/signin", http.StatusOK},
		{http.MethodGet, "/auth/complete", http.StatusBadRequest},
		{http.MethodGet, "/dashboard", http.StatusSeeOther},
		{http.MethodGet, "/dashboard/plan", http.StatusSeeOther},
		{http.MethodGet, "/contact-sales", http.StatusOK},
		{http.MethodGet, "/page/privacy", http.StatusServiceUnavailable},
		{http.MethodGet, "/blog", http.StatusServiceUnavailable},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/v1/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/plans", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil), 5000)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestFormsRequireCSRFToken(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{"/checkout", "/newsletter", "/contact-sales"} {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(url.Values{"email": {"a@b.test"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, target)
	}
}

func TestPagesIssueCSRFCookie(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pricing", nil), 5000)
	require.NoError(t, err)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_" && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found)
}
