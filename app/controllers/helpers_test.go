package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/middleware"
	"github.com/lipsense/portal/internal/pkg/session"
)

// fakeBackend records calls and answers with a per-path handler.
type fakeBackend struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	routes   map[string]http.HandlerFunc
	srv      *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, r)
		fb.bodies = append(fb.bodies, string(body))
		h, ok := fb.routes[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) handle(method, path string, status int, body any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" "+path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// handleFunc installs a custom handler, for responses that must wait on the test.
func (fb *fakeBackend) handleFunc(method, path string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" "+path] = h
}

func (fb *fakeBackend) client() *backend.Client {
	return backend.NewClient(fb.srv.URL, 2*time.Second)
}

func (fb *fakeBackend) calls() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func (fb *fakeBackend) last() (*http.Request, string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		return nil, ""
	}
	return fb.requests[len(fb.requests)-1], fb.bodies[len(fb.bodies)-1]
}

// newTestApp renders the real templates and keeps sessions in memory.
// /test/login signs in as user 7 with token "tok".
func newTestApp(t *testing.T) (*fiber.App, *session.Store) {
	t.Helper()
	store := session.New(fibersession.New())
	app := fiber.New(fiber.Config{Views: html.New("../../views", ".html")})
	app.Use(middleware.UserContextMiddleware(store))
	app.Post("/test/login", func(c *fiber.Ctx) error {
		if err := store.Login(c, "tok", backend.User{ID: 7, Name: "Ada", Email: "ada@example.com"}); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, store
}

func login(t *testing.T, app *fiber.App) []*http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/test/login", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	return resp.Cookies()
}

type response struct {
	*http.Response
	Body string
}

func do(t *testing.T, app *fiber.App, req *http.Request, cookies ...*http.Cookie) response {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Response: resp, Body: string(body)}
}

func get(t *testing.T, app *fiber.App, target string, cookies ...*http.Cookie) response {
	t.Helper()
	return do(t, app, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func postForm(t *testing.T, app *fiber.App, target string, form url.Values, cookies ...*http.Cookie) response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, app, req, cookies...)
}
