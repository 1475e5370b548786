package controllers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNewsletterApp(t *testing.T) (*fiber.App, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend(t)
	app, _ := newTestApp(t)
	app.Post("/newsletter", NewNewsletterController(fb.client()).HandleNewsletterSubscribe)
	return app, fb
}

func subscribe(t *testing.T, app *fiber.App, email string) response {
	t.Helper()
	return postForm(t, app, "/newsletter", url.Values{"email": {email}})
}

func TestNewsletterRejectsInvalidEmail(t *testing.T) {
	app, fb := newNewsletterApp(t)

	for _, email := range []string{"", "  ", "not-an-email", "a@"} {
		resp := subscribe(t, app, email)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Body, "newsletter-error")
		assert.Contains(t, resp.Body, NewsletterInvalidEmail)
	}
	assert.Zero(t, fb.calls())
}

func TestNewsletterShowsBackendMessage(t *testing.T) {
	app, fb := newNewsletterApp(t)
	fb.handle(http.MethodPost, "/mail/newsletter", http.StatusOK, map[string]string{
		"status": "success", "message": "Check your inbox to confirm.",
	})

	resp := subscribe(t, app, " ada@example.com ")
	assert.Contains(t, resp.Body, "newsletter-success")
	assert.Contains(t, resp.Body, "Check your inbox to confirm.")

	_, body := fb.last()
	assert.JSONEq(t, `{"email":"ada@example.com"}`, body)
}

func TestNewsletterDefaultThanks(t *testing.T) {
	app, fb := newNewsletterApp(t)
	fb.handle(http.MethodPost, "/mail/newsletter", http.StatusOK, map[string]string{"status": "success"})

	resp := subscribe(t, app, "ada@example.com")
	assert.Contains(t, resp.Body, NewsletterThanks)
}

func TestNewsletterFailures(t *testing.T) {
	t.Run("rejected with message", func(t *testing.T) {
		app, fb := newNewsletterApp(t)
		fb.handle(http.MethodPost, "/mail/newsletter", http.StatusUnprocessableEntity, map[string]string{
			"message": "This address is already subscribed.",
		})
		resp := subscribe(t, app, "ada@example.com")
		assert.Contains(t, resp.Body, "newsletter-error")
		assert.Contains(t, resp.Body, "This address is already subscribed.")
	})

	t.Run("status not success", func(t *testing.T) {
		app, fb := newNewsletterApp(t)
		fb.handle(http.MethodPost, "/mail/newsletter", http.StatusOK, map[string]string{"status": "error"})
		resp := subscribe(t, app, "ada@example.com")
		assert.Contains(t, resp.Body, NewsletterFailed)
	})

	t.Run("unreachable", func(t *testing.T) {
		app, fb := newNewsletterApp(t)
		fb.srv.Close()
		resp := subscribe(t, app, "ada@example.com")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Body, NewsletterUnreachable)
	})
}
