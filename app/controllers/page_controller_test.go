package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lipsense/portal/app/models"
	"github.com/lipsense/portal/app/repository"
)

type fakePages struct {
	pages map[string]models.Page
	err   error
}

func (f fakePages) GetBySlug(slug string) (*models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.pages[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f fakePages) ListBySection(section string) ([]models.Page, error) {
	var out []models.Page
	for _, p := range f.pages {
		if p.Section == section {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePosts struct {
	posts []models.Post
}

func (f fakePosts) GetBySlug(slug string) (*models.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakePosts) GetPublished(offset, limit int) ([]models.Post, error) {
	if offset >= len(f.posts) {
		return nil, nil
	}
	return f.posts[offset:min(offset+limit, len(f.posts))], nil
}

func (f fakePosts) CountPublished() (int64, error) {
	return int64(len(f.posts)), nil
}

func newPageApp(t *testing.T, pages repository.PageRepository, posts repository.PostRepository) *fiber.App {
	t.Helper()
	app, _ := newTestApp(t)
	pc := NewPageController(pages, posts)
	app.Get("/", pc.HandleStart)
	app.Get("/features", pc.HandleFeatures)
	app.Get("/page/:slug", pc.HandlePageDisplay)
	app.Get("/blog", pc.HandleBlogIndex)
	app.Get("/blog/:slug", pc.HandleBlogShow)
	return app
}

func samplePosts(n int) fakePosts {
	published := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var posts []models.Post
	for i := 1; i <= n; i++ {
		posts = append(posts, models.Post{
			ID:          uint64(i),
			Title:       fmt.Sprintf("Article %d", i),
			Slug:        fmt.Sprintf("article-%d", i),
			Content:     "<p>Body</p>",
			Published:   true,
			PublishedAt: &published,
		})
	}
	return fakePosts{posts: posts}
}

func TestStaticPages(t *testing.T) {
	app := newPageApp(t, nil, nil)

	home := get(t, app, "/")
	assert.Equal(t, http.StatusOK, home.StatusCode)
	assert.Contains(t, home.Body, `property="og:title"`)

	features := get(t, app, "/features")
	assert.Equal(t, http.StatusOK, features.StatusCode)
	assert.Contains(t, features.Body, "Features | Lipsense")
}

func TestPageDisplay(t *testing.T) {
	pages := fakePages{pages: map[string]models.Page{
		"privacy": {Title: "Privacy", Slug: "privacy", Section: models.PageSectionLegal, Content: "<h2>Your data</h2><p>We keep it safe.</p>"},
		"terms":   {Title: "Terms", Slug: "terms", Section: models.PageSectionLegal, Content: "<p>Terms</p>"},
	}}
	app := newPageApp(t, pages, nil)

	resp := get(t, app, "/page/privacy")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, "<h2>Your data</h2>")
	assert.Contains(t, resp.Body, `href="/page/terms"`)
	assert.Contains(t, resp.Body, `content="Your data We keep it safe."`)

	missing := get(t, app, "/page/nope")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.Contains(t, missing.Body, "Page not found.")
}

func TestPagesWithoutDatabase(t *testing.T) {
	app := newPageApp(t, nil, nil)

	for _, target := range []string{"/page/privacy", "/blog", "/blog/article-1"} {
		resp := get(t, app, target)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, target)
	}

	broken := newPageApp(t, fakePages{err: errors.New("connection refused")}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, broken, "/page/privacy").StatusCode)
}

func TestBlogPagination(t *testing.T) {
	app := newPageApp(t, nil, samplePosts(12))

	first := get(t, app, "/blog")
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Contains(t, first.Body, "Article 1")
	assert.Contains(t, first.Body, "Article 10")
	assert.NotContains(t, first.Body, "Article 11")
	assert.Contains(t, first.Body, `href="/blog?page=2"`)
	assert.NotContains(t, first.Body, "Newer")

	second := get(t, app, "/blog?page=2")
	assert.Contains(t, second.Body, "Article 12")
	assert.Contains(t, second.Body, `href="/blog?page=1"`)
	assert.NotContains(t, second.Body, "Older")

	beyond := get(t, app, "/blog?page=7")
	assert.Equal(t, http.StatusOK, beyond.StatusCode)
	assert.Contains(t, beyond.Body, "No articles on this page.")
	assert.NotContains(t, beyond.Body, "Older")
}

func TestBlogShow(t *testing.T) {
	app := newPageApp(t, nil, samplePosts(2))

	resp := get(t, app, "/blog/article-2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, "<h1>Article 2</h1>")
	assert.Contains(t, resp.Body, `content="article"`)

	assert.Equal(t, http.StatusNotFound, get(t, app, "/blog/missing").StatusCode)
}

func TestStripHTMLAndTruncate(t *testing.T) {
	assert.Equal(t, "Hello world", stripHTMLAndTruncate("<p>Hello <b>world</b></p>", 50))
	assert.Equal(t, "Hello…", stripHTMLAndTruncate("<p>Hello world</p>", 6))
	assert.Equal(t, "", stripHTMLAndTruncate("<br/>", 10))
}

func TestGetClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetClientIP(c)) })

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "cloudflare", headers: map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "10.0.0.1"}, want: "203.0.113.9"},
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, want: "198.51.100.4"},
		{name: "direct", want: "0.0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp := do(t, app, req)
			assert.Equal(t, tt.want, resp.Body)
		})
	}
}
