package controllers

import (
	"errors"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lipsense/portal/app/models"
	"github.com/lipsense/portal/app/repository"
	"github.com/lipsense/portal/internal/pkg/constants"
	"github.com/lipsense/portal/internal/pkg/utils"
	"github.com/lipsense/portal/internal/pkg/viewmodel"
)

const postsPerPage = 10

// PageController serves the marketing, CMS and blog pages. Repositories are
// nil when the database is not configured; those pages then answer 503.
type PageController struct {
	pages repository.PageRepository
	posts repository.PostRepository
}

func NewPageController(pages repository.PageRepository, posts repository.PostRepository) *PageController {
	return &PageController{pages: pages, posts: posts}
}

func (pc *PageController) HandleStart(c *fiber.Ctx) error {
	og := &viewmodel.OpenGraph{
		Title:       viewmodel.SiteName + " - lip reading and gesture recognition APIs",
		Description: "Turn silent video into text and gestures into commands with one API call.",
		URL:         "/",
		Type:        "website",
	}
	return renderPage(c, "home", "", og, fiber.Map{"Plans": planCards()})
}

func (pc *PageController) HandleFeatures(c *fiber.Ctx) error {
	return renderPage(c, "features", "Features", nil, nil)
}

// HandlePageDisplay renders a legal or community page by slug.
func (pc *PageController) HandlePageDisplay(c *fiber.Ctx) error {
	if pc.pages == nil {
		return unavailable(c)
	}
	page, err := pc.pages.GetBySlug(c.Params("slug"))
	if err != nil {
		return notFoundOr(c, err, "Page not found.")
	}

	siblings, err := pc.pages.ListBySection(page.Section)
	if err != nil {
		log.Warnf("[Pages] could not list section %s: %v", page.Section, err)
	}
	og := &viewmodel.OpenGraph{
		Title:       page.Title + " - " + viewmodel.SiteName,
		Description: stripHTMLAndTruncate(page.Content, 150),
		URL:         "/page/" + page.Slug,
	}
	return renderPage(c, "page", page.Title, og, fiber.Map{
		"Page":     page,
		"Content":  template.HTML(utils.ProcessHTMLContent(page.Content)),
		"Siblings": siblings,
	})
}

// HandleBlogIndex lists published posts. Pages are 1-based; a page past the
// end renders an empty list without a next link.
func (pc *PageController) HandleBlogIndex(c *fiber.Ctx) error {
	if pc.posts == nil {
		return unavailable(c)
	}
	page := max(c.QueryInt("page", 1), 1)

	total, err := pc.posts.CountPublished()
	if err != nil {
		log.Errorf("[Blog] count failed: %v", err)
		return unavailable(c)
	}
	posts, err := pc.posts.GetPublished((page-1)*postsPerPage, postsPerPage)
	if err != nil {
		log.Errorf("[Blog] list failed: %v", err)
		return unavailable(c)
	}

	totalPages := max(int((total+postsPerPage-1)/postsPerPage), 1)
	return renderPage(c, "blog", "Blog", &viewmodel.OpenGraph{Title: "Blog - " + viewmodel.SiteName, URL: constants.BlogRoute}, fiber.Map{
		"Posts":    posts,
		"Page":     page,
		"HasPrev":  page > 1,
		"HasNext":  page < totalPages,
		"PrevPage": page - 1,
		"NextPage": page + 1,
	})
}

func (pc *PageController) HandleBlogShow(c *fiber.Ctx) error {
	if pc.posts == nil {
		return unavailable(c)
	}
	post, err := pc.posts.GetBySlug(c.Params("slug"))
	if err != nil {
		return notFoundOr(c, err, "Article not found.")
	}
	og := &viewmodel.OpenGraph{
		Title:       post.Title + " - " + viewmodel.SiteName,
		Description: postDescription(post),
		URL:         constants.BlogRoute + "/" + post.Slug,
		Type:        "article",
	}
	return renderPage(c, "post", post.Title, og, fiber.Map{
		"Post":    post,
		"Content": template.HTML(utils.ProcessHTMLContent(post.Content)),
	})
}

func postDescription(p *models.Post) string {
	if p.Excerpt != "" {
		return p.Excerpt
	}
	return stripHTMLAndTruncate(p.Content, 150)
}

func notFoundOr(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.Status(fiber.StatusNotFound)
		return renderPage(c, "error", "Not found", nil, fiber.Map{"Message": message})
	}
	log.Errorf("[Pages] lookup failed: %v", err)
	return unavailable(c)
}

func unavailable(c *fiber.Ctx) error {
	c.Status(fiber.StatusServiceUnavailable)
	return renderPage(c, "error", "Unavailable", nil, fiber.Map{"Message": "This page is temporarily unavailable."})
}

// stripHTMLAndTruncate makes a plain text description from stored HTML content.
func stripHTMLAndTruncate(html string, maxLength int) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	text := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return strings.TrimSpace(string(runes[:maxLength])) + "…"
}
