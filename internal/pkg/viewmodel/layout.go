package viewmodel

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lipsense/portal/internal/pkg/usercontext"
)

const SiteName = "Lipsense"

// OpenGraph holds the social preview tags of a page.
type OpenGraph struct {
	Title       string
	Description string
	URL         string
	Image       string
	Type        string
}

// Layout is the data every page template receives under .Layout.
type Layout struct {
	Title         string
	Page          string
	FromProtected bool
	User          usercontext.UserContext
	Msg           fiber.Map
	CSRF          string
	IsDev         bool
	OGViewModel   *OpenGraph
}

// FullTitle renders "<title> | Lipsense", or the site name alone.
func (l Layout) FullTitle() string {
	if l.Title == "" {
		return SiteName
	}
	return l.Title + " | " + SiteName
}

// FlashType and FlashMessage read the flash payload set before a redirect.
func (l Layout) FlashType() string {
	if l.Msg == nil {
		return ""
	}
	t, _ := l.Msg["type"].(string)
	return t
}

func (l Layout) FlashMessage() string {
	if l.Msg == nil {
		return ""
	}
	m, _ := l.Msg["message"].(string)
	return m
}
