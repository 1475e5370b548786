package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router mounts one family of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// HttpRouter goes first: it installs the session store and the global
	// UserContext middleware the API routes run behind.
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
