package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/app/controllers"
	"github.com/lipsense/portal/app/repository"
	"github.com/lipsense/portal/internal/pkg/artifacts"
	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/cache"
	"github.com/lipsense/portal/internal/pkg/dashboard"
	"github.com/lipsense/portal/internal/pkg/database"
	"github.com/lipsense/portal/internal/pkg/env"
	"github.com/lipsense/portal/internal/pkg/hcaptcha"
	"github.com/lipsense/portal/internal/pkg/jobqueue"
	"github.com/lipsense/portal/internal/pkg/mail"
	"github.com/lipsense/portal/internal/pkg/middleware"
	"github.com/lipsense/portal/internal/pkg/session"
)

// Deps are the collaborators of the HTML routes. Optional ones stay nil
// when their service is not configured.
type Deps struct {
	API      *backend.Client
	Cache    cache.Store
	Sessions *session.Store

	Linker   dashboard.Linker
	Pages    repository.PageRepository
	Posts    repository.PostRepository
	Contacts repository.ContactRequestRepository
	Notifier controllers.LeadNotifier
	Captcha  hcaptcha.Verifier

	CaptchaSiteKey string
}

// DepsFromEnv connects everything the environment configures.
func DepsFromEnv(ctx context.Context) *Deps {
	d := &Deps{
		API:      backend.NewClientFromEnv(),
		Cache:    cache.Default(),
		Sessions: session.NewSessionStore(),
	}

	if db := database.GetDB(); db != nil {
		repository.InitializeFactory(db)
		f := repository.GetGlobalFactory()
		d.Pages = f.GetPageRepository()
		d.Posts = f.GetPostRepository()
		d.Contacts = f.GetContactRequestRepository()
	} else {
		log.Warn("[Router] no database, CMS pages and the contact form answer 503")
	}

	if linker, err := artifacts.NewClientFromEnv(ctx); err != nil {
		log.Errorf("[Router] result downloads disabled: %v", err)
	} else if linker != nil {
		d.Linker = linker
	}

	if captcha := hcaptcha.NewFromEnv(); captcha.Enabled() {
		d.Captcha = captcha
		d.CaptchaSiteKey = captcha.SiteKey
	}
	d.Notifier = salesNotifier(d.Contacts)
	return d
}

// salesNotifier delivers lead emails through the Redis job queue, or inline
// when Redis is not connected. It returns nil when mail is not configured.
func salesNotifier(contacts repository.ContactRequestRepository) controllers.LeadNotifier {
	to := env.GetEnv("SALES_EMAIL", "")
	smtp := mail.NewSMTPSenderFromEnv()
	if smtp.Host == "" || to == "" || contacts == nil {
		log.Info("[Router] SMTP_HOST or SALES_EMAIL not set, sales notifications are off")
		return nil
	}

	var queue *jobqueue.Queue
	if client := cache.GetClient(); client != nil {
		queue = jobqueue.Default(client, env.GetInt("JOBQUEUE_WORKERS", 2))
	}
	notifier := jobqueue.NewSalesNotifier(queue, smtp, contacts, to)
	if queue != nil {
		queue.Start()
	}
	return notifier
}

type HttpRouter struct {
	deps *Deps
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	if h.deps == nil {
		h.deps = DepsFromEnv(context.Background())
	}
	d := h.deps

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware(d.Sessions))

	c := h.build()
	h.registerPublicRoutes(app, c)
	h.registerCSRFProtectedRoutes(app, c)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// NewHttpRouterWith uses the given collaborators instead of reading the environment.
func NewHttpRouterWith(d *Deps) *HttpRouter {
	return &HttpRouter{deps: d}
}

type handlers struct {
	pages      *controllers.PageController
	pricing    *controllers.PricingController
	checkout   *controllers.CheckoutController
	auth       *controllers.AuthController
	dashboard  *controllers.DashboardController
	newsletter *controllers.NewsletterController
	contact    *controllers.ContactController
}

func (h HttpRouter) build() handlers {
	d := h.deps
	return handlers{
		pages:      controllers.NewPageController(d.Pages, d.Posts),
		pricing:    controllers.NewPricingController(),
		checkout:   controllers.NewCheckoutController(d.API, d.Cache, d.Sessions),
		auth:       controllers.NewAuthController(d.API, d.Sessions),
		dashboard:  controllers.NewDashboardController(d.API, d.Cache, d.Linker, d.Sessions),
		newsletter: controllers.NewNewsletterController(d.API),
		contact:    controllers.NewContactController(d.Contacts, d.Notifier, d.Captcha, d.CaptchaSiteKey),
	}
}
