package constants

// Page routes that handlers redirect to.
const (
	PublicRoute       = "/"
	PricingRoute      = "/pricing"
	CheckoutRoute     = "/checkout"
	SignInRoute       = "/signin"
	DashboardRoute    = "/dashboard"
	ContactSalesRoute = "/contact-sales"
	BlogRoute         = "/blog"
)
