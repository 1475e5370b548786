package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusSuccess is the only status value the backend uses to acknowledge a mutation.
const StatusSuccess = "success"

// StatusResponse is the acknowledgement body of mutating endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r *StatusResponse) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// SubscriptionRequest is the body of POST /subscriptions.
type SubscriptionRequest struct {
	PlanSlug       string          `json:"plan_slug"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	BillingAddress *BillingAddress `json:"billing_address,omitempty"`
	UsageDetails   UsageDetails    `json:"usage_details"`
}

type PaymentMethod struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
	CardHolder  string `json:"card_holder"`
}

type BillingAddress struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// UsageDetails carries whichever calculator inputs were handed to checkout.
type UsageDetails struct {
	APICalls   *int   `json:"api_calls,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Languages  *int   `json:"languages,omitempty"`
	Support    string `json:"support,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type CurrentPlan struct {
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	PriceMonthly  decimal.Decimal `json:"price_monthly"`
	PriceYearly   decimal.Decimal `json:"price_yearly"`
	Features      []string        `json:"features"`
	APICallsLimit int             `json:"api_calls_limit"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	IsActive      bool            `json:"is_active"`
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	PlanName      string          `json:"plan_name"`
	PaidAt        *time.Time      `json:"paid_at"`
}

// PageMeta follows the backend's paginator: pages are 1-based.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type PaymentPage struct {
	Data []Payment `json:"data"`
	Meta PageMeta  `json:"meta"`
}

type DailyUsage struct {
	Date       string `json:"date"`
	LipReading int    `json:"lip_reading"`
	Gesture    int    `json:"gesture_recognition"`
}

type UsageStats struct {
	PeriodStart   *time.Time     `json:"period_start"`
	PeriodEnd     *time.Time     `json:"period_end"`
	APICallsUsed  int            `json:"api_calls_used"`
	APICallsLimit int            `json:"api_calls_limit"`
	Daily         []DailyUsage   `json:"daily"`
	ByEndpoint    map[string]int `json:"by_endpoint"`
}

type Result struct {
	ID         string    `json:"id"`
	JobType    string    `json:"job_type"`
	Status     string    `json:"status"`
	Transcript string    `json:"transcript"`
	Confidence float64   `json:"confidence"`
	OutputKey  string    `json:"output_key"`
	CreatedAt  time.Time `json:"created_at"`
}

type ResultPage struct {
	Data []Result `json:"data"`
	Meta PageMeta `json:"meta"`
}

type envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}
