package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/metrics"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

const (
	// RedirectDelay is how long the confirmation panel stays before moving on.
	RedirectDelay = 3 * time.Second
	// SuccessRedirect is the landing route after a completed checkout.
	SuccessRedirect = "/dashboard?checkout=success"

	GenericFailureMessage    = "Payment could not be processed. Please try again."
	ConnectionFailureMessage = "We could not reach the payment service. Please check your connection and try again."
	DefaultSuccessMessage    = "Your subscription is active."
)

var (
	ErrSubmitInFlight = errors.New("a checkout submission is already in progress")
	ErrAlreadyPaid    = errors.New("checkout already completed")
	// ErrSubmitFailed wraps every rejected or failed backend submission.
	ErrSubmitFailed = errors.New("subscription was not created")
)

// Submitter is the part of the backend client the form needs.
type Submitter interface {
	CreateSubscription(ctx context.Context, idempotencyKey string, req backend.SubscriptionRequest) (*backend.StatusResponse, error)
}

// Form drives one checkout. Values keep whatever the visitor last entered so a
// failed attempt can be re-rendered and resubmitted.
//
// IdempotencyKey travels with the rendered form so a resubmission of the same
// page reaches the backend under the same key. It is replaced only after the
// backend gave a definitive answer.
type Form struct {
	Handoff        Handoff
	Values         PaymentInstrument
	FieldErrors    ValidationErrors
	Message        string
	IdempotencyKey string

	mu     sync.Mutex
	state  State
	newKey func() string
}

func NewForm(h Handoff) *Form {
	return &Form{Handoff: h, state: StateIdle, newKey: uuid.NewString}
}

// Key returns the idempotency key for the next submission, minting one if the
// form has none yet.
func (f *Form) Key() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key()
}

func (f *Form) key() string {
	if f.IdempotencyKey == "" {
		f.IdempotencyKey = f.newKey()
	}
	return f.IdempotencyKey
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit validates in and, if it passes, sends exactly one subscription request.
// Validation failures leave the form idle without calling s.
func (f *Form) Submit(ctx context.Context, s Submitter, in PaymentInstrument) error {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return ErrSubmitInFlight
	case StateSuccess:
		f.mu.Unlock()
		return ErrAlreadyPaid
	}
	f.state = StateValidating
	f.Values = in
	f.FieldErrors = nil
	f.Message = ""

	if err := in.Validate(); err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			f.FieldErrors = verrs
		}
		f.state = StateIdle
		f.mu.Unlock()
		metrics.CheckoutOutcomes.WithLabelValues("invalid", string(f.Handoff.Plan)).Inc()
		return err
	}

	f.state = StateSubmitting
	req := BuildPayload(f.Handoff, in)
	key := f.key()
	f.mu.Unlock()

	resp, err := s.CreateSubscription(ctx, key, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil && resp.OK() {
		f.state = StateSuccess
		f.Message = DefaultSuccessMessage
		if resp.Message != "" {
			f.Message = resp.Message
		}
		metrics.CheckoutOutcomes.WithLabelValues("success", req.PlanSlug).Inc()
		log.Infof("[Checkout] subscription created plan=%s card=****%s key=%s", req.PlanSlug, LastFour(req.PaymentMethod.CardNumber), key)
		return nil
	}

	f.state = StateError
	msg, outcome := failureMessage(resp, err)
	f.Message = msg
	if outcome != outcomeTransport {
		// The backend answered, a retry is a new attempt.
		f.IdempotencyKey = f.newKey()
	}
	metrics.CheckoutOutcomes.WithLabelValues(outcome, req.PlanSlug).Inc()
	log.Warnf("[Checkout] subscription failed plan=%s card=****%s outcome=%s: %v", req.PlanSlug, LastFour(req.PaymentMethod.CardNumber), outcome, err)

	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	status := ""
	if resp != nil {
		status = resp.Status
	}
	return fmt.Errorf("%w: backend status %q", ErrSubmitFailed, status)
}

// Redirect is the landing route once the form succeeded, or "" otherwise.
func (f *Form) Redirect() string {
	if f.State() == StateSuccess {
		return SuccessRedirect
	}
	return ""
}

const outcomeTransport = "transport"

// failureMessage picks the text shown to the visitor and the metrics outcome label.
func failureMessage(resp *backend.StatusResponse, err error) (string, string) {
	switch {
	case err == nil:
		if resp != nil && resp.Message != "" {
			return resp.Message, "declined"
		}
		return GenericFailureMessage, "declined"
	case errors.Is(err, backend.ErrTransport), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ConnectionFailureMessage, outcomeTransport
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message, "declined"
		}
		return GenericFailureMessage, "declined"
	}
	return GenericFailureMessage, "error"
}
