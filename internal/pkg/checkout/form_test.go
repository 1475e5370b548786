package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/catalog"
	"github.com/lipsense/portal/internal/pkg/pricing"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []backend.SubscriptionRequest
	keys  []string
	resp  *backend.StatusResponse
	err   error
	// block, when set, holds the call until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeSubmitter) CreateSubscription(ctx context.Context, key string, req backend.SubscriptionRequest) (*backend.StatusResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func proHandoff() Handoff {
	u := pricing.UsageParameters{APICalls: 25000, Resolution: pricing.Resolution1080p, Languages: 5, Support: pricing.SupportPriority}
	return NewHandoff(catalog.MustLookup(catalog.SlugPro), IntervalMonthly, decimal.NewFromInt(154), &u)
}

func TestSubmitSuccess(t *testing.T) {
	s := &fakeSubmitter{resp: &backend.StatusResponse{Status: "success", Message: "Welcome to Pro"}}
	f := NewForm(proHandoff())
	f.newKey = func() string { return "key-1" }

	require.NoError(t, f.Submit(context.Background(), s, validInstrument()))
	assert.Equal(t, StateSuccess, f.State())
	assert.Equal(t, "Welcome to Pro", f.Message)
	assert.Equal(t, SuccessRedirect, f.Redirect())

	require.Len(t, s.calls, 1)
	req := s.calls[0]
	assert.Equal(t, "pro", req.PlanSlug)
	assert.Equal(t, "4111111111111111", req.PaymentMethod.CardNumber)
	assert.Equal(t, "Ada Lovelace", req.PaymentMethod.CardHolder)
	require.NotNil(t, req.UsageDetails.APICalls)
	assert.Equal(t, 25000, *req.UsageDetails.APICalls)
	assert.Equal(t, "1080p", req.UsageDetails.Resolution)
	assert.Equal(t, "priority", req.UsageDetails.Support)
	assert.Nil(t, req.BillingAddress)
	assert.Equal(t, []string{"key-1"}, s.keys)
}

func TestSubmitInvalidNeverCallsBackend(t *testing.T) {
	s := &fakeSubmitter{resp: &backend.StatusResponse{Status: "success"}}
	f := NewForm(proHandoff())

	in := validInstrument()
	in.CardNumber = "411111111111"
	err := f.Submit(context.Background(), s, in)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.calls)
	assert.Equal(t, StateIdle, f.State())
	assert.Contains(t, f.FieldErrors, "card_number")
	assert.Equal(t, in, f.Values)
	assert.Empty(t, f.Redirect())
}

func TestSubmitFailureKeepsValues(t *testing.T) {
	tests := []struct {
		name    string
		resp    *backend.StatusResponse
		err     error
		message string
	}{
		{
			name:    "status not success with message",
			resp:    &backend.StatusResponse{Status: "error", Message: "Card declined"},
			message: "Card declined",
		},
		{
			name:    "status missing",
			resp:    &backend.StatusResponse{},
			message: GenericFailureMessage,
		},
		{
			name:    "non-2xx with message",
			err:     &backend.APIError{Status: http.StatusUnprocessableEntity, Message: "Expired card"},
			message: "Expired card",
		},
		{
			name:    "non-2xx without message",
			err:     &backend.APIError{Status: http.StatusInternalServerError},
			message: GenericFailureMessage,
		},
		{
			name:    "transport",
			err:     fmt.Errorf("%w: dial tcp: refused", backend.ErrTransport),
			message: ConnectionFailureMessage,
		},
		{
			name:    "timeout",
			err:     context.DeadlineExceeded,
			message: ConnectionFailureMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSubmitter{resp: tt.resp, err: tt.err}
			f := NewForm(proHandoff())
			in := validInstrument()
			in.BillingAddress = &Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

			err := f.Submit(context.Background(), s, in)
			assert.ErrorIs(t, err, ErrSubmitFailed)
			assert.Equal(t, StateError, f.State())
			assert.Equal(t, tt.message, f.Message)
			assert.Equal(t, in, f.Values)
			assert.Len(t, s.calls, 1)
			assert.Empty(t, f.Redirect())
		})
	}
}

func TestSubmitCanBeRetriedAfterError(t *testing.T) {
	s := &fakeSubmitter{resp: &backend.StatusResponse{Status: "error", Message: "Card declined"}}
	f := NewForm(proHandoff())
	keys := []string{"a", "b"}
	f.newKey = func() string {
		k := keys[0]
		keys = keys[1:]
		return k
	}

	require.Error(t, f.Submit(context.Background(), s, validInstrument()))
	s.resp = &backend.StatusResponse{Status: "success"}
	require.NoError(t, f.Submit(context.Background(), s, validInstrument()))

	assert.Equal(t, StateSuccess, f.State())
	assert.Equal(t, DefaultSuccessMessage, f.Message)
	assert.Equal(t, []string{"a", "b"}, s.keys)
	assert.Equal(t, "b", f.IdempotencyKey)
}

func TestSubmitUsesRenderedKey(t *testing.T) {
	s := &fakeSubmitter{resp: &backend.StatusResponse{Status: "success"}}
	f := NewForm(proHandoff())
	f.IdempotencyKey = "from-page"
	f.newKey = func() string { t.Fatal("minted a key although the page carried one"); return "" }

	require.NoError(t, f.Submit(context.Background(), s, validInstrument()))
	assert.Equal(t, []string{"from-page"}, s.keys)
}

func TestSubmitKeepsKeyAfterTransportFailure(t *testing.T) {
	s := &fakeSubmitter{err: fmt.Errorf("%w: connection reset", backend.ErrTransport)}
	f := NewForm(proHandoff())
	keys := []string{"a", "b"}
	f.newKey = func() string {
		k := keys[0]
		keys = keys[1:]
		return k
	}
	assert.Equal(t, "a", f.Key())

	require.ErrorIs(t, f.Submit(context.Background(), s, validInstrument()), ErrSubmitFailed)
	assert.Equal(t, "a", f.Key())

	s.err = nil
	s.resp = &backend.StatusResponse{Status: "success"}
	require.NoError(t, f.Submit(context.Background(), s, validInstrument()))
	assert.Equal(t, []string{"a", "a"}, s.keys)
	assert.Equal(t, []string{"b"}, keys)
}

func TestSubmitRejectsSecondAttemptWhileInFlight(t *testing.T) {
	s := &fakeSubmitter{
		resp:    &backend.StatusResponse{Status: "success"},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	f := NewForm(proHandoff())

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background(), s, validInstrument()) }()
	<-s.entered

	assert.Equal(t, StateSubmitting, f.State())
	err := f.Submit(context.Background(), s, validInstrument())
	assert.True(t, errors.Is(err, ErrSubmitInFlight))

	close(s.block)
	require.NoError(t, <-done)
	assert.Len(t, s.calls, 1)

	assert.ErrorIs(t, f.Submit(context.Background(), s, validInstrument()), ErrAlreadyPaid)
	assert.Len(t, s.calls, 1)
}

func TestBuildPayloadCopiesAddress(t *testing.T) {
	in := validInstrument()
	in.BillingAddress = &Address{Line1: " 1 Main St ", City: "Springfield", PostalCode: "12345", Country: "US"}

	req := BuildPayload(proHandoff(), in)
	require.NotNil(t, req.BillingAddress)
	assert.Equal(t, "1 Main St", req.BillingAddress.Line1)
	assert.Empty(t, req.BillingAddress.State)
	require.NotNil(t, req.UsageDetails.Languages)
	assert.Equal(t, 5, *req.UsageDetails.Languages)
}
