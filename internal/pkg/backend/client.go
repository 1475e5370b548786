// Package backend is the REST client for the product API that owns accounts,
// subscriptions, usage accounting and AI jobs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lipsense/portal/internal/pkg/env"
	"github.com/lipsense/portal/internal/pkg/metrics"
)

const (
	defaultBaseURL = "http://localhost:8000/api"
	maxBodyBytes   = 2 << 20
)

var (
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("backend unreachable")
	// ErrNoData is returned by reads whose response carried no payload.
	ErrNoData = errors.New("backend returned no data")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.Status)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.Status, e.Message)
}

// Unauthorized reports whether the session token was rejected.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func NewClientFromEnv() *Client {
	return NewClient(
		strings.TrimSpace(env.GetEnv("BACKEND_BASE_URL", defaultBaseURL)),
		env.GetSeconds("BACKEND_TIMEOUT_SECONDS", 15*time.Second),
	)
}

// WithToken returns a copy of the client that authenticates as the token's owner.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

// CreateSubscription submits a checkout. The idempotency key lets the backend drop replays.
func (c *Client) CreateSubscription(ctx context.Context, idempotencyKey string, req SubscriptionRequest) (*StatusResponse, error) {
	var out StatusResponse
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}
	if err := c.do(ctx, "create_subscription", http.MethodPost, "/subscriptions", nil, headers, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelSubscription(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, "cancel_subscription", http.MethodPost, "/subscriptions/cancel", nil, nil, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubscribeNewsletter(ctx context.Context, email string) (*StatusResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	var out StatusResponse
	body := map[string]string{"email": email}
	if err := c.do(ctx, "newsletter", http.MethodPost, "/mail/newsletter", nil, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser loads the profile of the token owner.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	if c.token == "" {
		return nil, errors.New("access token is required")
	}
	return read[User](ctx, c, "get_user", "/user", nil)
}

func (c *Client) CurrentPlan(ctx context.Context) (*CurrentPlan, error) {
	return read[CurrentPlan](ctx, c, "current_plan", "/subscriptions/current", nil)
}

func (c *Client) UsageStats(ctx context.Context) (*UsageStats, error) {
	return read[UsageStats](ctx, c, "usage_stats", "/usage/stats", nil)
}

func (c *Client) Payments(ctx context.Context, page int) (*PaymentPage, error) {
	var out PaymentPage
	if err := c.do(ctx, "payments", http.MethodGet, "/payments", pageQuery(page), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Results(ctx context.Context, page int) (*ResultPage, error) {
	var out ResultPage
	if err := c.do(ctx, "results", http.MethodGet, "/results", pageQuery(page), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

func read[T any](ctx context.Context, c *Client, op, path string, q url.Values) (*T, error) {
	var wrapped envelope[T]
	if err := c.do(ctx, op, http.MethodGet, path, q, nil, nil, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data == nil {
		return nil, ErrNoData
	}
	return wrapped.Data, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, headers http.Header, in, out any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("invalid backend url: %w", err)
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	started := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		metrics.ObserveBackend(op, 0, time.Since(started))
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveBackend(op, resp.StatusCode, time.Since(started))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrTransport, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	trimmed := bytes.TrimSpace(raw)
	if out == nil {
		return nil
	}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrNoData
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// errorMessage pulls a human readable message out of an error body, if there is one.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if m := strings.TrimSpace(body.Message); m != "" {
		return m
	}
	return strings.TrimSpace(body.Error)
}
