package hcaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lipsense/portal/internal/pkg/env"
)

const defaultEndpoint = "https://hcaptcha.com/siteverify"

var (
	ErrEmptyToken = errors.New("hCaptcha token is empty")
	ErrRejected   = errors.New("hCaptcha validation failed")
)

type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks a captcha response token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type Client struct {
	Secret     string
	SiteKey    string
	Endpoint   string
	HTTPClient *http.Client
}

func NewFromEnv() *Client {
	return &Client{
		Secret:     env.GetEnv("HCAPTCHA_SECRET", ""),
		SiteKey:    env.GetEnv("HCAPTCHA_SITEKEY", ""),
		Endpoint:   defaultEndpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a secret is configured. Forms skip the widget otherwise.
func (c *Client) Enabled() bool {
	return c != nil && c.Secret != ""
}

func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if c.Secret == "" {
		return fmt.Errorf("hCaptcha secret is not set")
	}

	formData := url.Values{
		"secret":   {c.Secret},
		"response": {token},
	}
	if remoteIP != "" {
		formData.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to hCaptcha API: %w", err)
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode hCaptcha API response: %w", err)
	}

	if !response.Success {
		if len(response.ErrorCodes) > 0 {
			return fmt.Errorf("%w: %s", ErrRejected, strings.Join(response.ErrorCodes, ", "))
		}
		return ErrRejected
	}
	return nil
}
