// Package turnstile verifies Cloudflare Turnstile challenge tokens.
// Uses raw HTTP calls against the siteverify endpoint.
package turnstile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// VerifyURL is the Cloudflare siteverify endpoint.
const VerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// ErrNotConfigured is returned when no secret key is set.
var ErrNotConfigured = errors.New("turnstile: not configured")

// Result is the siteverify response body.
type Result struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	Action      string   `json:"action"`
}

// Client talks to the siteverify endpoint.
type Client struct {
	Secret     string
	VerifyURL  string
	httpClient *http.Client
}

// NewClient creates a Client for secret.
func NewClient(secret string) *Client {
	return &Client{
		Secret:     secret,
		VerifyURL:  VerifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify posts token and remoteIP to siteverify. A non-nil error means the
// call itself failed; a rejected token is reported through Result.Success.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	if c.Secret == "" {
		return Result{}, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("turnstile verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("turnstile verify: unexpected status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("turnstile verify: decode: %w", err)
	}
	return result, nil
}
