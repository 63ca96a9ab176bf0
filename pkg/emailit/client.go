// Package emailit sends transactional mail through the EmailIt HTTP API.
package emailit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIURL is the EmailIt send endpoint.
const APIURL = "https://api.emailit.com/v1/emails"

// DefaultSenderName is used when MAIL_FROM is a bare address.
const DefaultSenderName = "Eco Volt Website"

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("EmailIt API key not configured")
	// ErrAddressNotConfigured is returned when the sender or recipient is missing.
	ErrAddressNotConfigured = errors.New("Email not configured")
)

// APIError is a non-2xx response from EmailIt.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EmailIt API error: %d %s", e.StatusCode, e.Body)
}

// Email is one outgoing message. Sender and recipient come from the Client.
type Email struct {
	Subject string
	Text    string
	HTML    string
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Client is a raw HTTP EmailIt client.
type Client struct {
	APIKey     string
	From       string
	To         string
	APIURL     string
	httpClient *http.Client
}

// NewClient creates a Client. Empty values are allowed; Send reports them.
func NewClient(apiKey, from, to string) *Client {
	return &Client{
		APIKey:     apiKey,
		From:       from,
		To:         to,
		APIURL:     APIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers msg to the configured recipient. It makes exactly one attempt.
func (c *Client) Send(ctx context.Context, msg Email) error {
	if c.APIKey == "" {
		return ErrNotConfigured
	}
	if c.From == "" || c.To == "" {
		return ErrAddressNotConfigured
	}

	body, err := json.Marshal(sendRequest{
		From:    FormatFrom(c.From),
		To:      c.To,
		ReplyTo: c.From,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("EmailIt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		text := strings.TrimSpace(string(b))
		if err != nil || text == "" {
			text = "Unknown error"
		}
		return &APIError{StatusCode: resp.StatusCode, Body: text}
	}
	return nil
}

// FormatFrom wraps a bare address as "Eco Volt Website <addr>". Values that
// already carry a display name are returned unchanged.
func FormatFrom(from string) string {
	if strings.Contains(from, "<") {
		return from
	}
	return DefaultSenderName + " <" + from + ">"
}
