package service

import (
	"context"

	"github.com/ecovolt/backend/internal/model"
	"github.com/ecovolt/backend/internal/ratelimit"
	"github.com/ecovolt/backend/pkg/emailit"
	"github.com/ecovolt/backend/pkg/turnstile"
)

// Pipeline stage names, reported in Outcome.Stage and in logs.
const (
	StageHoneypot   = "honeypot"
	StageTiming     = "timing"
	StageCaptcha    = "captcha"
	StageRateLimit  = "rate_limit"
	StageValidation = "validation"
	StageNotify     = "notify"
	StageDone       = "done"
)

// Outcome is the response the contact endpoint sends back: a status code
// and a short plain-text reason.
type Outcome struct {
	Status int
	Body   string
	Stage  string
}

// ContactService defines the contact-submission pipeline and the admin listing.
type ContactService interface {
	// Submit runs one form submission through every stage and reports how
	// the request should be answered. It never returns an error; failures
	// are expressed in the Outcome.
	Submit(ctx context.Context, form model.ContactForm) Outcome

	// List returns one page (1-based) of stored submissions, newest first.
	// A page past the end is clamped to the last page.
	List(ctx context.Context, page int) (*model.SubmissionPage, error)
}

// CaptchaVerifier checks a challenge token with the verification provider.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (turnstile.Result, error)
}

// RateLimiter counts an attempt from an address.
type RateLimiter interface {
	Check(ctx context.Context, ip string) (ratelimit.Decision, error)
}

// Mailer delivers the notification email.
type Mailer interface {
	Send(ctx context.Context, msg emailit.Email) error
}
