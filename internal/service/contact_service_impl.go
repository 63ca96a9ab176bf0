package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ecovolt/backend/internal/model"
	"github.com/ecovolt/backend/internal/repository"
)

const (
	// MinSubmitDelay is how long a form must have been open before it may be sent.
	MinSubmitDelay = 3 * time.Second
	// AdminPageSize is the number of rows per admin listing page.
	AdminPageSize = 20
)

// ErrMailerNotConfigured is reported when no Mailer was supplied.
var ErrMailerNotConfigured = errors.New("Email not configured")

// ContactDeps lists the pipeline's collaborators. Every field is optional;
// a nil field disables or degrades the matching stage:
//
//	Captcha  nil → verification skipped (development mode)
//	Limiter  nil → rate limiting skipped
//	Repo     nil → persistence skipped with a warning
//	Mailer   nil → notification fails with ErrMailerNotConfigured
type ContactDeps struct {
	Repo    repository.SubmissionRepository
	Captcha CaptchaVerifier
	Limiter RateLimiter
	Mailer  Mailer
	Now     func() time.Time
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo    repository.SubmissionRepository
	captcha CaptchaVerifier
	limiter RateLimiter
	mailer  Mailer
	now     func() time.Time
}

// NewContactService creates a ContactService from deps.
func NewContactService(deps ContactDeps) ContactService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &contactServiceImpl{
		repo:    deps.Repo,
		captcha: deps.Captcha,
		limiter: deps.Limiter,
		mailer:  deps.Mailer,
		now:     now,
	}
}

func (s *contactServiceImpl) Submit(ctx context.Context, form model.ContactForm) Outcome {
	log := slog.With("ip", form.IP)

	// Bots that fill the hidden field get a normal-looking success.
	if strings.TrimSpace(form.Company) != "" {
		log.Info("contact rejected", "stage", StageHoneypot)
		return Outcome{Status: http.StatusOK, Body: "OK", Stage: StageHoneypot}
	}

	now := s.now()
	if !openedLongEnough(form.Timestamp, now) {
		log.Info("contact rejected", "stage", StageTiming, "ts", form.Timestamp)
		return Outcome{Status: http.StatusBadRequest, Body: "Too fast", Stage: StageTiming}
	}

	if s.captcha != nil {
		if form.CaptchaToken == "" {
			log.Info("contact rejected", "stage", StageCaptcha, "reason", "missing token")
			return Outcome{Status: http.StatusBadRequest, Body: "Captcha missing", Stage: StageCaptcha}
		}
		res, err := s.captcha.Verify(ctx, form.CaptchaToken, form.IP)
		if err != nil {
			log.Warn("captcha verification call failed", "error", err)
			return Outcome{Status: http.StatusForbidden, Body: "Captcha failed", Stage: StageCaptcha}
		}
		if !res.Success {
			log.Info("contact rejected", "stage", StageCaptcha, "error_codes", res.ErrorCodes)
			return Outcome{Status: http.StatusForbidden, Body: "Captcha failed", Stage: StageCaptcha}
		}
	}

	if s.limiter != nil {
		decision, err := s.limiter.Check(ctx, form.IP)
		switch {
		case err != nil:
			// fail open
			log.Error("rate limit check failed", "error", err)
		case !decision.Allowed:
			log.Info("contact rejected", "stage", StageRateLimit, "reason", decision.Reason,
				"minute", decision.Minute, "day", decision.Day)
			return Outcome{Status: http.StatusTooManyRequests, Body: decision.Reason, Stage: StageRateLimit}
		}
	}

	sub := &model.Submission{
		Name:        strings.TrimSpace(form.Name),
		Email:       strings.TrimSpace(form.Email),
		Phone:       strings.TrimSpace(form.Phone),
		ProjectType: strings.TrimSpace(form.ProjectType),
		Message:     strings.TrimSpace(form.Message),
		IP:          form.IP,
		UserAgent:   form.UserAgent,
	}
	if sub.Name == "" || sub.Email == "" || sub.Message == "" {
		log.Info("contact rejected", "stage", StageValidation)
		return Outcome{Status: http.StatusBadRequest, Body: "Invalid input", Stage: StageValidation}
	}
	sub.CreatedAt = now.UTC().Format(model.TimestampLayout)

	s.persist(ctx, sub)

	if err := s.notify(ctx, sub); err != nil {
		log.Error("email send failed", "error", err, "submission_id", sub.ID)
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   "Email failed: " + err.Error(),
			Stage:  StageNotify,
		}
	}

	log.Info("contact accepted", "submission_id", sub.ID)
	return Outcome{Status: http.StatusOK, Body: "OK", Stage: StageDone}
}

// persist stores sub. Failures are logged and never reach the caller.
func (s *contactServiceImpl) persist(ctx context.Context, sub *model.Submission) {
	if s.repo == nil {
		slog.Warn("submission repository not configured, skipping persistence")
		return
	}
	if err := s.repo.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure submissions table", "error", err)
		return
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		slog.Error("failed to store submission", "error", err)
	}
}

func (s *contactServiceImpl) notify(ctx context.Context, sub *model.Submission) error {
	if s.mailer == nil {
		return ErrMailerNotConfigured
	}
	return s.mailer.Send(ctx, composeNotification(sub))
}

// List returns one page of submissions. Pages past the end are clamped to
// the last page. With no repository configured it returns an empty page.
func (s *contactServiceImpl) List(ctx context.Context, page int) (*model.SubmissionPage, error) {
	if page < 1 {
		page = 1
	}
	result := &model.SubmissionPage{
		Rows:     []*model.Submission{},
		Page:     page,
		PageSize: AdminPageSize,
	}
	if s.repo == nil {
		return result, nil
	}

	if err := s.repo.EnsureSchema(ctx); err != nil {
		return result, fmt.Errorf("ensure schema: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count submissions: %w", err)
	}
	if last := lastPage(total); page > last {
		page = last
		result.Page = page
	}
	rows, err := s.repo.List(ctx, model.SubmissionListOptions{
		Limit:  AdminPageSize,
		Offset: (page - 1) * AdminPageSize,
	})
	if err != nil {
		return result, fmt.Errorf("list submissions: %w", err)
	}

	result.Total = total
	if rows != nil {
		result.Rows = rows
	}
	return result, nil
}

// lastPage is the highest page number that can hold rows, at least 1.
func lastPage(total int) int {
	if total <= AdminPageSize {
		return 1
	}
	return (total + AdminPageSize - 1) / AdminPageSize
}

// openedLongEnough reports whether ts (ms since epoch) is present, numeric,
// non-zero and at least MinSubmitDelay before now.
func openedLongEnough(ts string, now time.Time) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(ts), 64)
	if err != nil || v == 0 || math.IsNaN(v) {
		return false
	}
	elapsed := float64(now.UnixMilli()) - v
	return elapsed >= float64(MinSubmitDelay.Milliseconds())
}
