package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecovolt/backend/internal/config"
	"github.com/ecovolt/backend/internal/handler"
	"github.com/ecovolt/backend/internal/kv"
	"github.com/ecovolt/backend/internal/logging"
	"github.com/ecovolt/backend/internal/ratelimit"
	"github.com/ecovolt/backend/internal/repository"
	"github.com/ecovolt/backend/internal/service"
	"github.com/ecovolt/backend/pkg/auth"
	"github.com/ecovolt/backend/pkg/emailit"
	"github.com/ecovolt/backend/pkg/turnstile"
)

const sweepInterval = 5 * time.Minute

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to open database", "error", err)
	}
	defer closeRepo()
	if repo == nil {
		slog.Warn("persistence disabled, submissions will only be emailed")
	}

	store, closeStore, err := openCounterStore(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to open rate limit store", "store", cfg.RateLimitStore, "error", err)
	}
	defer closeStore()
	if sw, ok := store.(kv.Sweeper); ok {
		go kv.RunSweeper(ctx, sw, sweepInterval)
	}

	deps := service.ContactDeps{
		Repo:   repo,
		Mailer: emailit.NewClient(cfg.EmailItAPIKey, cfg.MailFrom, cfg.MailTo),
	}
	// Optional clients are only assigned when configured so the service
	// sees a nil interface rather than a typed nil.
	if store != nil {
		deps.Limiter = ratelimit.New(store, time.Now)
	} else {
		slog.Warn("rate limiting disabled")
	}
	if cfg.TurnstileSecret != "" {
		deps.Captcha = turnstile.NewClient(cfg.TurnstileSecret)
	} else {
		slog.Warn("TURNSTILE_SECRET not set, captcha verification disabled")
	}
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, admin login disabled")
	}
	if cfg.UsesDevSessionSecret() {
		slog.Warn("SESSION_SECRET is the development default")
	}

	contactService := service.NewContactService(deps)
	sessionSecret := auth.SessionSecretBytes(cfg.SessionSecret)

	h := handler.New(repo, cfg.FrontendURL)
	contactHandler := handler.NewContactHandler(contactService, handler.NewClientIPResolver(cfg.TrustedProxies))
	adminHandler := handler.NewAdminHandler(contactService, handler.AdminConfig{
		Password:      cfg.AdminPassword,
		SessionSecret: sessionSecret,
		SecureCookie:  cfg.Production(),
	})
	requireAdmin := auth.RequireAdmin(sessionSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /contact", contactHandler.Submit)

	// Admin
	mux.HandleFunc("POST /admin/login", adminHandler.Login)
	mux.HandleFunc("POST /admin/logout", adminHandler.Logout)
	mux.Handle("GET /admin/submissions", requireAdmin(http.HandlerFunc(adminHandler.List)))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.SecurityHeaders(handler.RequestLogger(h.CORS(handler.BodyLimit(cfg.MaxBodyBytes)(mux)))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// openCounterStore returns the rate-limit counter store selected by
// RATE_LIMIT_STORE, or nil when rate limiting is off.
func openCounterStore(ctx context.Context, cfg config.Config) (kv.Store, func(), error) {
	noop := func() {}
	switch cfg.RateLimitStore {
	case config.RateLimitNone:
		return nil, noop, nil
	case config.RateLimitSQLite:
		db, err := repository.OpenSQLite(cfg.RateLimitSQLitePath)
		if err != nil {
			return nil, noop, err
		}
		store := kv.NewSQLStore(db, time.Now)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return kv.NewMemoryStore(time.Now), noop, nil
	}
}
