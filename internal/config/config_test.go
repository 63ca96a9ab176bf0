package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "DATABASE_URL", "RATE_LIMIT_STORE", "RATE_LIMIT_SQLITE_PATH",
		"TURNSTILE_SECRET", "EMAILIT_API_KEY", "MAIL_FROM", "MAIL_TO",
		"ADMIN_PASSWORD", "SESSION_SECRET", "FRONTEND_URL", "TRUSTED_PROXIES",
		"MAX_BODY_BYTES", "LOG_LEVEL", "ENV",
	} {
		t.Setenv(k, "")
	}

	cfg := Parse()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite:submissions.db", cfg.DatabaseURL)
	assert.Equal(t, RateLimitMemory, cfg.RateLimitStore)
	assert.Equal(t, "ratelimit.db", cfg.RateLimitSQLitePath)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, int64(65536), cfg.MaxBodyBytes)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Empty(t, cfg.TurnstileSecret)
	assert.True(t, cfg.UsesDevSessionSecret())
	assert.False(t, cfg.Production())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/eco")
	t.Setenv("RATE_LIMIT_STORE", "SQLite")
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1 , ,192.168.0.0/16")
	t.Setenv("MAX_BODY_BYTES", "1024")
	t.Setenv("SESSION_SECRET", "a-real-secret")
	t.Setenv("ENV", "production")

	cfg := Parse()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://u:p@db:5432/eco", cfg.DatabaseURL)
	assert.Equal(t, RateLimitSQLite, cfg.RateLimitStore)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxies)
	assert.Equal(t, int64(1024), cfg.MaxBodyBytes)
	assert.False(t, cfg.UsesDevSessionSecret())
	assert.True(t, cfg.Production())
}

func TestParse_BadIntFallsBack(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "lots")
	assert.Equal(t, int64(65536), Parse().MaxBodyBytes)
}

func TestParseStore(t *testing.T) {
	tests := map[string]string{
		"":         RateLimitMemory,
		"memory":   RateLimitMemory,
		"bogus":    RateLimitMemory,
		"sqlite":   RateLimitSQLite,
		" SQLITE ": RateLimitSQLite,
		"none":     RateLimitNone,
		"off":      RateLimitNone,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseStore(in), "input %q", in)
	}
}

func TestValidate_ProductionNeedsSessionSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	assert.True(t, errors.Is(Parse().Validate(), ErrDevSessionSecret))

	t.Setenv("SESSION_SECRET", "a-real-secret")
	assert.NoError(t, Parse().Validate())
}

func TestValidate_DevDefaultAllowedOutsideProduction(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("SESSION_SECRET", "")
	assert.NoError(t, Parse().Validate())
}
