package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Rate-limit counter store backends.
const (
	RateLimitMemory = "memory"
	RateLimitSQLite = "sqlite"
	RateLimitNone   = "none"
)

const devSessionSecret = "dev-secret-change-in-production-32bytes"

// ErrDevSessionSecret is returned by Validate when production runs with the
// built-in SESSION_SECRET.
var ErrDevSessionSecret = errors.New("SESSION_SECRET must be set in production")

// Config is the process configuration, read once at startup.
type Config struct {
	Port                string
	DatabaseURL         string
	RateLimitStore      string
	RateLimitSQLitePath string
	TurnstileSecret     string
	EmailItAPIKey       string
	MailFrom            string
	MailTo              string
	AdminPassword       string
	SessionSecret       string
	FrontendURL         string
	TrustedProxies      []string
	MaxBodyBytes        int64
	LogLevel            string
	Env                 string
}

// Load reads .env (current and parent directory, existing variables win)
// and then parses the environment.
func Load() Config {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")
	return Parse()
}

// Parse builds a Config from the environment only.
func Parse() Config {
	return Config{
		Port:                getString("PORT", "8080"),
		DatabaseURL:         getString("DATABASE_URL", "sqlite:submissions.db"),
		RateLimitStore:      parseStore(getString("RATE_LIMIT_STORE", RateLimitMemory)),
		RateLimitSQLitePath: getString("RATE_LIMIT_SQLITE_PATH", "ratelimit.db"),
		TurnstileSecret:     getString("TURNSTILE_SECRET", ""),
		EmailItAPIKey:       getString("EMAILIT_API_KEY", ""),
		MailFrom:            getString("MAIL_FROM", ""),
		MailTo:              getString("MAIL_TO", ""),
		AdminPassword:       getString("ADMIN_PASSWORD", ""),
		SessionSecret:       getString("SESSION_SECRET", devSessionSecret),
		FrontendURL:         getString("FRONTEND_URL", "http://localhost:5173"),
		TrustedProxies:      parseList(getString("TRUSTED_PROXIES", "")),
		MaxBodyBytes:        int64(getInt("MAX_BODY_BYTES", 65_536)),
		LogLevel:            getString("LOG_LEVEL", "INFO"),
		Env:                 getString("ENV", ""),
	}
}

// Production reports whether ENV=production.
func (c Config) Production() bool {
	return c.Env == "production"
}

// UsesDevSessionSecret reports whether SESSION_SECRET was left at its default.
func (c Config) UsesDevSessionSecret() bool {
	return c.SessionSecret == devSessionSecret
}

// Validate rejects settings the server must not start with.
func (c Config) Validate() error {
	if c.Production() && c.UsesDevSessionSecret() {
		return ErrDevSessionSecret
	}
	return nil
}

func parseStore(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case RateLimitSQLite:
		return RateLimitSQLite
	case RateLimitNone, "off", "disabled":
		return RateLimitNone
	default:
		return RateLimitMemory
	}
}

func parseList(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
