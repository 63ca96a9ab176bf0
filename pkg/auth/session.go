package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token format")
	ErrBadSignature = errors.New("invalid signature")
	ErrExpired      = errors.New("session expired")
)

// CreateSessionToken signs subject and expiresAt into a cookie value of the
// form base64(subject|unix).hexmac.
func CreateSessionToken(subject string, expiresAt time.Time, secret []byte) string {
	payload := []byte(subject + "|" + strconv.FormatInt(expiresAt.Unix(), 10))
	return base64.URLEncoding.EncodeToString(payload) + "." + sign(payload, secret)
}

// VerifySessionToken checks the signature and expiry of token and returns
// its subject.
func VerifySessionToken(token string, secret []byte, now time.Time) (string, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", ErrInvalidToken
	}
	payload, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sign(payload, secret)), []byte(parts[1])) {
		return "", ErrBadSignature
	}

	subject, exp, ok := strings.Cut(string(payload), "|")
	if !ok {
		return "", ErrInvalidToken
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !now.Before(time.Unix(unix, 0)) {
		return "", ErrExpired
	}
	return subject, nil
}

func sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// PasswordMatches compares a submitted password with the configured one in
// constant time. An empty configured password never matches.
func PasswordMatches(submitted, configured string) bool {
	if configured == "" {
		return false
	}
	a := sha256.Sum256([]byte(submitted))
	b := sha256.Sum256([]byte(configured))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

const (
	sessionCookieName = "admin_session"
	// SessionCookiePath scopes the admin cookie to the admin routes.
	SessionCookiePath = "/admin"
	// SessionTTL is how long an admin login lasts.
	SessionTTL   = time.Hour
	minSecretLen = 32
)

// AdminSubject is the session subject for the shared admin login.
const AdminSubject = "admin"

// SessionCookieName is the admin session cookie name.
func SessionCookieName() string {
	return sessionCookieName
}

// SessionSecretBytes turns s into an HMAC key, zero-padding it to 32 bytes.
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
