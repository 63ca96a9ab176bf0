package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ecovolt/backend/internal/model"
	"github.com/ecovolt/backend/internal/service"
	"github.com/ecovolt/backend/pkg/auth"
)

// AdminHandler serves the password-gated submissions view.
type AdminHandler struct {
	contactService service.ContactService
	password       string
	sessionSecret  []byte
	secureCookie   bool
	now            func() time.Time
}

// AdminConfig holds the admin login settings.
type AdminConfig struct {
	Password      string
	SessionSecret []byte
	SecureCookie  bool
}

func NewAdminHandler(contactService service.ContactService, cfg AdminConfig) *AdminHandler {
	return &AdminHandler{
		contactService: contactService,
		password:       cfg.Password,
		sessionSecret:  cfg.SessionSecret,
		secureCookie:   cfg.SecureCookie,
		now:            time.Now,
	}
}

// Login handles POST /admin/login with form field "password".
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.password == "" {
		slog.Warn("admin login attempted but ADMIN_PASSWORD is not set")
		writeError(w, http.StatusInternalServerError, "admin_password_not_set")
		return
	}
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}

	if !auth.PasswordMatches(r.PostFormValue("password"), h.password) {
		writeError(w, http.StatusUnauthorized, "invalid_password")
		return
	}

	expires := h.now().Add(auth.SessionTTL)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    auth.CreateSessionToken(auth.AdminSubject, expires, h.sessionSecret),
		Path:     auth.SessionCookiePath,
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles POST /admin/logout.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    "",
		Path:     auth.SessionCookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// List handles GET /admin/submissions?page=N. Must be mounted behind
// auth.RequireAdmin.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.contactService.List(r.Context(), page)
	if err != nil {
		slog.Error("list submissions failed", "page", page, "error", err)
	}
	if result == nil {
		result = &model.SubmissionPage{Page: page, PageSize: service.AdminPageSize}
	}
	if result.Rows == nil {
		result.Rows = []*model.Submission{}
	}
	writeJSON(w, http.StatusOK, result)
}
