package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/ecovolt/backend/internal/model"
	"github.com/ecovolt/backend/internal/service"
)

const maxMultipartMemory = 1 << 20

// ContactHandler serves the public contact form endpoint.
type ContactHandler struct {
	contactService service.ContactService
	ipResolver     *ClientIPResolver
}

// NewContactHandler creates a ContactHandler. A nil resolver uses the peer address.
func NewContactHandler(contactService service.ContactService, ipResolver *ClientIPResolver) *ContactHandler {
	return &ContactHandler{contactService: contactService, ipResolver: ipResolver}
}

// Submit handles POST /contact. The form may be urlencoded or multipart;
// the answer is always a plain-text reason with the pipeline's status.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		slog.Info("contact form rejected", "stage", "parse", "error", err)
		writeText(w, http.StatusBadRequest, "Invalid form")
		return
	}

	form := model.ContactForm{
		Company:      r.PostFormValue("company"),
		Timestamp:    r.PostFormValue("ts"),
		CaptchaToken: r.PostFormValue("cf-turnstile-response"),
		Name:         r.PostFormValue("name"),
		Email:        r.PostFormValue("email"),
		Phone:        r.PostFormValue("phone"),
		ProjectType:  r.PostFormValue("projectType"),
		Message:      r.PostFormValue("message"),
		IP:           h.ipResolver.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}

	out := h.contactService.Submit(r.Context(), form)
	writeText(w, out.Status, out.Body)
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxMultipartMemory)
	}
	return r.ParseForm()
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
