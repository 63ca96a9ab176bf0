package service

import (
	"html"
	"strings"

	"github.com/ecovolt/backend/internal/model"
	"github.com/ecovolt/backend/pkg/emailit"
)

// composeNotification renders the plain-text and HTML versions of the
// notification for sub. Every user-supplied value is escaped in the HTML.
func composeNotification(sub *model.Submission) emailit.Email {
	var text strings.Builder
	text.WriteString("Name: " + sub.Name + "\n")
	text.WriteString("Email: " + sub.Email + "\n")
	text.WriteString("Phone: " + sub.Phone + "\n")
	text.WriteString("Project: " + sub.ProjectType + "\n")
	text.WriteString("IP: " + sub.IP + "\n")
	text.WriteString("UA: " + sub.UserAgent + "\n")
	text.WriteString("\nMessage:\n")
	text.WriteString(sub.Message)

	esc := html.EscapeString
	message := strings.ReplaceAll(sub.Message, "\r\n", "\n")
	message = strings.ReplaceAll(esc(message), "\n", "<br/>")

	var body strings.Builder
	body.WriteString("<p><strong>Name:</strong> " + esc(sub.Name) + "<br/>\n")
	body.WriteString("<strong>Email:</strong> " + esc(sub.Email) + "<br/>\n")
	body.WriteString("<strong>Phone:</strong> " + esc(sub.Phone) + "<br/>\n")
	body.WriteString("<strong>Project:</strong> " + esc(sub.ProjectType) + "</p>\n")
	body.WriteString("<p><strong>Message</strong><br/>" + message + "</p>\n")
	body.WriteString(`<hr/><p style="color:#64748b;font-size:12px">IP: ` + esc(sub.IP) +
		"<br/>UA: " + esc(sub.UserAgent) + "</p>")

	return emailit.Email{
		Subject: "New contact submission — " + strings.Join(strings.Fields(sub.Name), " "),
		Text:    text.String(),
		HTML:    body.String(),
	}
}
