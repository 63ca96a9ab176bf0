package service

import (
	"strings"
	"testing"

	"github.com/ecovolt/backend/internal/model"
)

func TestComposeNotification_Text(t *testing.T) {
	sub := &model.Submission{
		Name:        "Thandi",
		Email:       "thandi@example.com",
		Phone:       "082",
		ProjectType: "Solar",
		Message:     "line one\nline two",
		IP:          "203.0.113.7",
		UserAgent:   "curl/8",
	}

	msg := composeNotification(sub)

	if msg.Subject != "New contact submission — Thandi" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	wantText := "Name: Thandi\nEmail: thandi@example.com\nPhone: 082\nProject: Solar\nIP: 203.0.113.7\nUA: curl/8\n\nMessage:\nline one\nline two"
	if msg.Text != wantText {
		t.Errorf("unexpected text body:\n%s", msg.Text)
	}
}

func TestComposeNotification_HTMLEscapesUserInput(t *testing.T) {
	sub := &model.Submission{
		Name:        `<script>alert("x")</script>`,
		Email:       "a&b@example.com",
		Phone:       `"><img src=x>`,
		ProjectType: "<b>",
		Message:     "hi <i>there</i>\r\nsecond & last",
		IP:          "203.0.113.7",
		UserAgent:   "<ua>",
	}

	msg := composeNotification(sub)

	for _, raw := range []string{"<script>", "<img", "<i>", "<b>", "<ua>", `"x"`} {
		if strings.Contains(msg.HTML, raw) {
			t.Errorf("HTML body contains unescaped %q:\n%s", raw, msg.HTML)
		}
	}
	if !strings.Contains(msg.HTML, "hi &lt;i&gt;there&lt;/i&gt;<br/>second &amp; last") {
		t.Errorf("message newlines not converted or not escaped:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "a&amp;b@example.com") {
		t.Errorf("email not escaped:\n%s", msg.HTML)
	}
}

func TestComposeNotification_SubjectIsSingleLine(t *testing.T) {
	msg := composeNotification(&model.Submission{Name: "Eve\r\nBcc: x@example.com"})

	if strings.ContainsAny(msg.Subject, "\r\n") {
		t.Errorf("subject must not contain line breaks: %q", msg.Subject)
	}
}
