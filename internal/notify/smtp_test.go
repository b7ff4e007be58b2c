package notify

import (
	"strings"
	"testing"
	"time"
)

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewSMTPMailer(SMTPConfig{Host: "", Port: 587}); err == nil {
		t.Fatal("expected error for missing host")
	}
	if _, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 0}); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestBuildMessageFormatsHeadersAndBody(t *testing.T) {
	t.Parallel()

	mailer, err := NewSMTPMailer(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "notifications@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	mailer.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	raw := string(mailer.buildMessage(&Message{
		To:      "maria@acme.cl",
		Subject: "Your supplier validation is ready",
		Body:    "Hello,\n\nline two\n",
	}))

	header, body, found := strings.Cut(raw, "\r\n\r\n")
	if !found {
		t.Fatalf("no header/body separator in message:\n%s", raw)
	}
	for _, want := range []string{
		`From: "Plutto Notifications" <notifications@example.com>`,
		"To: maria@acme.cl",
		"Subject: Your supplier validation is ready",
		"Content-Type: text/plain; charset=UTF-8",
		"Message-Id: <",
	} {
		if !strings.Contains(header, want) {
			t.Fatalf("header missing %q:\n%s", want, header)
		}
	}
	if body != "Hello,\r\n\r\nline two\r\n" {
		t.Fatalf("body not CRLF-normalized: %q", body)
	}
}

func TestSanitizeHeaderValueStripsLineBreaks(t *testing.T) {
	t.Parallel()

	if got := sanitizeHeaderValue("subject\r\ninjected: header"); strings.ContainsAny(got, "\r\n") {
		t.Fatalf("line breaks survived sanitization: %q", got)
	}
}
