package notify

import (
	"strings"
	"testing"
)

func TestCollaboratorReceivedMessageCarriesIdentityAndTrackingID(t *testing.T) {
	t.Parallel()

	msg := collaboratorMessage(KindReceived, "maria@acme.cl", Data{
		Name:       "Acme Spa",
		TIN:        "76.543.210-K",
		TrackingID: "ev_123",
	})
	if msg.To != "maria@acme.cl" {
		t.Fatalf("unexpected recipient: %q", msg.To)
	}
	if msg.Subject != "Your supplier validation request was received" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	for _, want := range []string{`"Acme Spa"`, "76.543.210-K", "ev_123"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestCollaboratorReadyMessageCarriesFinalStatus(t *testing.T) {
	t.Parallel()

	msg := collaboratorMessage(KindReady, "maria@acme.cl", Data{
		Name:       "Acme Spa",
		TIN:        "76.543.210-K",
		TrackingID: "ev_123",
		Status:     "approved",
	})
	if msg.Subject != "Your supplier validation is ready" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Status: approved") {
		t.Fatalf("body missing status:\n%s", msg.Body)
	}
}

func TestInternalCreatedMessageIncludesRawProviderResponse(t *testing.T) {
	t.Parallel()

	msg := internalCreatedMessage("ops@example.com", Data{
		Name:       "Acme Spa",
		TIN:        "76.543.210-K",
		TrackingID: "ev_123",
		Raw:        []byte(`{"id":"ev_123","status":"pending"}`),
	})
	if msg.To != "ops@example.com" {
		t.Fatalf("unexpected recipient: %q", msg.To)
	}
	if !strings.Contains(msg.Body, `{"id":"ev_123","status":"pending"}`) {
		t.Fatalf("body missing raw response:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "Email: N/A") || !strings.Contains(msg.Body, "Details: N/A") {
		t.Fatalf("empty optional fields should render as N/A:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "Validation ID: ev_123") {
		t.Fatalf("body missing tracking id:\n%s", msg.Body)
	}
}

func TestInternalReadyMessageSubjectCarriesEventType(t *testing.T) {
	t.Parallel()

	msg := internalReadyMessage("ops@example.com", Data{
		Name:       "Acme Spa",
		TIN:        "76.543.210-K",
		TrackingID: "ev_123",
		Status:     "rejected",
		EventType:  "validation.ready_without_legal_cases",
	})
	if msg.Subject != "Supplier Validation Ready (validation.ready_without_legal_cases)" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Status: rejected") {
		t.Fatalf("body missing status:\n%s", msg.Body)
	}
}
