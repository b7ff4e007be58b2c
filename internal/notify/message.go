package notify

import (
	"fmt"
	"strings"
)

// Kind selects the collaborator notification template.
type Kind string

const (
	// KindReceived confirms that a validation request was submitted.
	KindReceived Kind = "received"
	// KindReady announces that a validation reached a terminal state.
	KindReady Kind = "ready"
)

// Data is the bag of fields the message templates draw from.
type Data struct {
	Name       string
	TIN        string
	Email      string
	Details    string
	TrackingID string
	Status     string
	EventType  string
	Raw        []byte
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

func collaboratorMessage(kind Kind, recipient string, d Data) *Message {
	if kind == KindReady {
		return &Message{
			To:      recipient,
			Subject: "Your supplier validation is ready",
			Body: fmt.Sprintf(`Hello,

Your supplier validation for "%s" (TIN: %s) is ready.
Validation ID: %s
Status: %s

Thanks for using our service.
`, d.Name, d.TIN, orNA(d.TrackingID), orNA(d.Status)),
		}
	}
	return &Message{
		To:      recipient,
		Subject: "Your supplier validation request was received",
		Body: fmt.Sprintf(`Hello,

We have received your request to validate the supplier "%s" (TIN: %s).
The validation process has started, and you'll receive another email once it's complete.

Reference ID: %s
`, d.Name, d.TIN, orNA(d.TrackingID)),
	}
}

func internalCreatedMessage(recipient string, d Data) *Message {
	body := fmt.Sprintf(`A new entity validation has been created.

TIN: %s
Name: %s
Email: %s
Details: %s
Validation ID: %s
`, d.TIN, d.Name, orNA(d.Email), orNA(d.Details), orNA(d.TrackingID))
	if len(d.Raw) > 0 {
		body += fmt.Sprintf("\nPlutto response:\n%s\n", d.Raw)
	}
	return &Message{
		To:      recipient,
		Subject: "New Supplier Validation Created",
		Body:    body,
	}
}

func internalReadyMessage(recipient string, d Data) *Message {
	return &Message{
		To:      recipient,
		Subject: fmt.Sprintf("Supplier Validation Ready (%s)", d.EventType),
		Body: fmt.Sprintf(`Plutto validation is now ready.

Validation ID: %s
Entity Name: %s
TIN: %s
Status: %s
Type: %s
`, orNA(d.TrackingID), d.Name, d.TIN, orNA(d.Status), d.EventType),
	}
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
