// Package notify sends the collaborator and internal email notifications.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Mailer delivers one message over the configured transport.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// Notifier turns message kinds and data bags into deliveries. One instance
// is constructed at startup and shared by the submission and webhook paths.
type Notifier struct {
	mailer   Mailer
	internal string
	log      *slog.Logger
}

// New constructs a Notifier targeting the given internal recipient.
func New(mailer Mailer, internalRecipient string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{mailer: mailer, internal: internalRecipient, log: log}
}

// Notify sends the collaborator notification of the given kind.
func (n *Notifier) Notify(ctx context.Context, kind Kind, recipient string, d Data) error {
	if recipient == "" {
		return fmt.Errorf("notify: recipient is required")
	}
	return n.mailer.Send(ctx, collaboratorMessage(kind, recipient, d))
}

// NotifyInternalCreated sends the internal audit message for a new
// validation, including the raw provider response.
func (n *Notifier) NotifyInternalCreated(ctx context.Context, d Data) error {
	return n.mailer.Send(ctx, internalCreatedMessage(n.internal, d))
}

// NotifyInternalReady sends the internal message for a completed validation.
func (n *Notifier) NotifyInternalReady(ctx context.Context, d Data) error {
	return n.mailer.Send(ctx, internalReadyMessage(n.internal, d))
}
