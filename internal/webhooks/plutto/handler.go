// Package plutto processes Plutto validation completion webhooks.
package plutto

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/fr0stylo/plutto-bridge/internal/notify"
)

const maxPayloadBytes = 1 << 20

// Event types delivered when a validation reaches a terminal state.
const (
	EventValidationReady                  = "validation.ready"
	EventValidationReadyWithoutLegalCases = "validation.ready_without_legal_cases"
)

// Event is the incoming webhook payload.
type Event struct {
	Type       string      `json:"type"`
	Validation *Validation `json:"validation"`
}

// Validation carries the completed validation fields.
type Validation struct {
	ID           string `json:"id"`
	EntityName   string `json:"entity_name"`
	EntityTIN    string `json:"entity_tin"`
	ContactEmail string `json:"contact_email"`
	Status       string `json:"status"`
}

// Notifier is the notification surface the handler needs.
type Notifier interface {
	Notify(ctx context.Context, kind notify.Kind, recipient string, d notify.Data) error
	NotifyInternalReady(ctx context.Context, d notify.Data) error
}

// Handler validates webhook payloads and fans out completion notifications.
type Handler struct {
	notifier Notifier
	// alwaysAck answers 200 even when processing fails, so Plutto does
	// not retry events that were already delivered.
	alwaysAck bool
	log       *slog.Logger
}

// NewHandler constructs a Plutto webhook handler.
func NewHandler(notifier Notifier, alwaysAcknowledge bool, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{notifier: notifier, alwaysAck: alwaysAcknowledge, log: log}
}

// Handle validates and processes a webhook request.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	body, readErr := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))

	var event Event
	if err := json.Unmarshal(body, &event); err != nil || readErr != nil || event.Validation == nil {
		h.log.WarnContext(ctx, "webhook payload has no validation object",
			"error", err, "read_error", readErr)
		http.Error(w, "Missing validation object.", http.StatusBadRequest)
		return nil
	}

	processErr := h.process(ctx, event)
	if processErr != nil && !h.alwaysAck {
		http.Error(w, "Webhook processing error.", http.StatusInternalServerError)
		return nil
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
	return nil
}

func (h *Handler) process(ctx context.Context, event Event) error {
	v := event.Validation
	h.log.InfoContext(ctx, "webhook received",
		"type", event.Type,
		"validation_id", v.ID,
		"status", v.Status,
	)

	switch event.Type {
	case EventValidationReady, EventValidationReadyWithoutLegalCases:
	default:
		// Unknown event types are acknowledged without notifications.
		return nil
	}

	data := notify.Data{
		Name:       v.EntityName,
		TIN:        v.EntityTIN,
		Email:      v.ContactEmail,
		TrackingID: v.ID,
		Status:     v.Status,
		EventType:  event.Type,
	}

	var firstErr error
	if v.ContactEmail != "" {
		if err := h.notifier.Notify(ctx, notify.KindReady, v.ContactEmail, data); err != nil {
			h.log.ErrorContext(ctx, "collaborator ready notification failed",
				"validation_id", v.ID, "error", err)
			firstErr = err
		}
	}
	if err := h.notifier.NotifyInternalReady(ctx, data); err != nil {
		// The internal message is the only audit trail for this event.
		h.log.ErrorContext(ctx, "internal ready notification failed",
			"validation_id", v.ID, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
