// Package plutto is the client for the Plutto entity-validation API.
package plutto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fr0stylo/plutto-bridge/internal/observability"
)

const maxResponseBytes = 1 << 20

// Config carries the provider settings for the client.
type Config struct {
	// EntityValidationURL is the full URL of the entity_validations endpoint.
	EntityValidationURL string
	APIKey              string
	// WebhookURL is this service's callback URL, included in every
	// validation so Plutto knows where to deliver completion events.
	WebhookURL string
	// TemplateID selects the information-request template variant when set.
	TemplateID string
}

// ValidationRequest is one supplier validation to create.
type ValidationRequest struct {
	TIN     string
	Name    string
	Email   string
	Details string
}

// ValidationResult is the provider's answer to a created validation. ID is
// the tracking id correlating the later completion webhook; Raw is the full
// response body, kept for the internal audit notification.
type ValidationResult struct {
	ID  string
	Raw json.RawMessage
}

// Client submits entity validations to Plutto.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient constructs a Plutto client. The default HTTP client is used so
// outbound calls go through the otel-instrumented transport.
func NewClient(cfg Config, log *slog.Logger) *Client {
	cfg.EntityValidationURL = strings.TrimSpace(cfg.EntityValidationURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.WebhookURL = strings.TrimSpace(cfg.WebhookURL)
	cfg.TemplateID = strings.TrimSpace(cfg.TemplateID)
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second, Transport: http.DefaultTransport},
		log:        log,
	}
}

type entityValidationPayload struct {
	EntityValidation entityValidation `json:"entity_validation"`
}

// Optional fields carry no omitempty: the provider contract requires the
// keys to be present as null even when empty.
type entityValidation struct {
	TIN                string  `json:"tin"`
	Name               string  `json:"name"`
	Country            string  `json:"country"`
	Status             string  `json:"status"`
	WebhookURL         string  `json:"webhook_url"`
	ContactEmail       *string `json:"contact_email"`
	InformationRequest any     `json:"information_request"`
}

type descriptionRequest struct {
	Description *string `json:"description"`
}

type templateRequest struct {
	TemplateID     string `json:"template_id"`
	RecipientEmail string `json:"recipient_email"`
}

// CreateEntityValidation submits a validation and returns its tracking id.
// Non-2xx responses yield *APIError; transport failures yield a plain error
// recognizable via IsNetworkError.
func (c *Client) CreateEntityValidation(ctx context.Context, req ValidationRequest) (*ValidationResult, error) {
	payload := entityValidationPayload{
		EntityValidation: entityValidation{
			TIN:                strings.TrimSpace(req.TIN),
			Name:               strings.TrimSpace(req.Name),
			Country:            "CL",
			Status:             "approved",
			WebhookURL:         c.cfg.WebhookURL,
			ContactEmail:       nullable(req.Email),
			InformationRequest: c.informationRequest(req),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("plutto: encode payload: %w", err)
	}

	ctx, span := observability.StartClientSpan(ctx, "plutto", "create_entity_validation")
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EntityValidationURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("plutto: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("plutto: request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("plutto: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Body: respBody}
		span.RecordError(apiErr)
		return nil, apiErr
	}

	var created struct {
		ID string `json:"id"`
	}
	// Missing or undecodable id is tolerated: the original treated it as
	// null and carried on.
	if err := json.Unmarshal(respBody, &created); err != nil {
		c.log.WarnContext(ctx, "Plutto response did not decode, continuing without tracking id", "error", err)
	}

	return &ValidationResult{ID: created.ID, Raw: respBody}, nil
}

func (c *Client) informationRequest(req ValidationRequest) any {
	if c.cfg.TemplateID != "" && strings.TrimSpace(req.Email) != "" {
		return templateRequest{
			TemplateID:     c.cfg.TemplateID,
			RecipientEmail: strings.TrimSpace(req.Email),
		}
	}
	return descriptionRequest{Description: nullable(req.Details)}
}

func nullable(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
