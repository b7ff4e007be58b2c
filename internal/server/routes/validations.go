package routes

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/plutto-bridge/internal/notify"
	"github.com/fr0stylo/plutto-bridge/internal/plutto"
)

// ValidationCreator submits supplier validations to the provider.
type ValidationCreator interface {
	CreateEntityValidation(ctx context.Context, req plutto.ValidationRequest) (*plutto.ValidationResult, error)
}

// Notifier sends the confirmation emails after a successful submission.
type Notifier interface {
	Notify(ctx context.Context, kind notify.Kind, recipient string, d notify.Data) error
	NotifyInternalCreated(ctx context.Context, d notify.Data) error
}

// ValidationRoutes serves the submission form and handles form posts.
type ValidationRoutes struct {
	client    ValidationCreator
	notifier  Notifier
	accessKey string
	validate  *validator.Validate
	log       *slog.Logger
}

// NewValidationRoutes constructs the submission routes.
func NewValidationRoutes(client ValidationCreator, notifier Notifier, accessKey string, log *slog.Logger) *ValidationRoutes {
	if log == nil {
		log = slog.Default()
	}
	return &ValidationRoutes{
		client:    client,
		notifier:  notifier,
		accessKey: accessKey,
		validate:  validator.New(),
		log:       log,
	}
}

// RegisterRoutes registers the form endpoints.
func (v *ValidationRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/", v.handleForm)
	s.POST("/submit", v.handleSubmit)
}

type submitRequest struct {
	AccessKey       string `form:"accessKey" validate:"required"`
	ProviderTin     string `form:"providerTin" validate:"required"`
	ProviderName    string `form:"providerName" validate:"required"`
	ProviderEmail   string `form:"providerEmail" validate:"omitempty,email"`
	ProviderDetails string `form:"providerDetails"`
}

// FormView is the template model for the submission form.
type FormView struct {
	ErrorMsg        string
	ProviderTin     string
	ProviderName    string
	ProviderEmail   string
	ProviderDetails string
	CSRFToken       string
}

func (v *ValidationRoutes) handleForm(c echo.Context) error {
	return c.Render(http.StatusOK, "form.html", FormView{CSRFToken: csrfToken(c)})
}

func (v *ValidationRoutes) handleSubmit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return v.renderForm(c, http.StatusBadRequest, req,
			"Invalid or missing fields. Check your TIN format.")
	}
	req.AccessKey = strings.TrimSpace(req.AccessKey)
	req.ProviderTin = strings.TrimSpace(req.ProviderTin)
	req.ProviderName = strings.TrimSpace(req.ProviderName)
	req.ProviderEmail = strings.TrimSpace(req.ProviderEmail)
	req.ProviderDetails = strings.TrimSpace(req.ProviderDetails)

	// The access key gates everything else; a mismatch is terminal even
	// when the rest of the form is invalid.
	if subtle.ConstantTimeCompare([]byte(req.AccessKey), []byte(v.accessKey)) != 1 {
		v.log.WarnContext(c.Request().Context(), "submission rejected: bad access key",
			"tin", req.ProviderTin)
		return v.renderForm(c, http.StatusForbidden, req, "Invalid access key.")
	}

	if err := v.validate.Struct(req); err != nil {
		return v.renderForm(c, http.StatusBadRequest, req,
			"Invalid or missing fields. Check your TIN format.")
	}

	ctx := c.Request().Context()
	result, err := v.client.CreateEntityValidation(ctx, plutto.ValidationRequest{
		TIN:     req.ProviderTin,
		Name:    req.ProviderName,
		Email:   req.ProviderEmail,
		Details: req.ProviderDetails,
	})
	if err != nil {
		status, msg := plutto.UserMessage(err)
		v.log.ErrorContext(ctx, "validation submission failed",
			"tin", req.ProviderTin, "status", status, "error", err)
		return v.renderForm(c, status, req, msg)
	}

	data := notify.Data{
		Name:       req.ProviderName,
		TIN:        req.ProviderTin,
		Email:      req.ProviderEmail,
		Details:    req.ProviderDetails,
		TrackingID: result.ID,
		Raw:        result.Raw,
	}
	if req.ProviderEmail != "" {
		// The validation is already created; a failed confirmation email
		// must not fail the submission.
		if err := v.notifier.Notify(ctx, notify.KindReceived, req.ProviderEmail, data); err != nil {
			v.log.WarnContext(ctx, "collaborator confirmation email failed",
				"tin", req.ProviderTin, "error", err)
		}
	}
	if err := v.notifier.NotifyInternalCreated(ctx, data); err != nil {
		// Without persistence this email is the only record of the request.
		v.log.ErrorContext(ctx, "internal created notification failed",
			"tin", req.ProviderTin, "error", err)
	}

	return c.Render(http.StatusOK, "success.html", FormView{
		ProviderTin:  req.ProviderTin,
		ProviderName: req.ProviderName,
	})
}

func (v *ValidationRoutes) renderForm(c echo.Context, status int, req submitRequest, msg string) error {
	return c.Render(status, "form.html", FormView{
		ErrorMsg:        msg,
		ProviderTin:     req.ProviderTin,
		ProviderName:    req.ProviderName,
		ProviderEmail:   req.ProviderEmail,
		ProviderDetails: req.ProviderDetails,
		CSRFToken:       csrfToken(c),
	})
}

func csrfToken(c echo.Context) string {
	if token, ok := c.Get("csrf").(string); ok {
		return token
	}
	return ""
}
