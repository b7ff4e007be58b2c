package routes

import (
	"github.com/labstack/echo/v4"

	pluttowebhook "github.com/fr0stylo/plutto-bridge/internal/webhooks/plutto"
)

// WebhookRoutes registers webhook endpoints.
type WebhookRoutes struct {
	plutto *pluttowebhook.Handler
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(h *pluttowebhook.Handler) *WebhookRoutes {
	return &WebhookRoutes{plutto: h}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/plutto-webhook", w.handlePluttoWebhook)
}

func (w *WebhookRoutes) handlePluttoWebhook(c echo.Context) error {
	return w.plutto.Handle(c.Response(), c.Request())
}
