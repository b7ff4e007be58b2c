package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	bridge "github.com/fr0stylo/plutto-bridge"
	"github.com/fr0stylo/plutto-bridge/internal/config"
	"github.com/fr0stylo/plutto-bridge/internal/notify"
	"github.com/fr0stylo/plutto-bridge/internal/observability"
	"github.com/fr0stylo/plutto-bridge/internal/plutto"
	"github.com/fr0stylo/plutto-bridge/internal/renderer"
	"github.com/fr0stylo/plutto-bridge/internal/server"
	"github.com/fr0stylo/plutto-bridge/internal/server/routes"
	pluttowebhook "github.com/fr0stylo/plutto-bridge/internal/webhooks/plutto"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	log := slog.New(observability.WrapSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	shutdownOtel, err := observability.SetupOpenTelemetry(context.Background(), log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(ctx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	rend, err := renderer.New()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
	})
	if err != nil {
		return fmt.Errorf("configure mailer: %w", err)
	}
	notifier := notify.New(mailer, cfg.Mail.InternalRecipient, log)

	client := plutto.NewClient(plutto.Config{
		EntityValidationURL: cfg.Plutto.EntityValidationURL,
		APIKey:              cfg.Plutto.APIKey,
		WebhookURL:          cfg.WebhookURL(),
		TemplateID:          cfg.Plutto.TemplateID,
	}, log)

	srv := server.New(log, rend, bridge.PublicFS)
	srv.RegisterRouter(routes.NewValidationRoutes(client, notifier, cfg.Auth.AccessKey, log))
	srv.RegisterRouter(routes.NewWebhookRoutes(
		pluttowebhook.NewHandler(notifier, cfg.Webhook.AlwaysAcknowledge, log),
	))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
	return srv.Start(addr)
}
