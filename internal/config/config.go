package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Auth          AuthConfig
	Plutto        PluttoConfig
	Mail          MailConfig
	Webhook       WebhookConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port          int
	PublicBaseURL string
}

type AuthConfig struct {
	AccessKey string
}

type PluttoConfig struct {
	EntityValidationURL string
	APIKey              string
	TemplateID          string
}

type MailConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	InternalRecipient string
}

type WebhookConfig struct {
	// AlwaysAcknowledge makes the webhook endpoint answer 200 even when
	// processing fails, so Plutto does not retry already-delivered events.
	AlwaysAcknowledge bool
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("bridge_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("bridge_port", 3000)
	v.SetDefault("access_key", "")
	v.SetDefault("plutto_entity_validation_url", "")
	v.SetDefault("plutto_api_key", "")
	v.SetDefault("plutto_template_id", "")
	v.SetDefault("app_base_url", "")
	v.SetDefault("email_host", "")
	v.SetDefault("email_port", 587)
	v.SetDefault("email_user", "")
	v.SetDefault("email_pass", "")
	v.SetDefault("internal_email", "")
	v.SetDefault("bridge_webhook_always_ack", true)
	v.SetDefault("bridge_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "plutto-bridge")
	v.SetDefault("bridge_service_name", "plutto-bridge")
	v.SetDefault("bridge_version", "dev")
	v.SetDefault("bridge_otel_sampling_ratio", 1.0)
	v.SetDefault("bridge_otel_metrics_console", false)

	env := resolveEnvironment(v)
	port := v.GetInt("bridge_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid BRIDGE_PORT: %d", port)
	}

	mailPort := v.GetInt("email_port")
	if mailPort <= 0 || mailPort > 65535 {
		return Config{}, fmt.Errorf("invalid EMAIL_PORT: %d", mailPort)
	}

	samplingRatio := v.GetFloat64("bridge_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = strings.TrimSpace(v.GetString("bridge_service_name"))
	}
	if serviceName == "" {
		serviceName = "plutto-bridge"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	metricsConsole := v.GetBool("bridge_otel_metrics_console")

	cfg := Config{
		Environment: env,
		Server: ServerConfig{
			Port:          port,
			PublicBaseURL: strings.TrimSpace(v.GetString("app_base_url")),
		},
		Auth: AuthConfig{
			AccessKey: strings.TrimSpace(v.GetString("access_key")),
		},
		Plutto: PluttoConfig{
			EntityValidationURL: strings.TrimSpace(v.GetString("plutto_entity_validation_url")),
			APIKey:              strings.TrimSpace(v.GetString("plutto_api_key")),
			TemplateID:          strings.TrimSpace(v.GetString("plutto_template_id")),
		},
		Mail: MailConfig{
			Host:              strings.TrimSpace(v.GetString("email_host")),
			Port:              mailPort,
			User:              strings.TrimSpace(v.GetString("email_user")),
			Password:          v.GetString("email_pass"),
			InternalRecipient: strings.TrimSpace(v.GetString("internal_email")),
		},
		Webhook: WebhookConfig{
			AlwaysAcknowledge: v.GetBool("bridge_webhook_always_ack"),
		},
		Observability: ObservabilityConfig{
			Enabled:           v.GetBool("bridge_otel_enabled") || otlpEndpoint != "" || metricsConsole,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))),
			OTLPMetricHeaders: mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))),
			ServiceName:       serviceName,
			ServiceVer:        strings.TrimSpace(v.GetString("bridge_version")),
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
	}

	if !cfg.IsLocalDevelopment() {
		if err := cfg.validateRequired(); err != nil {
			return Config{}, err
		}
	}
	if cfg.IsLocalDevelopment() {
		if cfg.Auth.AccessKey == "" {
			cfg.Auth.AccessKey = "plutto-bridge-local"
		}
		if cfg.Mail.Host == "" {
			cfg.Mail.Host = "localhost"
		}
	}

	return cfg, nil
}

func (c Config) validateRequired() error {
	required := []struct {
		name  string
		value string
	}{
		{"ACCESS_KEY", c.Auth.AccessKey},
		{"PLUTTO_ENTITY_VALIDATION_URL", c.Plutto.EntityValidationURL},
		{"PLUTTO_API_KEY", c.Plutto.APIKey},
		{"APP_BASE_URL", c.Server.PublicBaseURL},
		{"EMAIL_HOST", c.Mail.Host},
		{"INTERNAL_EMAIL", c.Mail.InternalRecipient},
	}
	missing := make([]string, 0, len(required))
	for _, entry := range required {
		if entry.value == "" {
			missing = append(missing, entry.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration outside local/dev environments: %s", strings.Join(missing, ", "))
	}
	return nil
}

// WebhookURL is the externally reachable callback URL handed to Plutto.
func (c Config) WebhookURL() string {
	return strings.TrimRight(c.Server.PublicBaseURL, "/") + "/plutto-webhook"
}

func (c Config) IsLocalDevelopment() bool {
	switch c.Environment {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func resolveEnvironment(v *viper.Viper) string {
	env := strings.ToLower(strings.TrimSpace(v.GetString("bridge_env")))
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(v.GetString("app_env")))
	}
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(v.GetString("go_env")))
	}
	return env
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.TrimSpace(pair[0])
		value := strings.TrimSpace(pair[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
