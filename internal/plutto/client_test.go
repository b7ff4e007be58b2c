package plutto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateEntityValidationBuildsFixedShapePayload(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ev_123","status":"pending"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		EntityValidationURL: server.URL,
		APIKey:              "pk_test",
		WebhookURL:          "https://bridge.example.com/plutto-webhook",
	}, nil)

	result, err := client.CreateEntityValidation(context.Background(), ValidationRequest{
		TIN:  "76.543.210-K",
		Name: "Acme Spa",
	})
	if err != nil {
		t.Fatalf("create validation: %v", err)
	}
	if result.ID != "ev_123" {
		t.Fatalf("unexpected tracking id: %q", result.ID)
	}
	if !strings.Contains(string(result.Raw), `"id":"ev_123"`) {
		t.Fatalf("raw response not preserved: %s", result.Raw)
	}
	if gotAuth != "Bearer pk_test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}

	ev, ok := captured["entity_validation"].(map[string]any)
	if !ok {
		t.Fatalf("missing entity_validation object: %#v", captured)
	}
	if ev["tin"] != "76.543.210-K" || ev["name"] != "Acme Spa" {
		t.Fatalf("unexpected identity fields: %#v", ev)
	}
	if ev["country"] != "CL" || ev["status"] != "approved" {
		t.Fatalf("unexpected fixed fields: %#v", ev)
	}
	if ev["webhook_url"] != "https://bridge.example.com/plutto-webhook" {
		t.Fatalf("unexpected webhook url: %#v", ev["webhook_url"])
	}
	if email, present := ev["contact_email"]; !present || email != nil {
		t.Fatalf("contact_email must be a present null, got %#v (present=%v)", email, present)
	}
	info, ok := ev["information_request"].(map[string]any)
	if !ok {
		t.Fatalf("missing information_request object: %#v", ev)
	}
	if desc, present := info["description"]; !present || desc != nil {
		t.Fatalf("description must be a present null, got %#v (present=%v)", desc, present)
	}
}

func TestCreateEntityValidationUsesTemplateVariantWithEmail(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"id":"ev_tpl"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		EntityValidationURL: server.URL,
		APIKey:              "pk_test",
		WebhookURL:          "https://bridge.example.com/plutto-webhook",
		TemplateID:          "tpl_42",
	}, nil)

	_, err := client.CreateEntityValidation(context.Background(), ValidationRequest{
		TIN:   "76.543.210-K",
		Name:  "Acme Spa",
		Email: "maria@acme.cl",
	})
	if err != nil {
		t.Fatalf("create validation: %v", err)
	}

	ev := captured["entity_validation"].(map[string]any)
	if email, _ := ev["contact_email"].(string); email != "maria@acme.cl" {
		t.Fatalf("unexpected contact_email: %#v", ev["contact_email"])
	}
	info, ok := ev["information_request"].(map[string]any)
	if !ok {
		t.Fatalf("missing information_request object: %#v", ev)
	}
	if info["template_id"] != "tpl_42" || info["recipient_email"] != "maria@acme.cl" {
		t.Fatalf("unexpected template request: %#v", info)
	}
	if _, present := info["description"]; present {
		t.Fatalf("template variant must not carry description: %#v", info)
	}
}

func TestCreateEntityValidationReturnsAPIErrorOnRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"message":"TIN has already been taken"}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{EntityValidationURL: server.URL, APIKey: "pk_test"}, nil)

	_, err := client.CreateEntityValidation(context.Background(), ValidationRequest{TIN: "1-9", Name: "Dup"})
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", apiErr.Status)
	}
	if apiErr.Detail() != "TIN has already been taken" {
		t.Fatalf("unexpected detail: %q", apiErr.Detail())
	}
}

func TestCreateEntityValidationClassifiesNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(Config{EntityValidationURL: server.URL, APIKey: "pk_test"}, nil)

	_, err := client.CreateEntityValidation(context.Background(), ValidationRequest{TIN: "1-9", Name: "Gone"})
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsNetworkError(err) {
		t.Fatalf("expected network classification, got %v", err)
	}
	if _, ok := AsAPIError(err); ok {
		t.Fatalf("network failure must not be an APIError: %v", err)
	}
}

func TestCreateEntityValidationToleratesMissingID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"pending"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{EntityValidationURL: server.URL, APIKey: "pk_test"}, nil)

	result, err := client.CreateEntityValidation(context.Background(), ValidationRequest{TIN: "1-9", Name: "NoID"})
	if err != nil {
		t.Fatalf("create validation: %v", err)
	}
	if result.ID != "" {
		t.Fatalf("expected empty tracking id, got %q", result.ID)
	}
}
