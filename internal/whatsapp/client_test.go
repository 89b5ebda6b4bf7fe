package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_SendBuildsCloudAPIRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "wamid.abc"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "v19.0")
	id, err := c.Send(context.Background(), Credentials{PhoneNumberID: "pn-1", AccessToken: "tok"}, Outbound{
		To:   "+1 (555) 123-4567",
		Type: PayloadText,
		Text: &TextPayload{Body: "Hello"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "wamid.abc" {
		t.Fatalf("expected provider id, got %q", id)
	}
	if gotPath != "/v19.0/pn-1/messages" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["recipient_type"] != "individual" {
		t.Fatalf("unexpected envelope: %v", gotBody)
	}
	if gotBody["to"] != "15551234567" {
		t.Fatalf("recipient must be digits-only, got %v", gotBody["to"])
	}
	if gotBody["type"] != "text" {
		t.Fatalf("unexpected type: %v", gotBody["type"])
	}
}

func TestClient_SendSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Invalid OAuth access token"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "v19.0")
	_, err := c.Send(context.Background(), Credentials{PhoneNumberID: "pn-1", AccessToken: "bad"}, Outbound{
		To:   "+15551234567",
		Type: PayloadText,
		Text: &TextPayload{Body: "x"},
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 401 || apiErr.Message != "Invalid OAuth access token" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if apiErr.Retryable() {
		t.Fatalf("401 must not be retryable")
	}
}

func TestClient_SendRejectsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "v19.0")
	_, err := c.Send(context.Background(), Credentials{PhoneNumberID: "pn-1", AccessToken: "tok"}, Outbound{
		To:   "+15551234567",
		Type: PayloadText,
		Text: &TextPayload{Body: "x"},
	})
	if err == nil {
		t.Fatalf("expected error for missing message id")
	}
}

func TestClient_SendValidatesInput(t *testing.T) {
	c := NewClient("https://example.invalid", "v19.0")

	if _, err := c.Send(context.Background(), Credentials{}, Outbound{To: "+15551234567", Type: PayloadText}); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
	if _, err := c.Send(context.Background(), Credentials{PhoneNumberID: "p", AccessToken: "t"}, Outbound{To: "no digits", Type: PayloadText}); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}
