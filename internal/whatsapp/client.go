package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a rejection from the Cloud API. StatusCode drives retry
// classification: [400,500) is permanent, everything else is retryable.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp: api error %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure class may succeed on a later
// attempt. 4xx responses are the caller's fault and never retried; this
// includes 429, matching the behavior the rest of the system was built
// against even though rate limits are arguably retryable.
func (e *APIError) Retryable() bool {
	return e.StatusCode < 400 || e.StatusCode >= 500
}

// Client talks to the WhatsApp Cloud API.
//
// POST {baseURL}/{apiVersion}/{phoneNumberID}/messages with bearer auth.
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

func NewClient(baseURL, apiVersion string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type sendRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *TextPayload     `json:"text,omitempty"`
	Image            *MediaPayload    `json:"image,omitempty"`
	Audio            *MediaPayload    `json:"audio,omitempty"`
	Template         *TemplatePayload `json:"template,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Send(ctx context.Context, creds Credentials, msg Outbound) (string, error) {
	if creds.PhoneNumberID == "" || creds.AccessToken == "" {
		return "", errors.New("whatsapp: missing credentials")
	}

	body := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               digitsOnly(msg.To),
		Type:             string(msg.Type),
		Text:             msg.Text,
		Image:            msg.Image,
		Audio:            msg.Audio,
		Template:         msg.Template,
	}
	if body.To == "" {
		return "", errors.New("whatsapp: empty recipient")
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, creds.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network/timeout failures carry no status and stay retryable.
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed sendResponse
	// A non-JSON body on an error status should not mask the status itself.
	_ = json.Unmarshal(payload, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(parsed.Messages) == 0 || parsed.Messages[0].ID == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "response missing message id"}
	}
	return parsed.Messages[0].ID, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
