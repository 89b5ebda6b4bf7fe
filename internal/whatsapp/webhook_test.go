package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type recordingProcessor struct {
	inbound  []Inbound
	receipts []Receipt
}

func (p *recordingProcessor) ProcessInbound(ctx context.Context, companyID int64, in Inbound) error {
	p.inbound = append(p.inbound, in)
	return nil
}

func (p *recordingProcessor) ProcessReceipt(ctx context.Context, companyID int64, rc Receipt) error {
	p.receipts = append(p.receipts, rc)
	return nil
}

func webhookRouter(h *WebhookHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/webhooks/whatsapp", h.HandleVerify)
	r.POST("/webhooks/whatsapp", h.HandleEvent)
	return r
}

func TestHandleVerify(t *testing.T) {
	h := &WebhookHandler{VerifyToken: "secret"}
	r := webhookRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=12345", nil)
	r.ServeHTTP(w, req)
	if w.Code != 200 || w.Body.String() != "12345" {
		t.Fatalf("expected challenge echo, got %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	r.ServeHTTP(w, req)
	if w.Code != 403 {
		t.Fatalf("expected 403 for bad token, got %d", w.Code)
	}
}

const sampleEvent = `{
  "entry": [{
    "changes": [{
      "value": {
        "metadata": {"phone_number_id": "pn-1"},
        "contacts": [{"wa_id": "15551234567", "profile": {"name": "Ada"}}],
        "messages": [{
          "from": "15551234567",
          "id": "wamid.in1",
          "timestamp": "1700000000",
          "type": "text",
          "text": {"body": "hi there"}
        }],
        "statuses": [{
          "id": "wamid.out1",
          "status": "delivered",
          "timestamp": "1700000100"
        }]
      }
    }]
  }]
}`

func TestHandleEvent_DispatchesMessagesAndReceipts(t *testing.T) {
	proc := &recordingProcessor{}
	h := &WebhookHandler{
		VerifyToken: "secret",
		CompanyResolver: func(ctx context.Context, phoneNumberID string) (int64, error) {
			if phoneNumberID != "pn-1" {
				t.Fatalf("unexpected phone_number_id %q", phoneNumberID)
			}
			return 7, nil
		},
		Processor: proc,
	}
	r := webhookRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(sampleEvent))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(proc.inbound) != 1 {
		t.Fatalf("expected 1 inbound, got %d", len(proc.inbound))
	}
	in := proc.inbound[0]
	if in.From != "15551234567" || in.ProfileName != "Ada" || in.ProviderMessageID != "wamid.in1" {
		t.Fatalf("unexpected inbound: %+v", in)
	}
	if in.Type != PayloadText || in.Text == nil || in.Text.Body != "hi there" {
		t.Fatalf("unexpected inbound payload: %+v", in)
	}
	if in.OccurredAt.Unix() != 1700000000 {
		t.Fatalf("unexpected timestamp: %v", in.OccurredAt)
	}

	if len(proc.receipts) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(proc.receipts))
	}
	if proc.receipts[0].Status != "delivered" || proc.receipts[0].ProviderMessageID != "wamid.out1" {
		t.Fatalf("unexpected receipt: %+v", proc.receipts[0])
	}
}

func TestHandleEvent_MalformedBody(t *testing.T) {
	h := &WebhookHandler{VerifyToken: "secret", Processor: &recordingProcessor{}}
	r := webhookRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
