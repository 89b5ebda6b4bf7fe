package whatsapp

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"msgdesk/pkg/logger"
)

// Inbound is a provider-agnostic inbound message event.
type Inbound struct {
	From              string
	ProfileName       string
	ProviderMessageID string
	OccurredAt        time.Time

	Type  PayloadType
	Text  *TextPayload
	Image *MediaPayload
	Audio *MediaPayload
}

// Receipt is a delivery/read status update for a previously sent message.
type Receipt struct {
	ProviderMessageID string
	Status            string // delivered | read | failed
	OccurredAt        time.Time
}

// WebhookProcessor handles events after the owning company has been
// resolved. Implemented by the message service.
type WebhookProcessor interface {
	ProcessInbound(ctx context.Context, companyID int64, in Inbound) error
	ProcessReceipt(ctx context.Context, companyID int64, rc Receipt) error
}

// WebhookHandler terminates Meta's webhook callbacks.
//
// The GET handshake echoes hub.challenge when the verify token matches.
// The POST event body is the Cloud API notification format: entries of
// changes, each carrying metadata (the receiving phone_number_id), inbound
// messages, and status receipts.
type WebhookHandler struct {
	VerifyToken string

	// CompanyResolver maps a phone_number_id to the owning company.
	// Kept as a function injection to avoid persistence assumptions here.
	CompanyResolver func(ctx context.Context, phoneNumberID string) (int64, error)

	Processor WebhookProcessor
}

type webhookBody struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From      string        `json:"from"`
					ID        string        `json:"id"`
					Timestamp string        `json:"timestamp"`
					Type      string        `json:"type"`
					Text      *TextPayload  `json:"text"`
					Image     *MediaPayload `json:"image"`
					Audio     *MediaPayload `json:"audio"`
				} `json:"messages"`
				Statuses []struct {
					ID        string `json:"id"`
					Status    string `json:"status"`
					Timestamp string `json:"timestamp"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// HandleVerify answers the GET subscription handshake.
func (h *WebhookHandler) HandleVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.VerifyToken {
		c.Status(http.StatusForbidden)
		return
	}
	c.String(http.StatusOK, challenge)
}

// HandleEvent processes a webhook notification.
// Always acknowledges with 200 once the payload parses; the provider
// retries on non-2xx and we would rather drop one event than receive it
// forever.
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	var body webhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "malformed payload"})
		return
	}

	ctx := c.Request.Context()
	log := logger.FromGin(c)

	for _, entry := range body.Entry {
		for _, change := range entry.Changes {
			v := change.Value
			if v.Metadata.PhoneNumberID == "" {
				continue
			}
			companyID, err := h.CompanyResolver(ctx, v.Metadata.PhoneNumberID)
			if err != nil {
				log.Warn("webhook for unknown number", "phone_number_id", v.Metadata.PhoneNumberID, "err", err)
				continue
			}

			names := map[string]string{}
			for _, ct := range v.Contacts {
				names[ct.WaID] = ct.Profile.Name
			}

			for _, m := range v.Messages {
				in := Inbound{
					From:              m.From,
					ProfileName:       names[m.From],
					ProviderMessageID: m.ID,
					OccurredAt:        parseUnixTimestamp(m.Timestamp),
					Type:              PayloadType(m.Type),
					Text:              m.Text,
					Image:             m.Image,
					Audio:             m.Audio,
				}
				if err := h.Processor.ProcessInbound(ctx, companyID, in); err != nil {
					log.Error("inbound processing failed", "company_id", companyID, "provider_message_id", m.ID, "err", err)
				}
			}

			for _, st := range v.Statuses {
				rc := Receipt{
					ProviderMessageID: st.ID,
					Status:            st.Status,
					OccurredAt:        parseUnixTimestamp(st.Timestamp),
				}
				if err := h.Processor.ProcessReceipt(ctx, companyID, rc); err != nil {
					log.Error("receipt processing failed", "company_id", companyID, "provider_message_id", st.ID, "err", err)
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseUnixTimestamp(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(n, 0).UTC()
}
