package whatsapp

import "context"

// Sender is the provider-agnostic delivery interface used by the send
// pipeline.
//
// Rules:
// - No provider HTTP calls outside this package.
// - Credentials are passed per call; a company may use several numbers.
// - Implementations must return *APIError for provider rejections so the
//   retry layer can classify them by HTTP status.
type Sender interface {
	Send(ctx context.Context, creds Credentials, msg Outbound) (providerMessageID string, err error)
}

// Credentials identify the sending number at the provider.
type Credentials struct {
	PhoneNumberID string
	AccessToken   string
}

// Outbound is a provider-agnostic outbound message.
// Exactly one payload field matching Type is set; Validate enforces this at
// the boundary.
type Outbound struct {
	// To is the recipient phone number; digits-only conversion happens in
	// the client.
	To string

	Type PayloadType

	Text     *TextPayload
	Image    *MediaPayload
	Audio    *MediaPayload
	Template *TemplatePayload
}

type PayloadType string

const (
	PayloadText     PayloadType = "text"
	PayloadImage    PayloadType = "image"
	PayloadAudio    PayloadType = "audio"
	PayloadTemplate PayloadType = "template"
)

type TextPayload struct {
	Body string `json:"body"`
}

type MediaPayload struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type TemplatePayload struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}
