package message

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Content is the message payload as a tagged variant: exactly the field
// matching Type is set. Validate enforces this at the system boundary so
// storage and the provider adapter never see a mixed or empty payload.
type Content struct {
	Type ContentType `json:"type"`

	Text     *TextContent     `json:"text,omitempty"`
	Image    *MediaContent    `json:"image,omitempty"`
	Audio    *MediaContent    `json:"audio,omitempty"`
	Template *TemplateContent `json:"template,omitempty"`
}

type ContentType string

const (
	ContentText     ContentType = "text"
	ContentImage    ContentType = "image"
	ContentAudio    ContentType = "audio"
	ContentTemplate ContentType = "template"
)

type TextContent struct {
	Body string `json:"body"`
}

type MediaContent struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type TemplateContent struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

var ErrInvalidContent = errors.New("invalid message content")

func (c Content) Validate() error {
	set := 0
	if c.Text != nil {
		set++
	}
	if c.Image != nil {
		set++
	}
	if c.Audio != nil {
		set++
	}
	if c.Template != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: exactly one payload must be set, got %d", ErrInvalidContent, set)
	}

	switch c.Type {
	case ContentText:
		if c.Text == nil || strings.TrimSpace(c.Text.Body) == "" {
			return fmt.Errorf("%w: text body required", ErrInvalidContent)
		}
	case ContentImage:
		if c.Image == nil || c.Image.Link == "" {
			return fmt.Errorf("%w: image link required", ErrInvalidContent)
		}
	case ContentAudio:
		if c.Audio == nil || c.Audio.Link == "" {
			return fmt.Errorf("%w: audio link required", ErrInvalidContent)
		}
	case ContentTemplate:
		if c.Template == nil || c.Template.Name == "" || c.Template.Language == "" {
			return fmt.Errorf("%w: template name and language required", ErrInvalidContent)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidContent, c.Type)
	}
	return nil
}

const previewMaxLen = 120

// Preview renders the short text shown in conversation list rows.
func (c Content) Preview() string {
	var p string
	switch c.Type {
	case ContentText:
		if c.Text != nil {
			p = c.Text.Body
		}
	case ContentImage:
		p = "[image]"
		if c.Image != nil && c.Image.Caption != "" {
			p = "[image] " + c.Image.Caption
		}
	case ContentAudio:
		p = "[audio]"
	case ContentTemplate:
		p = "[template]"
		if c.Template != nil {
			p = "[template] " + c.Template.Name
		}
	}
	if utf8.RuneCountInString(p) > previewMaxLen {
		runes := []rune(p)
		p = string(runes[:previewMaxLen-1]) + "…"
	}
	return p
}
