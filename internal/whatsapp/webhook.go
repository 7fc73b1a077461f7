// webhook.go - Inbound webhook payload types

package whatsapp

import (
	"encoding/json"
	"strings"
)

// Inbound message types
const (
	TypeText        = "text"
	TypeImage       = "image"
	TypeDocument    = "document"
	TypeAudio       = "audio"
	TypeInteractive = "interactive"
)

// WebhookPayload is the envelope Meta posts to the webhook
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				MessagingProduct string           `json:"messaging_product"`
				Messages         []webhookMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
}

type webhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Image       *webhookMedia `json:"image,omitempty"`
	Document    *webhookMedia `json:"document,omitempty"`
	Audio       *webhookMedia `json:"audio,omitempty"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply,omitempty"`
	} `json:"interactive,omitempty"`
}

// InboundMessage is the flattened first message of a webhook delivery
type InboundMessage struct {
	From      string
	MessageID string
	Type      string

	// Body is the trimmed text of a text message or the id of a pressed button
	Body string
	// Caption is the trimmed caption of an image or document
	Caption string

	MediaID  string
	MimeType string
	Filename string
}

// IsPDF reports whether the message carries a .pdf document
func (m *InboundMessage) IsPDF() bool {
	return m.Type == TypeDocument && strings.HasSuffix(strings.ToLower(m.Filename), ".pdf")
}

// ParseInbound decodes raw and returns its first message. ok is false for
// deliveries without messages (status callbacks) and for malformed JSON.
func ParseInbound(raw []byte) (*InboundMessage, bool) {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil, false
	}
	messages := payload.Entry[0].Changes[0].Value.Messages
	if len(messages) == 0 || messages[0].From == "" {
		return nil, false
	}

	m := messages[0]
	msg := &InboundMessage{From: m.From, MessageID: m.ID, Type: m.Type}

	switch m.Type {
	case TypeText:
		if m.Text != nil {
			msg.Body = strings.TrimSpace(m.Text.Body)
		}
	case TypeInteractive:
		if m.Interactive != nil && m.Interactive.Type == "button_reply" && m.Interactive.ButtonReply != nil {
			msg.Body = m.Interactive.ButtonReply.ID
		}
	case TypeImage:
		msg.fillMedia(m.Image)
	case TypeDocument:
		msg.fillMedia(m.Document)
	case TypeAudio:
		msg.fillMedia(m.Audio)
	}
	return msg, true
}

func (m *InboundMessage) fillMedia(media *webhookMedia) {
	if media == nil {
		return
	}
	m.MediaID = media.ID
	m.MimeType = media.MimeType
	m.Caption = strings.TrimSpace(media.Caption)
	m.Filename = media.Filename
}
