package whatsapp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// InboundMessage is a provider-neutral inbound text message
type InboundMessage struct {
	PhoneID     string
	From        string
	ContactName string
	Text        string
	Timestamp   time.Time
	FromMe      bool
}

// Meta WhatsApp Business webhook payload

type MetaWebhookPayload struct {
	Object string      `json:"object"`
	Entry  []MetaEntry `json:"entry"`
}

type MetaEntry struct {
	ID      string       `json:"id"`
	Changes []MetaChange `json:"changes"`
}

type MetaChange struct {
	Field string    `json:"field"`
	Value MetaValue `json:"value"`
}

type MetaValue struct {
	MessagingProduct string        `json:"messaging_product"`
	Metadata         MetaMetadata  `json:"metadata"`
	Contacts         []MetaContact `json:"contacts"`
	Messages         []MetaMessage `json:"messages"`
}

type MetaMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type MetaContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type MetaMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

// ParseMetaWebhook extracts inbound text messages from a Meta WhatsApp
// Business webhook body. Non-text messages are skipped.
func ParseMetaWebhook(body []byte) ([]InboundMessage, error) {
	var payload MetaWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse Meta webhook: %w", err)
	}

	var messages []InboundMessage
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			// Contact names are keyed by wa_id
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}

			for _, m := range change.Value.Messages {
				if m.Type != "text" {
					continue
				}

				ts := time.Now().UTC()
				if unix, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil {
					ts = time.Unix(unix, 0).UTC()
				}

				messages = append(messages, InboundMessage{
					PhoneID:     change.Value.Metadata.PhoneNumberID,
					From:        m.From,
					ContactName: names[m.From],
					Text:        m.Text.Body,
					Timestamp:   ts,
				})
			}
		}
	}
	return messages, nil
}

// Maytapi webhook payload

type MaytapiWebhookPayload struct {
	Type    string          `json:"type"`
	PhoneID json.Number     `json:"phone_id"`
	Message *MaytapiMessage `json:"message"`
	User    *MaytapiUser    `json:"user"`
}

type MaytapiMessage struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	FromMe bool   `json:"fromMe"`
}

type MaytapiUser struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// ParseMaytapiWebhook extracts the inbound text message from a Maytapi
// webhook body. Returns nil for non-message events, outbound echoes,
// and non-text messages.
func ParseMaytapiWebhook(body []byte) (*InboundMessage, error) {
	var payload MaytapiWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse Maytapi webhook: %w", err)
	}

	if payload.Type != "message" || payload.Message == nil || payload.User == nil {
		return nil, nil
	}
	if payload.Message.FromMe || payload.Message.Type != "text" {
		return nil, nil
	}

	return &InboundMessage{
		PhoneID:     payload.PhoneID.String(),
		From:        payload.User.Phone,
		ContactName: payload.User.Name,
		Text:        payload.Message.Text,
		Timestamp:   time.Now().UTC(),
	}, nil
}
