package models

import "time"

// WhatsApp connection statuses
const (
	ConnectionDisconnected = "disconnected"
	ConnectionConnecting   = "connecting"
	ConnectionConnected    = "connected"
)

// WhatsAppConnection tracks one provisioned WhatsApp number
type WhatsAppConnection struct {
	ID                int        `json:"id"`
	PhoneID           string     `json:"phone_id"`
	Status            string     `json:"status"`
	AutoRespond       bool       `json:"auto_respond"`
	WelcomeMessage    string     `json:"welcome_message"`
	WebhookConfigured bool       `json:"webhook_configured"`
	LastSeen          *time.Time `json:"last_seen"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreateConnectionRequest represents the request body for registering a phone
type CreateConnectionRequest struct {
	PhoneID        string `json:"phone_id"`
	AutoRespond    bool   `json:"auto_respond"`
	WelcomeMessage string `json:"welcome_message"`
}

// SendMessageRequest represents the request body for sending a text
// from a connection's phone
type SendMessageRequest struct {
	ToNumber string `json:"to_number"`
	Message  string `json:"message"`
}

// UpdateConnectionRequest is a partial update of a connection
type UpdateConnectionRequest struct {
	Status            *string `json:"status,omitempty"`
	AutoRespond       *bool   `json:"auto_respond,omitempty"`
	WelcomeMessage    *string `json:"welcome_message,omitempty"`
	WebhookConfigured *bool   `json:"webhook_configured,omitempty"`
}
