package models

import (
	"encoding/json"
	"time"
)

// Lead statuses
const (
	LeadStatusNew        = "new"
	LeadStatusInProgress = "in_progress"
	LeadStatusClosed     = "closed"
	LeadStatusLost       = "lost"
)

// Lead sources
const (
	LeadSourceManual   = "Manual"
	LeadSourceWhatsApp = "WhatsApp"
)

// Lead is a captured sales contact. AssignedBrokerID references users.id,
// not brokers.id, so the owning account survives broker profile changes.
type Lead struct {
	ID               int        `json:"id"`
	ContactName      string     `json:"contact_name"`
	Phone            string     `json:"phone"`
	InitialMessage   string     `json:"initial_message"`
	Source           string     `json:"source"`
	Status           string     `json:"status"`
	Notes            string     `json:"notes"`
	AssignedBrokerID *int       `json:"assigned_broker_id"`
	AssignedAt       *time.Time `json:"assigned_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// AssignedBroker carries the owning user's account on joined reads
	AssignedBroker *User `json:"assigned_broker,omitempty"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	ContactName    string `json:"contact_name"`
	Phone          string `json:"phone"`
	InitialMessage string `json:"initial_message"`
	Source         string `json:"source"`
	Notes          string `json:"notes"`
}

// UpdateLeadRequest is a partial update. Pointer fields distinguish
// "not sent" from explicit zero values. assigned_broker_id additionally
// distinguishes an explicit null (unassign) from absence, tracked by
// AssignedBrokerSet.
type UpdateLeadRequest struct {
	ContactName      *string `json:"contact_name,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	InitialMessage   *string `json:"initial_message,omitempty"`
	Source           *string `json:"source,omitempty"`
	Status           *string `json:"status,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	AssignedBrokerID *int    `json:"assigned_broker_id,omitempty"`

	AssignedBrokerSet bool `json:"-"`
}

func (r *UpdateLeadRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateLeadRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*r = UpdateLeadRequest(a)
	_, r.AssignedBrokerSet = keys["assigned_broker_id"]
	return nil
}

// LeadFilter narrows lead listings
type LeadFilter struct {
	Status           string
	Source           string
	AssignedBrokerID *int
	Unassigned       bool
	Search           string
	Limit            int
	Offset           int
}

// ValidLeadStatus reports whether s is one of the known pipeline statuses
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusInProgress, LeadStatusClosed, LeadStatusLost:
		return true
	}
	return false
}
