package models

import "time"

// Broker is the distribution profile attached to a user account.
// DistributionOrder is the static round-robin position; lower goes first,
// ties break on ID ascending.
type Broker struct {
	ID                int       `json:"id"`
	UserID            int       `json:"user_id"`
	DistributionOrder int       `json:"distribution_order"`
	IsActive          bool      `json:"is_active"`
	MaxLeadsPerDay    int       `json:"max_leads_per_day"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// User is populated on reads that join the account row
	User *User `json:"user,omitempty"`
}

// CreateBrokerRequest represents the request body for enrolling a user as a broker
type CreateBrokerRequest struct {
	UserID            int  `json:"user_id"`
	DistributionOrder int  `json:"distribution_order"`
	MaxLeadsPerDay    *int `json:"max_leads_per_day,omitempty"`
}

// UpdateBrokerRequest represents the request body for updating a broker profile.
// Pointer fields distinguish "not sent" from zero values.
type UpdateBrokerRequest struct {
	DistributionOrder *int  `json:"distribution_order,omitempty"`
	IsActive          *bool `json:"is_active,omitempty"`
	MaxLeadsPerDay    *int  `json:"max_leads_per_day,omitempty"`
}

// ReorderBrokersRequest assigns new distribution positions in one shot.
// The slice index becomes the broker's distribution_order.
type ReorderBrokersRequest struct {
	BrokerIDs []int `json:"broker_ids"`
}

// BrokerDailyLoad is a broker plus how many leads it received today
type BrokerDailyLoad struct {
	Broker     *Broker `json:"broker"`
	LeadsToday int     `json:"leads_today"`
}
