package models

import "time"

// Distribution methods
const (
	DistributionAutomatic = "automatic"
	DistributionManual    = "manual"
)

// LeadDistribution is one row of the append-only distribution ledger.
// BrokerID references users.id. The ledger, not the leads table, is the
// source of truth for daily quota counts.
type LeadDistribution struct {
	ID                 int       `json:"id"`
	LeadID             int       `json:"lead_id"`
	BrokerID           int       `json:"broker_id"`
	DistributedAt      time.Time `json:"distributed_at"`
	DistributionMethod string    `json:"distribution_method"`

	// Populated on joined reads
	LeadContactName string `json:"lead_contact_name,omitempty"`
	BrokerName      string `json:"broker_name,omitempty"`
}

// DistributionFilter narrows ledger listings
type DistributionFilter struct {
	LeadID   *int
	BrokerID *int
	Method   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}
