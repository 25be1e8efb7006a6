package distribution

import (
	"context"
	"errors"
	"time"

	"lead-backend/internal/models"
)

// ErrLeadNotFound is returned when the lead to distribute does not exist
var ErrLeadNotFound = errors.New("lead not found")

// ErrAlreadyAssigned is returned when the lead already has an owner
var ErrAlreadyAssigned = errors.New("lead already assigned")

// Store runs engine work inside one database transaction. Concurrent
// distributions of the same lead must serialize on GetLeadForUpdate so
// that at most one transaction commits an assignment.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the slice of storage the engine needs while holding a transaction
type Tx interface {
	// GetLeadForUpdate loads and row-locks the lead
	GetLeadForUpdate(ctx context.Context, leadID int) (*models.Lead, error)

	// ActiveBrokersForUpdate returns eligible brokers ordered by
	// distribution_order asc, ties by id asc, row-locked for the
	// duration of the transaction
	ActiveBrokersForUpdate(ctx context.Context) ([]*models.Broker, error)

	// CountAssignedSince counts ledger entries for a broker account
	// since the given instant
	CountAssignedSince(ctx context.Context, brokerUserID int, since time.Time) (int, error)

	// MarkLeadAssigned points the lead at the broker account
	MarkLeadAssigned(ctx context.Context, leadID, brokerUserID int, at time.Time) error

	// RecordAssignment appends a ledger entry
	RecordAssignment(ctx context.Context, d *models.LeadDistribution) error
}
