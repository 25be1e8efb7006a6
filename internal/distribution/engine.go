package distribution

import (
	"context"
	"errors"
	"log"
	"time"

	"lead-backend/internal/metrics"
	"lead-backend/internal/models"
	"lead-backend/internal/timeutil"

	"github.com/jackc/pgx/v5/pgconn"
)

// Engine assigns leads to brokers. Selection is deterministic: active
// brokers in distribution_order asc, ties by id asc, first broker whose
// ledger count for the current UTC day is strictly below its
// max_leads_per_day wins. The ledger is the only quota source of truth.
type Engine struct {
	store Store

	// Now is swappable for day-boundary tests
	Now func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		Now:   timeutil.Now,
	}
}

// Distribute picks a broker for the lead and assigns it atomically.
// Returns (nil, nil) when every eligible broker is at quota; the lead
// stays unassigned and no ledger entry is written.
func (e *Engine) Distribute(ctx context.Context, leadID int) (*models.Broker, error) {
	winner, err := e.distributeOnce(ctx, leadID)
	if isRetryable(err) {
		// One retry on serialization failure or deadlock
		metrics.DistributionConflictRetries.Inc()
		log.Printf("[Distribution] Retrying lead %d after conflict: %v", leadID, err)
		winner, err = e.distributeOnce(ctx, leadID)
	}
	if err != nil {
		return nil, err
	}

	if winner == nil {
		metrics.RosterExhaustedTotal.Inc()
		log.Printf("[Distribution] No broker available for lead %d, leaving unassigned", leadID)
		return nil, nil
	}

	metrics.LeadsDistributedTotal.WithLabelValues(models.DistributionAutomatic).Inc()
	return winner, nil
}

func (e *Engine) distributeOnce(ctx context.Context, leadID int) (*models.Broker, error) {
	var winner *models.Broker

	err := e.store.WithinTx(ctx, func(tx Tx) error {
		lead, err := tx.GetLeadForUpdate(ctx, leadID)
		if err != nil {
			return err
		}
		if lead.AssignedBrokerID != nil {
			return ErrAlreadyAssigned
		}

		brokers, err := tx.ActiveBrokersForUpdate(ctx)
		if err != nil {
			return err
		}

		now := e.Now()
		dayStart := timeutil.StartOfDay(now)

		for _, b := range brokers {
			count, err := tx.CountAssignedSince(ctx, b.UserID, dayStart)
			if err != nil {
				return err
			}
			if count >= b.MaxLeadsPerDay {
				continue
			}

			if err := tx.MarkLeadAssigned(ctx, leadID, b.UserID, now); err != nil {
				return err
			}
			if err := tx.RecordAssignment(ctx, &models.LeadDistribution{
				LeadID:             leadID,
				BrokerID:           b.UserID,
				DistributedAt:      now,
				DistributionMethod: models.DistributionAutomatic,
			}); err != nil {
				return err
			}

			winner = b
			return nil
		}

		// Roster exhausted: commit without touching the lead or ledger
		return nil
	})
	if err != nil {
		return nil, err
	}
	return winner, nil
}

// Assign hands the lead to a specific broker account, recording a
// manual ledger entry. Quota is not checked; manual assignment is an
// operator override, but the entry still counts against the broker's
// quota for the rest of the day.
func (e *Engine) Assign(ctx context.Context, leadID, brokerUserID int) error {
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		lead, err := tx.GetLeadForUpdate(ctx, leadID)
		if err != nil {
			return err
		}
		if lead.AssignedBrokerID != nil && *lead.AssignedBrokerID == brokerUserID {
			// Re-assigning to the same broker is a no-op
			return nil
		}

		now := e.Now()
		if err := tx.MarkLeadAssigned(ctx, leadID, brokerUserID, now); err != nil {
			return err
		}
		return tx.RecordAssignment(ctx, &models.LeadDistribution{
			LeadID:             leadID,
			BrokerID:           brokerUserID,
			DistributedAt:      now,
			DistributionMethod: models.DistributionManual,
		})
	})
	if err != nil {
		return err
	}

	metrics.LeadsDistributedTotal.WithLabelValues(models.DistributionManual).Inc()
	return nil
}

// isRetryable reports whether the error is a Postgres serialization
// failure (40001) or deadlock (40P01)
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
