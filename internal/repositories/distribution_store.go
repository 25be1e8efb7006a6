package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead-backend/internal/distribution"
	"lead-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DistributionStore is the pgx implementation of the engine's
// transactional store. Row locks on the lead and broker rows keep
// concurrent distributions of the same lead down to one winner.
type DistributionStore struct {
	DB *pgxpool.Pool
}

func NewDistributionStore(db *pgxpool.Pool) *DistributionStore {
	return &DistributionStore{DB: db}
}

func (s *DistributionStore) WithinTx(ctx context.Context, fn func(tx distribution.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin distribution tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&distributionTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit distribution tx: %w", err)
	}
	return nil
}

type distributionTx struct {
	tx pgx.Tx
}

func (t *distributionTx) GetLeadForUpdate(ctx context.Context, leadID int) (*models.Lead, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT id, contact_name, phone, initial_message, source, status, notes,
		        assigned_broker_id, assigned_at, created_at, updated_at
         FROM leads WHERE id=$1 FOR UPDATE`, leadID)

	var l models.Lead
	err := row.Scan(&l.ID, &l.ContactName, &l.Phone, &l.InitialMessage, &l.Source, &l.Status,
		&l.Notes, &l.AssignedBrokerID, &l.AssignedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, distribution.ErrLeadNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (t *distributionTx) ActiveBrokersForUpdate(ctx context.Context) ([]*models.Broker, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT b.id, b.user_id, b.distribution_order, b.is_active, b.max_leads_per_day, b.created_at, b.updated_at
         FROM brokers b
         JOIN users u ON u.id = b.user_id
         WHERE b.is_active = TRUE AND u.is_active = TRUE
         ORDER BY b.distribution_order ASC, b.id ASC
         FOR UPDATE OF b`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brokers []*models.Broker
	for rows.Next() {
		var b models.Broker
		err := rows.Scan(&b.ID, &b.UserID, &b.DistributionOrder, &b.IsActive, &b.MaxLeadsPerDay,
			&b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		brokers = append(brokers, &b)
	}
	return brokers, rows.Err()
}

func (t *distributionTx) CountAssignedSince(ctx context.Context, brokerUserID int, since time.Time) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM lead_distributions WHERE broker_id = $1 AND distributed_at >= $2`,
		brokerUserID, since).Scan(&n)
	return n, err
}

func (t *distributionTx) MarkLeadAssigned(ctx context.Context, leadID, brokerUserID int, at time.Time) error {
	// assigned_at is stamped on first assignment only
	tag, err := t.tx.Exec(ctx,
		`UPDATE leads SET assigned_broker_id=$1, assigned_at=COALESCE(assigned_at, $2), updated_at=CURRENT_TIMESTAMP
         WHERE id=$3`,
		brokerUserID, at, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return distribution.ErrLeadNotFound
	}
	return nil
}

func (t *distributionTx) RecordAssignment(ctx context.Context, d *models.LeadDistribution) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO lead_distributions(lead_id, broker_id, distributed_at, distribution_method)
         VALUES($1, $2, $3, $4)
         RETURNING id`,
		d.LeadID, d.BrokerID, d.DistributedAt, d.DistributionMethod,
	).Scan(&d.ID)
}
