package repositories

import (
	"context"
	"fmt"
	"time"

	"lead-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DistributionRepository reads the append-only distribution ledger.
// Writes happen inside the distribution transaction, never here.
type DistributionRepository struct {
	DB *pgxpool.Pool
}

func NewDistributionRepository(db *pgxpool.Pool) *DistributionRepository {
	return &DistributionRepository{DB: db}
}

// List returns ledger rows matching the filter, newest first
func (r *DistributionRepository) List(ctx context.Context, filter *models.DistributionFilter) ([]*models.LeadDistribution, error) {
	query := `
		SELECT d.id, d.lead_id, d.broker_id, d.distributed_at, d.distribution_method,
		       COALESCE(l.contact_name, ''), COALESCE(u.name, '')
		FROM lead_distributions d
		LEFT JOIN leads l ON l.id = d.lead_id
		LEFT JOIN users u ON u.id = d.broker_id
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.LeadID != nil {
		query += fmt.Sprintf(" AND d.lead_id = $%d", argNum)
		args = append(args, *filter.LeadID)
		argNum++
	}
	if filter.BrokerID != nil {
		query += fmt.Sprintf(" AND d.broker_id = $%d", argNum)
		args = append(args, *filter.BrokerID)
		argNum++
	}
	if filter.Method != "" {
		query += fmt.Sprintf(" AND d.distribution_method = $%d", argNum)
		args = append(args, filter.Method)
		argNum++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND d.distributed_at >= $%d", argNum)
		args = append(args, *filter.From)
		argNum++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND d.distributed_at < $%d", argNum)
		args = append(args, *filter.To)
		argNum++
	}

	query += " ORDER BY d.distributed_at DESC, d.id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
		argNum++
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	defer rows.Close()

	var dists []*models.LeadDistribution
	for rows.Next() {
		var d models.LeadDistribution
		err := rows.Scan(&d.ID, &d.LeadID, &d.BrokerID, &d.DistributedAt, &d.DistributionMethod,
			&d.LeadContactName, &d.BrokerName)
		if err != nil {
			return nil, err
		}
		dists = append(dists, &d)
	}
	return dists, rows.Err()
}

// ListForLead returns the full distribution history of one lead, oldest first
func (r *DistributionRepository) ListForLead(ctx context.Context, leadID int) ([]*models.LeadDistribution, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT d.id, d.lead_id, d.broker_id, d.distributed_at, d.distribution_method,
		       COALESCE(l.contact_name, ''), COALESCE(u.name, '')
		FROM lead_distributions d
		LEFT JOIN leads l ON l.id = d.lead_id
		LEFT JOIN users u ON u.id = d.broker_id
		WHERE d.lead_id = $1
		ORDER BY d.distributed_at ASC, d.id ASC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead distributions: %w", err)
	}
	defer rows.Close()

	var dists []*models.LeadDistribution
	for rows.Next() {
		var d models.LeadDistribution
		err := rows.Scan(&d.ID, &d.LeadID, &d.BrokerID, &d.DistributedAt, &d.DistributionMethod,
			&d.LeadContactName, &d.BrokerName)
		if err != nil {
			return nil, err
		}
		dists = append(dists, &d)
	}
	return dists, rows.Err()
}

// CountAssignedSince counts ledger entries for one broker account since
// the given instant. Manual and automatic entries both count.
func (r *DistributionRepository) CountAssignedSince(ctx context.Context, brokerUserID int, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM lead_distributions WHERE broker_id = $1 AND distributed_at >= $2`,
		brokerUserID, since).Scan(&n)
	return n, err
}

// LoadsSince returns per-broker ledger counts since the given instant,
// keyed by broker user id
func (r *DistributionRepository) LoadsSince(ctx context.Context, since time.Time) (map[int]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT broker_id, COUNT(*) FROM lead_distributions WHERE distributed_at >= $1 GROUP BY broker_id`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := make(map[int]int)
	for rows.Next() {
		var brokerID, n int
		if err := rows.Scan(&brokerID, &n); err != nil {
			return nil, err
		}
		loads[brokerID] = n
	}
	return loads, rows.Err()
}
