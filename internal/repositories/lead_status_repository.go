package repositories

import (
	"context"

	"lead-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadStatusRepository struct {
	DB *pgxpool.Pool
}

func NewLeadStatusRepository(db *pgxpool.Pool) *LeadStatusRepository {
	return &LeadStatusRepository{DB: db}
}

// List returns the status catalog in display order
func (r *LeadStatusRepository) List(ctx context.Context) ([]*models.LeadStatusInfo, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, color, display_order FROM lead_statuses ORDER BY display_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []*models.LeadStatusInfo
	for rows.Next() {
		var s models.LeadStatusInfo
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &s.Order); err != nil {
			return nil, err
		}
		statuses = append(statuses, &s)
	}
	return statuses, rows.Err()
}
