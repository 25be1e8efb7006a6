package repositories

import (
	"context"
	"errors"
	"fmt"

	"lead-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BrokerRepository struct {
	DB *pgxpool.Pool
}

func NewBrokerRepository(db *pgxpool.Pool) *BrokerRepository {
	return &BrokerRepository{DB: db}
}

func (r *BrokerRepository) Create(ctx context.Context, b *models.Broker) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO brokers(user_id, distribution_order, is_active, max_leads_per_day)
         VALUES($1, $2, $3, $4)
         RETURNING id, created_at, updated_at`,
		b.UserID, b.DistributionOrder, b.IsActive, b.MaxLeadsPerDay,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BrokerRepository) Get(ctx context.Context, id int) (*models.Broker, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT b.id, b.user_id, b.distribution_order, b.is_active, b.max_leads_per_day, b.created_at, b.updated_at,
		        u.id, u.name, u.email, u.role, u.is_active, u.created_at, u.updated_at
         FROM brokers b
         JOIN users u ON u.id = b.user_id
         WHERE b.id=$1`, id)

	return scanBrokerWithUser(row)
}

func (r *BrokerRepository) GetByUserID(ctx context.Context, userID int) (*models.Broker, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT b.id, b.user_id, b.distribution_order, b.is_active, b.max_leads_per_day, b.created_at, b.updated_at,
		        u.id, u.name, u.email, u.role, u.is_active, u.created_at, u.updated_at
         FROM brokers b
         JOIN users u ON u.id = b.user_id
         WHERE b.user_id=$1`, userID)

	return scanBrokerWithUser(row)
}

// List returns all brokers in distribution order, ties broken by id
func (r *BrokerRepository) List(ctx context.Context) ([]*models.Broker, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT b.id, b.user_id, b.distribution_order, b.is_active, b.max_leads_per_day, b.created_at, b.updated_at,
		        u.id, u.name, u.email, u.role, u.is_active, u.created_at, u.updated_at
         FROM brokers b
         JOIN users u ON u.id = b.user_id
         ORDER BY b.distribution_order ASC, b.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brokers []*models.Broker
	for rows.Next() {
		b, err := scanBrokerWithUser(rows)
		if err != nil {
			return nil, err
		}
		brokers = append(brokers, b)
	}
	return brokers, rows.Err()
}

// ListActiveOrdered returns active brokers whose account is also active,
// in distribution order with ties broken by id
func (r *BrokerRepository) ListActiveOrdered(ctx context.Context) ([]*models.Broker, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT b.id, b.user_id, b.distribution_order, b.is_active, b.max_leads_per_day, b.created_at, b.updated_at,
		        u.id, u.name, u.email, u.role, u.is_active, u.created_at, u.updated_at
         FROM brokers b
         JOIN users u ON u.id = b.user_id
         WHERE b.is_active = TRUE AND u.is_active = TRUE
         ORDER BY b.distribution_order ASC, b.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brokers []*models.Broker
	for rows.Next() {
		b, err := scanBrokerWithUser(rows)
		if err != nil {
			return nil, err
		}
		brokers = append(brokers, b)
	}
	return brokers, rows.Err()
}

// Update applies the non-nil fields of req to the broker row
func (r *BrokerRepository) Update(ctx context.Context, id int, req *models.UpdateBrokerRequest) error {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}
	argNum := 1

	if req.DistributionOrder != nil {
		setClauses = append(setClauses, fmt.Sprintf("distribution_order = $%d", argNum))
		args = append(args, *req.DistributionOrder)
		argNum++
	}
	if req.IsActive != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", argNum))
		args = append(args, *req.IsActive)
		argNum++
	}
	if req.MaxLeadsPerDay != nil {
		setClauses = append(setClauses, fmt.Sprintf("max_leads_per_day = $%d", argNum))
		args = append(args, *req.MaxLeadsPerDay)
		argNum++
	}

	query := "UPDATE brokers SET "
	for i, clause := range setClauses {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update broker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder rewrites distribution_order for the given brokers in one
// transaction, slice position becoming the new order
func (r *BrokerRepository) Reorder(ctx context.Context, brokerIDs []int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	for pos, id := range brokerIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE brokers SET distribution_order=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
			pos, id)
		if err != nil {
			return fmt.Errorf("failed to reorder broker %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	return tx.Commit(ctx)
}

// Delete removes a broker profile. The user account stays.
func (r *BrokerRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM brokers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBrokerWithUser(row rowScanner) (*models.Broker, error) {
	var b models.Broker
	var u models.User
	err := row.Scan(
		&b.ID, &b.UserID, &b.DistributionOrder, &b.IsActive, &b.MaxLeadsPerDay, &b.CreatedAt, &b.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b.User = &u
	return &b, nil
}
