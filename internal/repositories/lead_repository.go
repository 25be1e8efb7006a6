package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	DB *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, l *models.Lead) error {
	if l.Source == "" {
		l.Source = models.LeadSourceManual
	}
	if l.Status == "" {
		l.Status = models.LeadStatusNew
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO leads(contact_name, phone, initial_message, source, status, notes)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		l.ContactName, l.Phone, l.InitialMessage, l.Source, l.Status, l.Notes,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

const leadSelect = `
	SELECT l.id, l.contact_name, l.phone, l.initial_message, l.source, l.status, l.notes,
	       l.assigned_broker_id, l.assigned_at, l.created_at, l.updated_at,
	       u.id, u.name, u.email, u.role, u.is_active, u.created_at, u.updated_at
	FROM leads l
	LEFT JOIN users u ON u.id = l.assigned_broker_id
`

func (r *LeadRepository) Get(ctx context.Context, id int) (*models.Lead, error) {
	row := r.DB.QueryRow(ctx, leadSelect+` WHERE l.id=$1`, id)
	return scanLeadWithBroker(row)
}

// GetOpenByPhone returns the most recent lead for a phone number that
// is still in the pipeline, used to fold repeat WhatsApp messages into
// the existing lead instead of opening a duplicate
func (r *LeadRepository) GetOpenByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	row := r.DB.QueryRow(ctx,
		leadSelect+` WHERE l.phone=$1 AND l.status IN ($2, $3) ORDER BY l.created_at DESC LIMIT 1`,
		phone, models.LeadStatusNew, models.LeadStatusInProgress)
	return scanLeadWithBroker(row)
}

// List returns leads matching the filter, newest first
func (r *LeadRepository) List(ctx context.Context, filter *models.LeadFilter) ([]*models.Lead, error) {
	query := leadSelect + ` WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND l.status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}
	if filter.Source != "" {
		query += fmt.Sprintf(" AND l.source = $%d", argNum)
		args = append(args, filter.Source)
		argNum++
	}
	if filter.AssignedBrokerID != nil {
		query += fmt.Sprintf(" AND l.assigned_broker_id = $%d", argNum)
		args = append(args, *filter.AssignedBrokerID)
		argNum++
	}
	if filter.Unassigned {
		query += " AND l.assigned_broker_id IS NULL"
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (l.contact_name ILIKE $%d OR l.phone ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	query += " ORDER BY l.created_at DESC"

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
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLeadWithBroker(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// Update applies the non-nil fields of req to the lead row.
// Assignment changes go through SetAssignment instead.
func (r *LeadRepository) Update(ctx context.Context, id int, req *models.UpdateLeadRequest) error {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}
	argNum := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if req.ContactName != nil {
		appendSet("contact_name", *req.ContactName)
	}
	if req.Phone != nil {
		appendSet("phone", *req.Phone)
	}
	if req.InitialMessage != nil {
		appendSet("initial_message", *req.InitialMessage)
	}
	if req.Source != nil {
		appendSet("source", *req.Source)
	}
	if req.Status != nil {
		appendSet("status", *req.Status)
	}
	if req.Notes != nil {
		appendSet("notes", *req.Notes)
	}

	query := "UPDATE leads SET "
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
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAssignment points the lead at a broker account, or clears it when
// brokerUserID is nil. assigned_at is only stamped on first assignment.
func (r *LeadRepository) SetAssignment(ctx context.Context, leadID int, brokerUserID *int, at time.Time) error {
	var tag pgconn.CommandTag
	var err error
	if brokerUserID == nil {
		tag, err = r.DB.Exec(ctx,
			`UPDATE leads SET assigned_broker_id=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=$1`,
			leadID)
	} else {
		tag, err = r.DB.Exec(ctx,
			`UPDATE leads SET assigned_broker_id=$1, assigned_at=COALESCE(assigned_at, $2), updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
			*brokerUserID, at, leadID)
	}
	if err != nil {
		return fmt.Errorf("failed to set lead assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage adds a follow-up message onto an existing lead's notes
// and bumps updated_at, used when a known contact writes again
func (r *LeadRepository) AppendMessage(ctx context.Context, leadID int, message string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads
         SET notes = CASE WHEN notes = '' THEN $1 ELSE notes || E'\n' || $1 END,
             updated_at = CURRENT_TIMESTAMP
         WHERE id = $2`,
		message, leadID)
	return err
}

// Delete removes a lead. Ledger rows cascade via FK.
func (r *LeadRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Dashboard counters. A non-nil brokerID scopes the count to leads
// assigned to that broker account.

func (r *LeadRepository) CountAll(ctx context.Context, brokerID *int) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE ($1::int IS NULL OR assigned_broker_id = $1)`,
		brokerID).Scan(&n)
	return n, err
}

func (r *LeadRepository) CountCreatedSince(ctx context.Context, since time.Time, brokerID *int) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE created_at >= $1 AND ($2::int IS NULL OR assigned_broker_id = $2)`,
		since, brokerID).Scan(&n)
	return n, err
}

func (r *LeadRepository) CountUnassigned(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE assigned_broker_id IS NULL`).Scan(&n)
	return n, err
}

func (r *LeadRepository) CountByStatus(ctx context.Context, brokerID *int) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*) FROM leads WHERE ($1::int IS NULL OR assigned_broker_id = $1) GROUP BY status`,
		brokerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *LeadRepository) CountBySource(ctx context.Context, brokerID *int) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT source, COUNT(*) FROM leads WHERE ($1::int IS NULL OR assigned_broker_id = $1) GROUP BY source`,
		brokerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

func scanLeadWithBroker(row rowScanner) (*models.Lead, error) {
	var l models.Lead
	var uID *int
	var uName, uEmail, uRole *string
	var uActive *bool
	var uCreated, uUpdated *time.Time

	err := row.Scan(
		&l.ID, &l.ContactName, &l.Phone, &l.InitialMessage, &l.Source, &l.Status, &l.Notes,
		&l.AssignedBrokerID, &l.AssignedAt, &l.CreatedAt, &l.UpdatedAt,
		&uID, &uName, &uEmail, &uRole, &uActive, &uCreated, &uUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if uID != nil {
		l.AssignedBroker = &models.User{
			ID:        *uID,
			Name:      *uName,
			Email:     *uEmail,
			Role:      *uRole,
			IsActive:  *uActive,
			CreatedAt: *uCreated,
			UpdatedAt: *uUpdated,
		}
	}
	return &l, nil
}
