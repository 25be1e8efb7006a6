package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WhatsAppConnectionRepository struct {
	DB *pgxpool.Pool
}

func NewWhatsAppConnectionRepository(db *pgxpool.Pool) *WhatsAppConnectionRepository {
	return &WhatsAppConnectionRepository{DB: db}
}

const connectionSelect = `
	SELECT id, phone_id, status, auto_respond, welcome_message, webhook_configured, last_seen, created_at, updated_at
	FROM whatsapp_connections
`

func (r *WhatsAppConnectionRepository) Create(ctx context.Context, c *models.WhatsAppConnection) error {
	if c.Status == "" {
		c.Status = models.ConnectionDisconnected
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO whatsapp_connections(phone_id, status, auto_respond, welcome_message, webhook_configured)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		c.PhoneID, c.Status, c.AutoRespond, c.WelcomeMessage, c.WebhookConfigured,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *WhatsAppConnectionRepository) Get(ctx context.Context, id int) (*models.WhatsAppConnection, error) {
	row := r.DB.QueryRow(ctx, connectionSelect+` WHERE id=$1`, id)
	return scanConnection(row)
}

func (r *WhatsAppConnectionRepository) GetByPhoneID(ctx context.Context, phoneID string) (*models.WhatsAppConnection, error) {
	row := r.DB.QueryRow(ctx, connectionSelect+` WHERE phone_id=$1`, phoneID)
	return scanConnection(row)
}

func (r *WhatsAppConnectionRepository) List(ctx context.Context) ([]*models.WhatsAppConnection, error) {
	rows, err := r.DB.Query(ctx, connectionSelect+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []*models.WhatsAppConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// Update applies the non-nil fields of req to the connection row
func (r *WhatsAppConnectionRepository) Update(ctx context.Context, id int, req *models.UpdateConnectionRequest) error {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}
	argNum := 1

	if req.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *req.Status)
		argNum++
	}
	if req.AutoRespond != nil {
		setClauses = append(setClauses, fmt.Sprintf("auto_respond = $%d", argNum))
		args = append(args, *req.AutoRespond)
		argNum++
	}
	if req.WelcomeMessage != nil {
		setClauses = append(setClauses, fmt.Sprintf("welcome_message = $%d", argNum))
		args = append(args, *req.WelcomeMessage)
		argNum++
	}
	if req.WebhookConfigured != nil {
		setClauses = append(setClauses, fmt.Sprintf("webhook_configured = $%d", argNum))
		args = append(args, *req.WebhookConfigured)
		argNum++
	}

	query := "UPDATE whatsapp_connections SET "
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
		return fmt.Errorf("failed to update connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastSeen updates status and last_seen when the provider reports
// activity on the number
func (r *WhatsAppConnectionRepository) TouchLastSeen(ctx context.Context, phoneID string, at time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE whatsapp_connections SET status=$1, last_seen=$2, updated_at=CURRENT_TIMESTAMP WHERE phone_id=$3`,
		models.ConnectionConnected, at, phoneID)
	return err
}

func (r *WhatsAppConnectionRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM whatsapp_connections WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanConnection(row rowScanner) (*models.WhatsAppConnection, error) {
	var c models.WhatsAppConnection
	err := row.Scan(&c.ID, &c.PhoneID, &c.Status, &c.AutoRespond, &c.WelcomeMessage,
		&c.WebhookConfigured, &c.LastSeen, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
