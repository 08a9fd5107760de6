// Package outbox is the durable notification ledger. Verified payments are
// enqueued here exactly once per order id; a background dispatcher delivers
// them off the request path.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          string
	OrderID     string
	Payload     []byte
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type RepoInterface interface {
	Enqueue(ctx context.Context, orderID string, payload []byte) (bool, error)
	GetUnprocessed(ctx context.Context, limit int) ([]*Notification, error)
	MarkProcessed(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Enqueue inserts a pending notification for the order. The UNIQUE
// constraint on order_id makes delivery idempotent per order: re-verifying
// an already-confirmed reference reports false instead of queueing a
// duplicate email.
func (r *Repository) Enqueue(ctx context.Context, orderID string, payload []byte) (bool, error) {
	query := `
		INSERT INTO notifications (id, order_id, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query, uuid.New().String(), orderID, string(payload))
	if err != nil {
		return false, fmt.Errorf("failed to enqueue notification: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read enqueue result: %w", err)
	}

	return rows > 0, nil
}

func (r *Repository) GetUnprocessed(ctx context.Context, limit int) ([]*Notification, error) {
	query := `
		SELECT id, order_id, payload, attempts, created_at
		FROM notifications
		WHERE processed = 0
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var pending []*Notification
	for rows.Next() {
		n := &Notification{}
		var payload string
		if err := rows.Scan(&n.ID, &n.OrderID, &payload, &n.Attempts, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Payload = []byte(payload)
		pending = append(pending, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return pending, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, id string) error {
	query := `
		UPDATE notifications
		SET processed = 1, processed_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification processed: %w", err)
	}
	return nil
}

func (r *Repository) RecordFailure(ctx context.Context, id string) error {
	query := `UPDATE notifications SET attempts = attempts + 1 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to record notification failure: %w", err)
	}
	return nil
}
