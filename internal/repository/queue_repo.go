package repository

import (
	"context"
	"database/sql"
	"time"

	updater "openhab_updater"

	"github.com/google/uuid"
)

type QueueSQLite struct {
	db *sql.DB
}

func NewQueueSQLite(db *sql.DB) *QueueSQLite { return &QueueSQLite{db: db} }

var _ QueueRepo = (*QueueSQLite)(nil)

const (
	insertPendingSQL = `
		INSERT INTO pending_updates (id, item, label, value, mapped_value, show_toast, enqueued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	deletePendingSQL = `DELETE FROM pending_updates WHERE id = ?`
	selectPendingSQL = `
		SELECT id, item, label, value, mapped_value, show_toast, enqueued_at
		FROM pending_updates ORDER BY enqueued_at ASC
	`
)

// Enqueue inserts a queued request. Missing ID or EnqueuedAt are filled in.
func (r *QueueSQLite) Enqueue(ctx context.Context, p updater.PendingUpdate) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.EnqueuedAt.IsZero() {
		p.EnqueuedAt = time.Now().UTC()
	} else {
		p.EnqueuedAt = p.EnqueuedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertPendingSQL,
		p.ID,
		p.Request.ItemName,
		p.Request.Label,
		p.Request.Value,
		p.Request.MappedValue,
		p.Request.ShowToast,
		p.EnqueuedAt,
	)
	return err
}

// Delete removes a queue row once its request reached a terminal outcome.
func (r *QueueSQLite) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deletePendingSQL, id)
	return err
}

// ListPending returns queued requests in enqueue order.
func (r *QueueSQLite) ListPending(ctx context.Context) ([]updater.PendingUpdate, error) {
	rows, err := r.db.QueryContext(ctx, selectPendingSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]updater.PendingUpdate, 0, 16)
	for rows.Next() {
		var (
			p           updater.PendingUpdate
			label       sql.NullString
			mappedValue sql.NullString
		)
		if err := rows.Scan(
			&p.ID,
			&p.Request.ItemName,
			&label,
			&p.Request.Value,
			&mappedValue,
			&p.Request.ShowToast,
			&p.EnqueuedAt,
		); err != nil {
			return nil, err
		}
		p.Request.Label = label.String
		p.Request.MappedValue = mappedValue.String
		p.EnqueuedAt = p.EnqueuedAt.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
