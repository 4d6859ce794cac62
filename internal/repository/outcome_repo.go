package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	updater "openhab_updater"

	"github.com/google/uuid"
)

type OutcomeSQLite struct {
	db *sql.DB
}

func NewOutcomeSQLite(db *sql.DB) *OutcomeSQLite { return &OutcomeSQLite{db: db} }

var _ OutcomeRepo = (*OutcomeSQLite)(nil)

const (
	insertOutcomeSQL = `
		INSERT INTO update_outcomes
			(id, has_connection, http_status, item, label, value, mapped_value, show_toast, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	selectOutcomeByIDSQL = `
		SELECT id, has_connection, http_status, item, label, value, mapped_value, show_toast, completed_at
		FROM update_outcomes WHERE id = ?
	`
)

// Save inserts a terminal outcome. A missing ID is filled in.
func (r *OutcomeSQLite) Save(ctx context.Context, o updater.UpdateOutcome) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertOutcomeSQL,
		o.ID,
		o.HasConnection,
		o.HTTPStatus,
		o.ItemName,
		o.Label,
		o.Value,
		o.MappedValue,
		o.ShowToast,
		o.Timestamp,
	)
	return err
}

// Get fetches one outcome by id. Returns (nil, nil) if not found.
func (r *OutcomeSQLite) Get(ctx context.Context, id string) (*updater.UpdateOutcome, error) {
	row := r.db.QueryRowContext(ctx, selectOutcomeByIDSQL, id)
	o, err := scanOutcome(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// List returns outcomes matching the filter, newest first.
func (r *OutcomeSQLite) List(ctx context.Context, f OutcomeFilter) ([]updater.UpdateOutcome, error) {
	var (
		conds []string
		args  []any
	)
	if !f.From.IsZero() {
		conds = append(conds, "completed_at >= ?")
		args = append(args, f.From.UTC().UnixMilli())
	}
	if !f.To.IsZero() {
		conds = append(conds, "completed_at <= ?")
		args = append(args, f.To.UTC().UnixMilli())
	}
	if f.Item != "" {
		conds = append(conds, "item = ?")
		args = append(args, f.Item)
	}
	if f.Success != nil {
		if *f.Success {
			conds = append(conds, "has_connection = ? AND http_status BETWEEN 200 AND 299")
			args = append(args, true)
		} else {
			conds = append(conds, "(has_connection = ? OR http_status < 200 OR http_status > 299)")
			args = append(args, false)
		}
	}

	q := `SELECT id, has_connection, http_status, item, label, value, mapped_value, show_toast, completed_at FROM update_outcomes`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY completed_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]updater.UpdateOutcome, 0, 64)
	for rows.Next() {
		o, err := scanOutcome(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanOutcome(scan func(dest ...any) error) (updater.UpdateOutcome, error) {
	var (
		o           updater.UpdateOutcome
		label       sql.NullString
		mappedValue sql.NullString
	)
	if err := scan(
		&o.ID,
		&o.HasConnection,
		&o.HTTPStatus,
		&o.ItemName,
		&label,
		&o.Value,
		&mappedValue,
		&o.ShowToast,
		&o.Timestamp,
	); err != nil {
		return updater.UpdateOutcome{}, err
	}
	o.Label = label.String
	o.MappedValue = mappedValue.String
	return o, nil
}
