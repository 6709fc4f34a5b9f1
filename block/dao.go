package block

import (
	"context"
	"fmt"
	"time"

	"booking-availability/database"
)

// IsBlocked reports whether a block exists for exactly date's calendar day.
func (a *Accessor) IsBlocked(ctx context.Context, date time.Time) (bool, error) {
	var blocked bool

	query := `SELECT EXISTS (SELECT 1 FROM blocked_dates WHERE date = $1)`
	if err := a.db.QueryRowContext(ctx, query, date.Format(time.DateOnly)).Scan(&blocked); err != nil {
		return false, fmt.Errorf("scan: %w", err)
	}
	return blocked, nil
}

func (a *Accessor) Create(ctx context.Context, b Block, now time.Time) (*Block, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var id int64
	query := `INSERT INTO blocked_dates (date, reason, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := a.db.QueryRowContext(ctx, query, b.Date.Format(time.DateOnly), b.Reason, now).Scan(&id); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyBlocked
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	return &Block{
		ID:        id,
		Date:      b.Date,
		Reason:    b.Reason,
		CreatedAt: now,
	}, nil
}

// List returns blocks ordered by date. A zero from lists every block.
func (a *Accessor) List(ctx context.Context, from time.Time) ([]Block, error) {
	blocks := []Block{}

	query := `SELECT id, date, reason, created_at FROM blocked_dates`
	var args []any
	if !from.IsZero() {
		query += ` WHERE date >= $1`
		args = append(args, from.Format(time.DateOnly))
	}
	query += ` ORDER BY date`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.Date, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return blocks, nil
}

func (a *Accessor) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM blocked_dates WHERE id = $1`
	res, err := a.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
