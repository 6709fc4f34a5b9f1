package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const selectRules = `SELECT day_of_week, is_work_day, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI') FROM weekly_schedule`

// GetRule returns the rule for dayOfWeek, or nil when none is stored.
func (a *Accessor) GetRule(ctx context.Context, dayOfWeek int) (*Rule, error) {
	var rule Rule

	query := selectRules + ` WHERE day_of_week = $1`
	row := a.db.QueryRowContext(ctx, query, dayOfWeek)
	if err := row.Scan(&rule.DayOfWeek, &rule.IsWorkDay, &rule.StartTime, &rule.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	return &rule, nil
}

func (a *Accessor) ListRules(ctx context.Context) ([]Rule, error) {
	rules := []Rule{}

	query := selectRules + ` ORDER BY day_of_week`
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.DayOfWeek, &rule.IsWorkDay, &rule.StartTime, &rule.EndTime); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rules, nil
}

// UpsertRules stores every rule in one transaction, replacing the existing
// row for the same day of week.
func (a *Accessor) UpsertRules(ctx context.Context, rules []Rule, now time.Time) error {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO weekly_schedule (day_of_week, is_work_day, start_time, end_time, updated_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (day_of_week) DO UPDATE SET is_work_day = EXCLUDED.is_work_day, start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, updated_at = EXCLUDED.updated_at`
	for _, rule := range rules {
		// Hours of a closed day are not validated; keep the column writable.
		start, end := rule.StartTime, rule.EndTime
		if _, err := ParseClock(start); err != nil {
			start = "00:00"
		}
		if _, err := ParseClock(end); err != nil {
			end = "00:00"
		}
		if _, err := tx.ExecContext(ctx, query, rule.DayOfWeek, rule.IsWorkDay, start, end, now); err != nil {
			return fmt.Errorf("exec context: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
