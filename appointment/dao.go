package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-availability/database"

	"github.com/google/uuid"
)

const selectAppointments = `SELECT id, patient_id, guest_name, guest_email, guest_phone, scheduled_at, duration_minutes, status, type, notes, created_at FROM appointments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (Appointment, error) {
	var appt Appointment
	var patientID uuid.NullUUID
	if err := row.Scan(
		&appt.ID,
		&patientID,
		&appt.GuestName,
		&appt.GuestEmail,
		&appt.GuestPhone,
		&appt.ScheduledAt,
		&appt.DurationMinutes,
		&appt.Status,
		&appt.Type,
		&appt.Notes,
		&appt.CreatedAt,
	); err != nil {
		return Appointment{}, err
	}
	if patientID.Valid {
		appt.PatientID = &patientID.UUID
	}
	return appt, nil
}

// Insert stores a new appointment. A live appointment already holding the
// same scheduled_at makes the insert fail with ErrSlotTaken.
func (a *Accessor) Insert(ctx context.Context, appt Appointment, now time.Time) (*Appointment, error) {
	if appt.DurationMinutes == 0 {
		appt.DurationMinutes = DefaultDurationMinutes
	}
	if err := appt.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	appt.ID = uuid.New()
	appt.CreatedAt = now

	var patientID uuid.NullUUID
	if appt.PatientID != nil {
		patientID = uuid.NullUUID{UUID: *appt.PatientID, Valid: true}
	}

	query := `INSERT INTO appointments (id, patient_id, guest_name, guest_email, guest_phone, scheduled_at, duration_minutes, status, type, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := a.db.ExecContext(ctx, query,
		appt.ID,
		patientID,
		appt.GuestName,
		appt.GuestEmail,
		appt.GuestPhone,
		appt.ScheduledAt,
		appt.DurationMinutes,
		string(appt.Status),
		appt.Type,
		appt.Notes,
		appt.CreatedAt,
	); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &appt, nil
}

func (a *Accessor) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := selectAppointments + ` WHERE id = $1`
	appt, err := scanAppointment(a.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &appt, nil
}

// ListActiveBetween returns non-cancelled appointments with scheduled_at in
// [from, to), ordered by time.
func (a *Accessor) ListActiveBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	query := selectAppointments + ` WHERE scheduled_at >= $1 AND scheduled_at < $2 AND status <> 'cancelled' ORDER BY scheduled_at`
	return a.list(ctx, query, from, to)
}

func (a *Accessor) list(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	appointments := []Appointment{}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return appointments, nil
}

// Filter narrows List. Zero fields do not filter.
type Filter struct {
	From      time.Time
	To        time.Time
	PatientID *uuid.UUID
}

// List returns appointments matching f, cancelled included, ordered by time.
func (a *Accessor) List(ctx context.Context, f Filter) ([]Appointment, error) {
	var conds []string
	var args []any
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("scheduled_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("scheduled_at < $%d", len(args)))
	}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		conds = append(conds, fmt.Sprintf("patient_id = $%d", len(args)))
	}

	query := selectAppointments
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY scheduled_at`
	return a.list(ctx, query, args...)
}

// UpdateStatus moves an appointment to status. Re-activating a cancelled
// appointment whose slot has since been taken fails with ErrSlotTaken.
func (a *Accessor) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("validate: unknown status %q", status)
	}

	query := `UPDATE appointments SET status = $1 WHERE id = $2`
	res, err := a.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	updated, err := a.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// UpdateNotes replaces the provider's notes on an appointment.
func (a *Accessor) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Appointment, error) {
	if err := ValidateNotes(notes); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	query := `UPDATE appointments SET notes = $1 WHERE id = $2`
	res, err := a.db.ExecContext(ctx, query, notes, id)
	if err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	updated, err := a.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// Delete hard-deletes an appointment. Normal flows cancel instead.
func (a *Accessor) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`
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
