package availability

import (
	"context"
	"errors"
	"slices"
	"time"

	"booking-availability/appointment"
	"booking-availability/schedule"

	"go.uber.org/zap"
)

type Outcome int

const (
	Booked Outcome = iota + 1
	Conflict
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Booked:
		return "booked"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type BookingRequest struct {
	Date        string
	Time        string
	ServiceType string
	Patient     appointment.Patient
	// Notes is free text from the patient, stored on the appointment.
	Notes string
}

// BookingResult is exactly one of: Booked with Appointment, Conflict with
// Conflict, or Invalid with Invalid.
type BookingResult struct {
	Outcome     Outcome
	Appointment *appointment.Appointment
	Conflict    *ConflictError
	Invalid     *ValidationError
}

func invalid(field, message string) BookingResult {
	return BookingResult{Outcome: Invalid, Invalid: &ValidationError{Field: field, Message: message}}
}

func conflict(at time.Time) BookingResult {
	return BookingResult{Outcome: Conflict, Conflict: &ConflictError{ScheduledAt: at}}
}

// Book validates the request, re-derives availability for the date and
// inserts a pending appointment. The returned error is always a
// *StorageError; rejected bookings are reported through the result.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (BookingResult, error) {
	date, err := e.ParseDate(req.Date)
	if err != nil {
		return invalid("date", "date must be in YYYY-MM-DD format"), nil
	}

	if len(req.Time) != len("15:04") {
		return invalid("time", "time must be in HH:MM format"), nil
	}
	clock, err := schedule.ParseClock(req.Time)
	if err != nil || clock.Hour > 23 {
		return invalid("time", "time must be in HH:MM format"), nil
	}
	if clock.Minute != 0 {
		return invalid("time", "appointments start on the hour"), nil
	}

	serviceType := req.ServiceType
	if serviceType == "" {
		serviceType = appointment.ServiceIndividual
	}
	if !appointment.IsServiceType(serviceType) {
		return invalid("service_type", "unrecognized service type"), nil
	}

	if err := req.Patient.Validate(); err != nil {
		return invalid("patient", err.Error()), nil
	}
	if err := appointment.ValidateNotes(req.Notes); err != nil {
		return invalid("notes", err.Error()), nil
	}

	scheduledAt := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour, 0, 0, 0, e.loc)
	if !scheduledAt.After(e.now()) {
		return invalid("time", "the requested time is in the past"), nil
	}

	// Phase 1: optimistic availability read.
	state, err := e.evaluate(ctx, date)
	if err != nil {
		return BookingResult{}, err
	}
	if state.reason != "" {
		return invalid("date", state.reason), nil
	}
	if !slices.Contains(state.candidates, req.Time) {
		return invalid("time", "outside working hours"), nil
	}
	if !slices.Contains(state.open, req.Time) {
		return conflict(scheduledAt), nil
	}

	if e.locker != nil {
		key := "booking:slot:" + scheduledAt.UTC().Format(time.RFC3339)
		token, acquired, err := e.locker.TryLock(ctx, key)
		if err != nil {
			return BookingResult{}, &StorageError{Op: "lock slot", Err: err}
		}
		if !acquired {
			return conflict(scheduledAt), nil
		}
		defer func() {
			if err := e.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				e.logger.Warn("release slot lock failed", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	// Phase 2: the insert is guarded by the unique index on live slots.
	created, err := e.appointments.Insert(ctx, appointment.Appointment{
		PatientID:       req.Patient.ID,
		GuestName:       req.Patient.Name,
		GuestEmail:      req.Patient.Email,
		GuestPhone:      req.Patient.Phone,
		ScheduledAt:     scheduledAt,
		DurationMinutes: appointment.DefaultDurationMinutes,
		Status:          appointment.StatusPending,
		Type:            serviceType,
		Notes:           req.Notes,
	}, e.now())
	if err != nil {
		if errors.Is(err, appointment.ErrSlotTaken) {
			e.logger.Info("booking lost race for slot", zap.Time("scheduled_at", scheduledAt))
			return conflict(scheduledAt), nil
		}
		return BookingResult{}, &StorageError{Op: "insert appointment", Err: err}
	}

	e.logger.Info("appointment booked",
		zap.String("appointment_id", created.ID.String()),
		zap.Time("scheduled_at", created.ScheduledAt),
		zap.String("type", created.Type),
	)
	return BookingResult{Outcome: Booked, Appointment: created}, nil
}
