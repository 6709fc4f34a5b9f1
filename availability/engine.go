package availability

import (
	"context"
	"time"

	"booking-availability/appointment"
	"booking-availability/schedule"

	"go.uber.org/zap"
)

const (
	ReasonDateBlocked = "date blocked by provider"
	ReasonNonWorkDay  = "non-work day"
)

type BlockChecker interface {
	IsBlocked(ctx context.Context, date time.Time) (bool, error)
}

type ScheduleResolver interface {
	Resolve(ctx context.Context, date time.Time) (schedule.DaySchedule, error)
}

type AppointmentStore interface {
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]appointment.Appointment, error)
	Insert(ctx context.Context, appt appointment.Appointment, now time.Time) (*appointment.Appointment, error)
}

// SlotLocker serialises booking attempts on the same instant across
// processes. It narrows the check-then-insert window; the unique index on
// appointments is still what guarantees a single live booking.
type SlotLocker interface {
	TryLock(ctx context.Context, key string) (token string, acquired bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Availability is the open slots of one date. Reason is set only when the
// whole day is unavailable; a fully booked day has no reason.
type Availability struct {
	Date   string   `json:"date"`
	Slots  []string `json:"slots"`
	Reason string   `json:"reason,omitempty"`
}

// Engine answers availability queries and commits bookings. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	blocks       BlockChecker
	schedules    ScheduleResolver
	appointments AppointmentStore
	locker       SlotLocker
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

func NewEngine(blocks BlockChecker, schedules ScheduleResolver, appointments AppointmentStore, loc *time.Location, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		blocks:       blocks,
		schedules:    schedules,
		appointments: appointments,
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
}

// WithLocker enables the cross-process slot lock for Book.
func (e *Engine) WithLocker(locker SlotLocker) *Engine {
	e.locker = locker
	return e
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// ParseDate reads a YYYY-MM-DD calendar date in the practice timezone.
func (e *Engine) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, value, e.loc)
}

// Day returns the half-open local interval covering date's calendar day.
func (e *Engine) Day(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, e.loc)
	return start, start.AddDate(0, 0, 1)
}

// dayState is the working window of a date before and after conflicts.
type dayState struct {
	reason     string
	candidates []string
	open       []string
}

func (e *Engine) evaluate(ctx context.Context, date time.Time) (dayState, error) {
	dayStart, dayEnd := e.Day(date)

	blocked, err := e.blocks.IsBlocked(ctx, dayStart)
	if err != nil {
		return dayState{}, &StorageError{Op: "check date block", Err: err}
	}
	if blocked {
		return dayState{reason: ReasonDateBlocked, candidates: []string{}, open: []string{}}, nil
	}

	hours, err := e.schedules.Resolve(ctx, dayStart)
	if err != nil {
		return dayState{}, &StorageError{Op: "resolve schedule", Err: err}
	}
	if !hours.IsWorkDay {
		return dayState{reason: ReasonNonWorkDay, candidates: []string{}, open: []string{}}, nil
	}

	candidates := Enumerate(hours.StartHour, hours.EndHour)
	if len(candidates) == 0 {
		return dayState{candidates: candidates, open: []string{}}, nil
	}

	booked, err := e.appointments.ListActiveBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return dayState{}, &StorageError{Op: "list appointments", Err: err}
	}

	return dayState{
		candidates: candidates,
		open:       FilterConflicts(candidates, booked, e.loc),
	}, nil
}

// GetAvailableSlots returns the bookable hourly slots of date's calendar day,
// in order. A closed day carries a Reason. Store failures are returned as
// *StorageError and never as an empty list; logging them is left to the
// caller.
func (e *Engine) GetAvailableSlots(ctx context.Context, date time.Time) (Availability, error) {
	state, err := e.evaluate(ctx, date)
	if err != nil {
		return Availability{}, err
	}

	e.logger.Debug("availability resolved",
		zap.String("date", date.Format(time.DateOnly)),
		zap.Int("candidates", len(state.candidates)),
		zap.Int("open", len(state.open)),
		zap.String("reason", state.reason),
	)

	return Availability{
		Date:   date.Format(time.DateOnly),
		Slots:  state.open,
		Reason: state.reason,
	}, nil
}
