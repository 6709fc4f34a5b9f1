package availability_test

import (
	"context"
	"sync"
	"time"

	"booking-availability/appointment"
	"booking-availability/schedule"

	"github.com/google/uuid"
)

type memBlocks struct {
	dates map[string]bool
	err   error
}

func (m *memBlocks) IsBlocked(_ context.Context, date time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.dates[date.Format(time.DateOnly)], nil
}

type memRules struct {
	rules map[int]schedule.Rule
	err   error
}

func (m *memRules) GetRule(_ context.Context, dayOfWeek int) (*schedule.Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	rule, ok := m.rules[dayOfWeek]
	if !ok {
		return nil, nil
	}
	return &rule, nil
}

// memAppointments enforces one live appointment per instant, like the
// partial unique index in Postgres.
type memAppointments struct {
	mu        sync.Mutex
	rows      []appointment.Appointment
	listErr   error
	insertErr error
	lists     int
	afterList func()
}

func (m *memAppointments) add(at time.Time, status appointment.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, appointment.Appointment{
		ID:          uuid.New(),
		GuestName:   "Existing",
		GuestEmail:  "existing@example.com",
		ScheduledAt: at,
		Status:      status,
		Type:        appointment.ServiceIndividual,
	})
}

func (m *memAppointments) ListActiveBetween(_ context.Context, from, to time.Time) ([]appointment.Appointment, error) {
	m.mu.Lock()
	m.lists++
	if m.listErr != nil {
		m.mu.Unlock()
		return nil, m.listErr
	}
	var out []appointment.Appointment
	for _, row := range m.rows {
		if row.Status.Occupies() && !row.ScheduledAt.Before(from) && row.ScheduledAt.Before(to) {
			out = append(out, row)
		}
	}
	hook := m.afterList
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *memAppointments) Insert(_ context.Context, appt appointment.Appointment, now time.Time) (*appointment.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	for _, row := range m.rows {
		if row.Status.Occupies() && row.ScheduledAt.Equal(appt.ScheduledAt) {
			return nil, appointment.ErrSlotTaken
		}
	}
	appt.ID = uuid.New()
	appt.CreatedAt = now
	m.rows = append(m.rows, appt)
	return &appt, nil
}

func (m *memAppointments) live(at time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.Status.Occupies() && row.ScheduledAt.Equal(at) {
			n++
		}
	}
	return n
}

type memLocker struct {
	mu      sync.Mutex
	held    map[string]string
	err     error
	unlocks int
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]string{}}
}

func (l *memLocker) TryLock(_ context.Context, key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *memLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unlocks++
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}
