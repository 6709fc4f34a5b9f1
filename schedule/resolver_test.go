package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking-availability/schedule"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockRuleStore is a mock implementation of the RuleStore interface
type MockRuleStore struct {
	testifymock.Mock
}

func (m *MockRuleStore) GetRule(ctx context.Context, dayOfWeek int) (*schedule.Rule, error) {
	args := m.Called(ctx, dayOfWeek)
	rule, _ := args.Get(0).(*schedule.Rule)
	return rule, args.Error(1)
}

// 2025-03-03 is a Monday.
func day(offset int) time.Time {
	return time.Date(2025, 3, 3+offset, 0, 0, 0, 0, time.UTC)
}

func TestResolverDefaults(t *testing.T) {
	store := new(MockRuleStore)
	store.On("GetRule", testifymock.Anything, testifymock.Anything).Return(nil, nil)
	r := schedule.NewResolver(store, schedule.StandardWeek, nil)

	for offset := 0; offset < 7; offset++ {
		date := day(offset)
		got, err := r.Resolve(context.Background(), date)
		require.NoError(t, err)

		switch date.Weekday() {
		case time.Saturday, time.Sunday:
			assert.Equal(t, schedule.DaySchedule{}, got, date.Weekday().String())
		default:
			assert.Equal(t, schedule.DaySchedule{IsWorkDay: true, StartHour: 9, EndHour: 17}, got, date.Weekday().String())
		}
	}
}

func TestResolverCustomDefaults(t *testing.T) {
	store := new(MockRuleStore)
	store.On("GetRule", testifymock.Anything, 6).Return(nil, nil)

	week := schedule.StandardWeek
	week.WorkDays[time.Saturday] = true
	week.StartHour, week.EndHour = 10, 14
	r := schedule.NewResolver(store, week, nil)

	got, err := r.Resolve(context.Background(), day(5))
	require.NoError(t, err)
	assert.Equal(t, schedule.DaySchedule{IsWorkDay: true, StartHour: 10, EndHour: 14}, got)
}

func TestResolverRules(t *testing.T) {
	monday := day(0)
	saturday := day(5)

	t.Run("rule hours truncated to the hour", func(t *testing.T) {
		store := new(MockRuleStore)
		store.On("GetRule", testifymock.Anything, 1).
			Return(&schedule.Rule{DayOfWeek: 1, IsWorkDay: true, StartTime: "10:30", EndTime: "13:45"}, nil)
		r := schedule.NewResolver(store, schedule.StandardWeek, nil)

		got, err := r.Resolve(context.Background(), monday)
		require.NoError(t, err)
		assert.Equal(t, schedule.DaySchedule{IsWorkDay: true, StartHour: 10, EndHour: 13}, got)
		store.AssertExpectations(t)
	})

	t.Run("closed rule overrides weekday default", func(t *testing.T) {
		store := new(MockRuleStore)
		store.On("GetRule", testifymock.Anything, 1).
			Return(&schedule.Rule{DayOfWeek: 1, IsWorkDay: false, StartTime: "09:00", EndTime: "17:00"}, nil)
		r := schedule.NewResolver(store, schedule.StandardWeek, nil)

		got, err := r.Resolve(context.Background(), monday)
		require.NoError(t, err)
		assert.False(t, got.IsWorkDay)
	})

	t.Run("open rule overrides weekend default", func(t *testing.T) {
		store := new(MockRuleStore)
		store.On("GetRule", testifymock.Anything, 6).
			Return(&schedule.Rule{DayOfWeek: 6, IsWorkDay: true, StartTime: "09:00:00", EndTime: "12:00:00"}, nil)
		r := schedule.NewResolver(store, schedule.StandardWeek, nil)

		got, err := r.Resolve(context.Background(), saturday)
		require.NoError(t, err)
		assert.Equal(t, schedule.DaySchedule{IsWorkDay: true, StartHour: 9, EndHour: 12}, got)
	})

	t.Run("malformed rule fails closed and is logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		store := new(MockRuleStore)
		store.On("GetRule", testifymock.Anything, 1).
			Return(&schedule.Rule{DayOfWeek: 1, IsWorkDay: true, StartTime: "nine", EndTime: "17:00"}, nil)
		r := schedule.NewResolver(store, schedule.StandardWeek, zap.New(core))

		got, err := r.Resolve(context.Background(), monday)
		require.NoError(t, err)
		assert.False(t, got.IsWorkDay)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "start_time", entry.ContextMap()["field"])
		assert.Equal(t, "nine", entry.ContextMap()["value"])
	})

	t.Run("store failure is returned", func(t *testing.T) {
		store := new(MockRuleStore)
		store.On("GetRule", testifymock.Anything, 1).Return(nil, errors.New("connection refused"))
		r := schedule.NewResolver(store, schedule.StandardWeek, nil)

		_, err := r.Resolve(context.Background(), monday)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestParseClock(t *testing.T) {
	valid := map[string]schedule.Clock{
		"00:00":    {Hour: 0, Minute: 0},
		"09:30":    {Hour: 9, Minute: 30},
		"17:00:00": {Hour: 17, Minute: 0},
		"24:00":    {Hour: 24, Minute: 0},
	}
	for in, want := range valid {
		got, err := schedule.ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "9:00", "09", "09:60", "25:00", "24:30", "ab:cd", "09:00:00:00", "-1:00"} {
		_, err := schedule.ParseClock(in)
		assert.Error(t, err, in)
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    schedule.Rule
		wantErr bool
	}{
		{"open day", schedule.Rule{DayOfWeek: 2, IsWorkDay: true, StartTime: "09:00", EndTime: "17:00"}, false},
		{"closed day ignores hours", schedule.Rule{DayOfWeek: 0, IsWorkDay: false}, false},
		{"start equals end", schedule.Rule{DayOfWeek: 2, IsWorkDay: true, StartTime: "10:00", EndTime: "10:00"}, true},
		{"start after end", schedule.Rule{DayOfWeek: 2, IsWorkDay: true, StartTime: "18:00", EndTime: "10:00"}, true},
		{"day out of range", schedule.Rule{DayOfWeek: 7, IsWorkDay: false}, true},
		{"negative day", schedule.Rule{DayOfWeek: -1, IsWorkDay: true, StartTime: "09:00", EndTime: "17:00"}, true},
		{"saturday", schedule.Rule{DayOfWeek: 6, IsWorkDay: false}, false},
		{"malformed start", schedule.Rule{DayOfWeek: 2, IsWorkDay: true, StartTime: "9am", EndTime: "17:00"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	err := (&schedule.Rule{DayOfWeek: 9}).Validate()
	assert.EqualError(t, err, "day of week 9 out of range 0-6")
}
