package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type RuleStore interface {
	GetRule(ctx context.Context, dayOfWeek int) (*Rule, error)
}

// Resolver turns the weekly rules into the working window of a date.
type Resolver struct {
	rules    RuleStore
	defaults DefaultWeek
	logger   *zap.Logger
}

func NewResolver(rules RuleStore, defaults DefaultWeek, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		rules:    rules,
		defaults: defaults,
		logger:   logger,
	}
}

// Resolve returns the working window for date's day of week. A missing rule
// falls back to the default week; an unreadable rule closes the day. Only
// store failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, date time.Time) (DaySchedule, error) {
	weekday := date.Weekday()

	rule, err := r.rules.GetRule(ctx, int(weekday))
	if err != nil {
		return DaySchedule{}, fmt.Errorf("get rule: %w", err)
	}
	if rule == nil {
		return r.defaults.For(weekday), nil
	}
	if !rule.IsWorkDay {
		return DaySchedule{}, nil
	}

	start, err := ParseClock(rule.StartTime)
	if err != nil {
		r.reportConfigError(&ConfigurationError{DayOfWeek: rule.DayOfWeek, Field: "start_time", Value: rule.StartTime, Err: err})
		return DaySchedule{}, nil
	}
	end, err := ParseClock(rule.EndTime)
	if err != nil {
		r.reportConfigError(&ConfigurationError{DayOfWeek: rule.DayOfWeek, Field: "end_time", Value: rule.EndTime, Err: err})
		return DaySchedule{}, nil
	}

	return DaySchedule{
		IsWorkDay: true,
		StartHour: start.Hour,
		EndHour:   end.Hour,
	}, nil
}

func (r *Resolver) reportConfigError(err *ConfigurationError) {
	r.logger.Warn("weekly schedule rule unreadable, treating day as closed",
		zap.Int("day_of_week", err.DayOfWeek),
		zap.String("field", err.Field),
		zap.String("value", err.Value),
		zap.Error(err),
	)
}
