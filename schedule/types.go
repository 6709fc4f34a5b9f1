package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Rule is the weekly recurring schedule for one day of the week
// (0 = Sunday .. 6 = Saturday). Times are local "HH:MM".
type Rule struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	IsWorkDay bool   `json:"is_work_day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("day of week %d out of range 0-6", r.DayOfWeek)
	}
	if !r.IsWorkDay {
		return nil
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if !start.Before(end) {
		return errors.New("start time must be before end time on a work day")
	}
	return nil
}

// DaySchedule is the effective working window of a single date.
type DaySchedule struct {
	IsWorkDay bool `json:"is_work_day"`
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
}

// DefaultWeek is applied to any day of the week that has no stored Rule.
type DefaultWeek struct {
	WorkDays  [7]bool
	StartHour int
	EndHour   int
}

// StandardWeek opens Monday to Friday 09:00-17:00 and closes the weekend.
var StandardWeek = DefaultWeek{
	WorkDays:  [7]bool{time.Monday: true, time.Tuesday: true, time.Wednesday: true, time.Thursday: true, time.Friday: true},
	StartHour: 9,
	EndHour:   17,
}

func (d DefaultWeek) For(day time.Weekday) DaySchedule {
	if !d.WorkDays[day] {
		return DaySchedule{}
	}
	return DaySchedule{IsWorkDay: true, StartHour: d.StartHour, EndHour: d.EndHour}
}

// Clock is a local time of day with minute precision. Hour may be 24 only
// as 24:00, the end of the day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) Before(o Clock) bool {
	if c.Hour != o.Hour {
		return c.Hour < o.Hour
	}
	return c.Minute < o.Minute
}

// ParseClock accepts "HH:MM" and "HH:MM:SS". Seconds are dropped.
func ParseClock(value string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("malformed time %q", value)
	}

	fields := make([]int, len(parts))
	for i, part := range parts {
		if len(part) != 2 {
			return Clock{}, fmt.Errorf("malformed time %q", value)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Clock{}, fmt.Errorf("malformed time %q", value)
		}
		fields[i] = n
	}

	c := Clock{Hour: fields[0], Minute: fields[1]}
	if c.Hour > 24 || c.Minute > 59 || (c.Hour == 24 && c.Minute != 0) {
		return Clock{}, fmt.Errorf("time %q out of range", value)
	}
	if len(fields) == 3 && (fields[2] > 59 || (c.Hour == 24 && fields[2] != 0)) {
		return Clock{}, fmt.Errorf("time %q out of range", value)
	}
	return c, nil
}

// ConfigurationError reports a stored Rule that cannot be interpreted.
// The resolver treats the affected day as non-working.
type ConfigurationError struct {
	DayOfWeek int
	Field     string
	Value     string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("schedule rule for day %d has invalid %s %q: %v", e.DayOfWeek, e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
