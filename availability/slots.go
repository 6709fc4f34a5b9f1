package availability

import (
	"fmt"
	"slices"
	"time"

	"booking-availability/appointment"
)

// Enumerate returns one "HH:00" label per whole hour in [startHour, endHour).
func Enumerate(startHour, endHour int) []string {
	slots := []string{}
	for h := startHour; h < endHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

// FilterConflicts drops every candidate whose label equals the local
// "HH:MM" start of a slot-holding appointment. Only exact matches collide,
// so an appointment at 09:30 leaves the 09:00 slot open.
func FilterConflicts(candidates []string, appointments []appointment.Appointment, loc *time.Location) []string {
	occupied := make(map[string]struct{}, len(appointments))
	for _, appt := range appointments {
		if !appt.Status.Occupies() {
			continue
		}
		occupied[appt.ScheduledAt.In(loc).Format("15:04")] = struct{}{}
	}

	open := slices.DeleteFunc(slices.Clone(candidates), func(slot string) bool {
		_, taken := occupied[slot]
		return taken
	})
	if open == nil {
		return []string{}
	}
	return open
}
