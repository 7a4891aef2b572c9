package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a doctor's working window on one weekday. A doctor
// has at most one window per weekday.
type AvailabilityWindow struct {
	Weekday time.Weekday `json:"weekday"`
	Start   TimeOfDay    `json:"start"`
	End     TimeOfDay    `json:"end"`
}

// WeeklySchedule is a doctor's configured availability: the weekdays worked
// and the organization-wide slot duration applied to every window.
type WeeklySchedule struct {
	DoctorID            uuid.UUID            `json:"doctor_id"`
	SlotDurationMinutes int                  `json:"slot_duration_minutes"`
	Windows             []AvailabilityWindow `json:"windows"`
}

// WindowFor returns the window for a weekday, if the doctor works that day.
func (s *WeeklySchedule) WindowFor(day time.Weekday) (AvailabilityWindow, bool) {
	for _, w := range s.Windows {
		if w.Weekday == day {
			return w, true
		}
	}
	return AvailabilityWindow{}, false
}

// Validate checks window sanity before an update is accepted.
func (s *WeeklySchedule) Validate() error {
	if s.SlotDurationMinutes <= 0 {
		return ErrInvalidSlotDuration
	}
	seen := make(map[time.Weekday]bool, len(s.Windows))
	for _, w := range s.Windows {
		if seen[w.Weekday] {
			return ErrDuplicateWindow
		}
		seen[w.Weekday] = true
		if !w.Start.Valid() || !w.End.Valid() || w.End <= w.Start {
			return ErrInvalidWindow
		}
	}
	return nil
}
