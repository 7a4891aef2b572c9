package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps malformed booking input rejected before storage
	ErrValidation = errors.New("invalid booking request")

	// ErrSlotConflict is returned when the requested slot is already taken
	ErrSlotConflict = errors.New("slot already booked")

	// ErrSlotOutsideSchedule is returned when the requested time is not one of
	// the doctor's bookable slot start times for that day
	ErrSlotOutsideSchedule = errors.New("requested time is outside the doctor's availability")

	// ErrPatientProfileMissing is returned when the requesting user has no
	// patient profile; the profile must be completed before booking
	ErrPatientProfileMissing = errors.New("patient profile missing")

	// ErrAppointmentNotFound is returned when an appointment does not exist
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrStaleStatus is returned by a compare-and-set when the stored status
	// no longer matches the expected one
	ErrStaleStatus = errors.New("appointment status changed concurrently")
)

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("appointments: cannot transition from %s to %s", e.From, e.To)
}
