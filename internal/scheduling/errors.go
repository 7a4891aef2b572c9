package scheduling

import "errors"

var (
	// ErrDoctorNotFound is returned when no schedule exists for the doctor
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrInvalidSlotDuration is returned when the slot duration is non-positive
	ErrInvalidSlotDuration = errors.New("slot duration must be positive")

	// ErrInvalidWindow is returned when a window's boundaries are malformed
	ErrInvalidWindow = errors.New("availability window must satisfy start < end")

	// ErrDuplicateWindow is returned when a weekday carries more than one window
	ErrDuplicateWindow = errors.New("at most one availability window per weekday")
)
