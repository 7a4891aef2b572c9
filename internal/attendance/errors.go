package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyMarked is returned when the user already checked in today
	ErrAlreadyMarked = errors.New("attendance already marked for today")

	// ErrAlreadyCheckedOut is returned on a repeated check-out
	ErrAlreadyCheckedOut = errors.New("already checked out")

	// ErrNoCheckInFound is returned on check-out without a prior check-in
	ErrNoCheckInFound = errors.New("no check-in found for today")

	// ErrRecordNotFound is returned when no attendance record exists
	ErrRecordNotFound = errors.New("attendance record not found")
)

// OutsideGeofenceError rejects a mark attempted beyond the workplace fence.
// It carries the measured distance so the client can show it.
type OutsideGeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *OutsideGeofenceError) Error() string {
	return fmt.Sprintf("attendance: location is %.0fm from the workplace, outside the %.0fm geofence",
		e.DistanceMeters, e.RadiusMeters)
}
