package patients

import "errors"

var (
	// ErrProfileNotFound is returned when no profile exists for the user
	ErrProfileNotFound = errors.New("patient profile not found")

	// ErrProfileExists is returned when the user already has a profile
	ErrProfileExists = errors.New("patient profile already exists")
)
