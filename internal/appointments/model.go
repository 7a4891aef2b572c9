package appointments

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/internal/scheduling"
)

// Appointment is a booked visit slot for a patient with a doctor.
type Appointment struct {
	ID            uuid.UUID            `json:"id"`
	BookingNumber string               `json:"booking_number"`
	PatientID     uuid.UUID            `json:"patient_id"`
	DoctorID      uuid.UUID            `json:"doctor_id"`
	VisitDate     time.Time            `json:"visit_date"`
	VisitTime     scheduling.TimeOfDay `json:"visit_time"`
	Symptoms      string               `json:"symptoms,omitempty"`
	Status        Status               `json:"status"`
	QueuePosition int                  `json:"queue_position"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// BookRequest represents the request body for booking an appointment
type BookRequest struct {
	PatientUserID string    `json:"-"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Symptoms      string    `json:"symptoms"`
}

// Parse validates the request and returns the normalized date and time.
func (r *BookRequest) Parse() (time.Time, scheduling.TimeOfDay, error) {
	if r.PatientUserID == "" {
		return time.Time{}, 0, fmt.Errorf("%w: missing patient user", ErrValidation)
	}
	if r.DoctorID == uuid.Nil {
		return time.Time{}, 0, fmt.Errorf("%w: missing doctor id", ErrValidation)
	}
	date, err := scheduling.ParseDate(r.Date)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	visitTime, err := scheduling.ParseTimeOfDay(r.Time)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return date, visitTime, nil
}

// FormatBookingNumber builds the human-readable, date-stamped booking number
// for the seq-th booking of the day.
func FormatBookingNumber(date time.Time, seq int) string {
	return fmt.Sprintf("OPD-%s-%04d", date.Format("20060102"), seq)
}
