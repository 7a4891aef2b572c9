package events

import "time"

type AppointmentBookedV1 struct {
	EventID       string    `json:"event_id"`
	AppointmentID string    `json:"appointment_id"`
	BookingNumber string    `json:"booking_number"`
	DoctorID      string    `json:"doctor_id"`
	PatientID     string    `json:"patient_id"`
	VisitDate     string    `json:"visit_date"`
	VisitTime     string    `json:"visit_time"`
	QueuePosition int       `json:"queue_position"`
	BookedAt      time.Time `json:"booked_at"`
}

func (AppointmentBookedV1) EventType() string { return "appointment.booked.v1" }

type QueueUpdatedV1 struct {
	EventID     string    `json:"event_id"`
	DoctorID    string    `json:"doctor_id"`
	VisitDate   string    `json:"visit_date"`
	QueueLength int       `json:"queue_length"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (QueueUpdatedV1) EventType() string { return "queue.updated.v1" }

type AttendanceMarkedV1 struct {
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	Date     string    `json:"date"`
	Status   string    `json:"status"`
	MarkedAt time.Time `json:"marked_at"`
}

func (AttendanceMarkedV1) EventType() string { return "attendance.marked.v1" }
