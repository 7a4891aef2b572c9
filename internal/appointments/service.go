package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carelink/hospital-platform/internal/events"
	"github.com/carelink/hospital-platform/internal/notify"
	"github.com/carelink/hospital-platform/internal/observability/metrics"
	"github.com/carelink/hospital-platform/internal/patients"
	"github.com/carelink/hospital-platform/internal/scheduling"
	"github.com/carelink/hospital-platform/pkg/logging"
)

var appointmentsTracer = otel.Tracer("hospital.internal.appointments")

// SlotSource exposes the availability computation the booking flow checks
// against. *scheduling.Allocator implements it.
type SlotSource interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]scheduling.TimeOfDay, error)
	InvalidateDay(ctx context.Context, doctorID uuid.UUID, date time.Time)
}

// Service books appointments and drives their status lifecycle.
type Service struct {
	repo          Repository
	patients      patients.Repository
	slots         SlotSource
	publisher     notify.Publisher
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewService constructs a booking service. publisher and m may be nil.
func NewService(repo Repository, patientDir patients.Repository, slots SlotSource, publisher notify.Publisher, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if patientDir == nil {
		panic("appointments: patient directory required")
	}
	if slots == nil {
		panic("appointments: slot source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:          repo,
		patients:      patientDir,
		slots:         slots,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
		notifyTimeout: 5 * time.Second,
		now:           time.Now,
	}
}

// Book validates the requested slot against current availability and persists
// the appointment. The storage layer's uniqueness guard has the final word on
// conflicts.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()

	date, visitTime, err := req.Parse()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("hospital.doctor_id", req.DoctorID.String()),
		attribute.String("hospital.date", date.Format(time.DateOnly)),
	)

	patient, err := s.patients.GetByUserID(ctx, req.PatientUserID)
	if err != nil {
		if errors.Is(err, patients.ErrProfileNotFound) {
			return nil, ErrPatientProfileMissing
		}
		return nil, fmt.Errorf("appointments: load patient profile: %w", err)
	}

	if err := s.checkSlotFree(ctx, req.DoctorID, date, visitTime); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.ObserveBooking("conflict")
		}
		return nil, err
	}

	seq, err := s.repo.NextSequence(ctx, date)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:            uuid.New(),
		BookingNumber: FormatBookingNumber(date, seq),
		PatientID:     patient.ID,
		DoctorID:      req.DoctorID,
		VisitDate:     date,
		VisitTime:     visitTime,
		Symptoms:      req.Symptoms,
		Status:        StatusScheduled,
	}

	created, err := s.repo.Insert(ctx, appt)
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.ObserveBooking("conflict")
		}
		span.RecordError(err)
		return nil, err
	}

	s.slots.InvalidateDay(ctx, created.DoctorID, created.VisitDate)
	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment booked",
		"booking_number", created.BookingNumber,
		"doctor_id", created.DoctorID,
		"queue_position", created.QueuePosition,
	)

	s.emitBookedEvents(created)
	return created, nil
}

// checkSlotFree re-checks the requested time against current availability.
// A time that is occupied is a conflict; a time the doctor never offers is a
// validation failure.
func (s *Service) checkSlotFree(ctx context.Context, doctorID uuid.UUID, date time.Time, visitTime scheduling.TimeOfDay) error {
	available, err := s.slots.AvailableSlots(ctx, doctorID, date)
	if err != nil {
		return err
	}
	for _, slot := range available {
		if slot == visitTime {
			return nil
		}
	}

	booked, err := s.repo.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return err
	}
	for _, t := range booked {
		if t == visitTime {
			return ErrSlotConflict
		}
	}
	return ErrSlotOutsideSchedule
}

// UpdateStatus applies a transition of the appointment status machine.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next Status) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.update_status")
	defer span.End()
	span.SetAttributes(attribute.String("hospital.appointment_id", id.String()))

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{From: appt.Status, To: next}
	}

	updated, err := s.repo.CompareAndSetStatus(ctx, id, appt.Status, next)
	if err != nil {
		if errors.Is(err, ErrStaleStatus) {
			// Lost a race with another transition; report against the state
			// that won.
			current, getErr := s.repo.GetByID(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &InvalidTransitionError{From: current.Status, To: next}
		}
		span.RecordError(err)
		return nil, err
	}

	if next == StatusCancelled {
		// The slot is bookable again.
		s.slots.InvalidateDay(ctx, updated.DoctorID, updated.VisitDate)
	}

	s.logger.Info("appointment status updated",
		"booking_number", updated.BookingNumber,
		"status", updated.Status,
	)
	return updated, nil
}

// emitBookedEvents publishes the booked and queue-update events without
// blocking or failing the booking response.
func (s *Service) emitBookedEvents(appt *Appointment) {
	if s.publisher == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		dateStr := appt.VisitDate.Format(time.DateOnly)
		booked := events.AppointmentBookedV1{
			EventID:       uuid.NewString(),
			AppointmentID: appt.ID.String(),
			BookingNumber: appt.BookingNumber,
			DoctorID:      appt.DoctorID.String(),
			PatientID:     appt.PatientID.String(),
			VisitDate:     dateStr,
			VisitTime:     appt.VisitTime.String(),
			QueuePosition: appt.QueuePosition,
			BookedAt:      s.now().UTC(),
		}
		if err := s.publisher.Publish(ctx, "doctor:"+booked.DoctorID, booked); err != nil {
			s.logger.Warn("booked event publish failed", "error", err, "booking_number", appt.BookingNumber)
		}

		queueLen, err := s.repo.CountScheduled(ctx, appt.DoctorID, appt.VisitDate)
		if err != nil {
			s.logger.Warn("queue length lookup failed", "error", err, "doctor_id", appt.DoctorID)
			queueLen = appt.QueuePosition
		}
		update := events.QueueUpdatedV1{
			EventID:     uuid.NewString(),
			DoctorID:    booked.DoctorID,
			VisitDate:   dateStr,
			QueueLength: queueLen,
			UpdatedAt:   s.now().UTC(),
		}
		room := fmt.Sprintf("queue:%s:%s", booked.DoctorID, dateStr)
		if err := s.publisher.Publish(ctx, room, update); err != nil {
			s.logger.Warn("queue event publish failed", "error", err, "doctor_id", appt.DoctorID)
		}
	}()
}
