package appointments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/internal/notify"
	"github.com/carelink/hospital-platform/internal/patients"
	"github.com/carelink/hospital-platform/internal/scheduling"
)

// 2026-08-31 is a Monday.
var bookDate = time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

type serviceFixture struct {
	service   *Service
	repo      *InMemoryRepository
	patients  *patients.InMemoryRepository
	publisher *notify.MemoryPublisher
	doctorID  uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	doctorID := uuid.New()
	schedules := scheduling.NewInMemoryScheduleRepository()
	err := schedules.UpdateSchedule(context.Background(), &scheduling.WeeklySchedule{
		DoctorID:            doctorID,
		SlotDurationMinutes: 30,
		Windows: []scheduling.AvailabilityWindow{
			{Weekday: time.Monday, Start: mustTime(t, "09:00"), End: mustTime(t, "12:00")},
		},
	})
	if err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	repo := NewInMemoryRepository()
	allocator := scheduling.NewAllocator(schedules, repo, nil, nil, nil)

	patientRepo := patients.NewInMemoryRepository()
	patientRepo.Add(&patients.Patient{UserID: "user-1", FullName: "Asha Verma"})
	patientRepo.Add(&patients.Patient{UserID: "user-2", FullName: "Ravi Menon"})

	publisher := notify.NewMemoryPublisher()
	return &serviceFixture{
		service:   NewService(repo, patientRepo, allocator, publisher, nil, nil),
		repo:      repo,
		patients:  patientRepo,
		publisher: publisher,
		doctorID:  doctorID,
	}
}

func mustTime(t *testing.T, s string) scheduling.TimeOfDay {
	t.Helper()
	tod, err := scheduling.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return tod
}

func (f *serviceFixture) book(t *testing.T, userID, at string) (*Appointment, error) {
	t.Helper()
	return f.service.Book(context.Background(), &BookRequest{
		PatientUserID: userID,
		DoctorID:      f.doctorID,
		Date:          bookDate.Format(time.DateOnly),
		Time:          at,
		Symptoms:      "fever",
	})
}

func TestBookAssignsBookingNumberAndQueuePosition(t *testing.T) {
	f := newServiceFixture(t)

	appt, err := f.book(t, "user-1", "09:00")
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if appt.BookingNumber != "OPD-20260831-0001" {
		t.Errorf("expected booking number OPD-20260831-0001, got %s", appt.BookingNumber)
	}
	if appt.QueuePosition != 1 {
		t.Errorf("expected queue position 1, got %d", appt.QueuePosition)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("expected status SCHEDULED, got %s", appt.Status)
	}
}

func TestBookSameSlotConflicts(t *testing.T) {
	f := newServiceFixture(t)

	if _, err := f.book(t, "user-1", "09:30"); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	_, err := f.book(t, "user-2", "09:30")
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}

func TestBookQueuePositionsIncrement(t *testing.T) {
	f := newServiceFixture(t)

	times := []string{"09:00", "09:30", "10:00"}
	for i, at := range times {
		appt, err := f.book(t, "user-1", at)
		if err != nil {
			t.Fatalf("booking %s failed: %v", at, err)
		}
		if appt.QueuePosition != i+1 {
			t.Errorf("booking %s: expected queue position %d, got %d", at, i+1, appt.QueuePosition)
		}
		want := fmt.Sprintf("OPD-20260831-%04d", i+1)
		if appt.BookingNumber != want {
			t.Errorf("booking %s: expected booking number %s, got %s", at, want, appt.BookingNumber)
		}
	}
}

func TestBookRequiresPatientProfile(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.book(t, "ghost-user", "09:00")
	if !errors.Is(err, ErrPatientProfileMissing) {
		t.Fatalf("expected ErrPatientProfileMissing, got %v", err)
	}
}

func TestBookOutsideSchedule(t *testing.T) {
	f := newServiceFixture(t)

	for _, at := range []string{"08:00", "09:15", "12:00"} {
		_, err := f.book(t, "user-1", at)
		if !errors.Is(err, ErrSlotOutsideSchedule) {
			t.Errorf("time %s: expected ErrSlotOutsideSchedule, got %v", at, err)
		}
	}
}

func TestBookUnknownDoctor(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Book(context.Background(), &BookRequest{
		PatientUserID: "user-1",
		DoctorID:      uuid.New(),
		Date:          bookDate.Format(time.DateOnly),
		Time:          "09:00",
	})
	if !errors.Is(err, scheduling.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestBookValidationErrors(t *testing.T) {
	f := newServiceFixture(t)

	cases := []struct {
		name string
		req  BookRequest
	}{
		{"missing user", BookRequest{DoctorID: f.doctorID, Date: "2026-08-31", Time: "09:00"}},
		{"missing doctor", BookRequest{PatientUserID: "user-1", Date: "2026-08-31", Time: "09:00"}},
		{"bad date", BookRequest{PatientUserID: "user-1", DoctorID: f.doctorID, Date: "31/08/2026", Time: "09:00"}},
		{"bad time", BookRequest{PatientUserID: "user-1", DoctorID: f.doctorID, Date: "2026-08-31", Time: "9am"}},
	}
	for _, tc := range cases {
		if _, err := f.service.Book(context.Background(), &tc.req); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestBookCancelledSlotReopens(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.book(t, "user-1", "10:00")
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := f.service.UpdateStatus(context.Background(), first.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	second, err := f.book(t, "user-2", "10:00")
	if err != nil {
		t.Fatalf("rebooking freed slot failed: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new appointment for the rebooked slot")
	}
}

func TestUpdateStatusCompletes(t *testing.T) {
	f := newServiceFixture(t)

	appt, err := f.book(t, "user-1", "09:00")
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	updated, err := f.service.UpdateStatus(context.Background(), appt.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", updated.Status)
	}
}

func TestUpdateStatusRejectsTerminalTransitions(t *testing.T) {
	f := newServiceFixture(t)

	appt, err := f.book(t, "user-1", "09:00")
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if _, err := f.service.UpdateStatus(context.Background(), appt.ID, StatusCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	_, err = f.service.UpdateStatus(context.Background(), appt.ID, StatusCancelled)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.From != StatusCompleted || invalid.To != StatusCancelled {
		t.Errorf("unexpected transition in error: %s -> %s", invalid.From, invalid.To)
	}
}

func TestUpdateStatusUnknownAppointment(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), uuid.New(), StatusCancelled)
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestBookPublishesEvents(t *testing.T) {
	f := newServiceFixture(t)

	if _, err := f.book(t, "user-1", "09:00"); err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	doctorRoom := "doctor:" + f.doctorID.String()
	queueRoom := fmt.Sprintf("queue:%s:%s", f.doctorID, bookDate.Format(time.DateOnly))

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(f.publisher.Events(doctorRoom)) > 0 && len(f.publisher.Events(queueRoom)) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("events not published: doctor=%d queue=%d",
				len(f.publisher.Events(doctorRoom)), len(f.publisher.Events(queueRoom)))
		}
		time.Sleep(10 * time.Millisecond)
	}

	booked := f.publisher.Events(doctorRoom)[0]
	if booked.EventType != "appointment.booked.v1" {
		t.Errorf("expected appointment.booked.v1, got %s", booked.EventType)
	}
	queue := f.publisher.Events(queueRoom)[0]
	if queue.EventType != "queue.updated.v1" {
		t.Errorf("expected queue.updated.v1, got %s", queue.EventType)
	}
}

func TestBookFailureDoesNotPublish(t *testing.T) {
	f := newServiceFixture(t)

	if _, err := f.book(t, "ghost-user", "09:00"); err == nil {
		t.Fatal("expected booking to fail")
	}
	time.Sleep(50 * time.Millisecond)
	if n := len(f.publisher.Events("doctor:" + f.doctorID.String())); n != 0 {
		t.Errorf("expected no events for failed booking, got %d", n)
	}
}
