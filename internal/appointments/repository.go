package appointments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/internal/scheduling"
)

// Repository defines the interface for appointment storage
type Repository interface {
	// Insert persists a new appointment, assigning its queue position. The
	// storage layer owns the no-double-booking invariant and returns
	// ErrSlotConflict when the slot is taken.
	Insert(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// CompareAndSetStatus transitions id from one status to another; it
	// returns ErrStaleStatus if the stored status no longer matches.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	CountScheduled(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]scheduling.TimeOfDay, error)
	// NextSequence advances and returns the per-day booking number counter.
	NextSequence(ctx context.Context, date time.Time) (int, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage
type InMemoryRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*Appointment
	counters     map[string]int
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments: make(map[uuid.UUID]*Appointment),
		counters:     make(map[string]int),
	}
}

// Insert persists the appointment, enforcing slot uniqueness among
// non-cancelled rows the same way the relational unique index does.
func (r *InMemoryRepository) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scheduled := 0
	for _, existing := range r.appointments {
		if existing.DoctorID != appt.DoctorID || !existing.VisitDate.Equal(appt.VisitDate) {
			continue
		}
		if existing.Status != StatusCancelled && existing.VisitTime == appt.VisitTime {
			return nil, ErrSlotConflict
		}
		if existing.Status == StatusScheduled {
			scheduled++
		}
	}

	now := time.Now().UTC()
	copied := *appt
	copied.QueuePosition = scheduled + 1
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.appointments[copied.ID] = &copied

	result := copied
	return &result, nil
}

// GetByID retrieves an appointment by id
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

// CompareAndSetStatus applies a guarded status transition
func (r *InMemoryRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status != from {
		return nil, ErrStaleStatus
	}
	appt.Status = to
	appt.UpdatedAt = time.Now().UTC()
	copied := *appt
	return &copied, nil
}

// CountScheduled counts SCHEDULED appointments for a doctor on a date
func (r *InMemoryRepository) CountScheduled(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, appt := range r.appointments {
		if appt.DoctorID == doctorID && appt.VisitDate.Equal(date) && appt.Status == StatusScheduled {
			count++
		}
	}
	return count, nil
}

// BookedTimes lists the occupied times of day for a doctor on a date
func (r *InMemoryRepository) BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]scheduling.TimeOfDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var times []scheduling.TimeOfDay
	for _, appt := range r.appointments {
		if appt.DoctorID == doctorID && appt.VisitDate.Equal(date) && appt.Status != StatusCancelled {
			times = append(times, appt.VisitTime)
		}
	}
	return times, nil
}

// NextSequence advances the per-day booking counter
func (r *InMemoryRepository) NextSequence(ctx context.Context, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := date.Format(time.DateOnly)
	r.counters[key]++
	return r.counters[key], nil
}
