package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScheduleRepository defines the interface for doctor availability storage
type ScheduleRepository interface {
	GetSchedule(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error)
	UpdateSchedule(ctx context.Context, schedule *WeeklySchedule) error
}

// BookedSlotSource reports the occupied (non-cancelled) times of day for a
// doctor on a date. The appointments repository implements it.
type BookedSlotSource interface {
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeOfDay, error)
}

// InMemoryScheduleRepository is a stub implementation of ScheduleRepository
// using in-memory storage
type InMemoryScheduleRepository struct {
	mu        sync.RWMutex
	schedules map[uuid.UUID]*WeeklySchedule
}

// NewInMemoryScheduleRepository creates a new in-memory schedule repository
func NewInMemoryScheduleRepository() *InMemoryScheduleRepository {
	return &InMemoryScheduleRepository{
		schedules: make(map[uuid.UUID]*WeeklySchedule),
	}
}

// GetSchedule returns the stored schedule for a doctor
func (r *InMemoryScheduleRepository) GetSchedule(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schedule, ok := r.schedules[doctorID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	copied := *schedule
	copied.Windows = append([]AvailabilityWindow(nil), schedule.Windows...)
	return &copied, nil
}

// UpdateSchedule replaces the stored schedule for a doctor
func (r *InMemoryScheduleRepository) UpdateSchedule(ctx context.Context, schedule *WeeklySchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	copied := *schedule
	copied.Windows = append([]AvailabilityWindow(nil), schedule.Windows...)

	r.mu.Lock()
	r.schedules[schedule.DoctorID] = &copied
	r.mu.Unlock()
	return nil
}
