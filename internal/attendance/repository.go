package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/carelink/hospital-platform/internal/scheduling"
)

// Repository defines the interface for attendance storage
type Repository interface {
	// Insert persists a check-in. The storage layer owns the one-record-per-day
	// invariant and returns ErrAlreadyMarked on a duplicate.
	Insert(ctx context.Context, rec *Record) (*Record, error)
	// SetCheckOut stamps the check-out on today's record. It returns
	// ErrNoCheckInFound when no record exists and ErrAlreadyCheckedOut when
	// the record is already closed.
	SetCheckOut(ctx context.Context, userID string, date time.Time, at time.Time, lat, lon float64) (*Record, error)
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error)
}

// ConfigRepository loads the workplace geofence configuration.
type ConfigRepository interface {
	Get(ctx context.Context) (GeofenceConfig, error)
}

// ShiftRepository resolves a per-user shift start override for a date. ok is
// false when the user has no assignment and the configured work start applies.
type ShiftRepository interface {
	ShiftStart(ctx context.Context, userID string, date time.Time) (start scheduling.TimeOfDay, ok bool, err error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage
type InMemoryRepository struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[string]*Record)}
}

func recordKey(userID string, date time.Time) string {
	return userID + "|" + date.Format(time.DateOnly)
}

// Insert persists the record, rejecting a second check-in for the same day.
func (r *InMemoryRepository) Insert(ctx context.Context, rec *Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(rec.UserID, rec.Date)
	if _, exists := r.records[key]; exists {
		return nil, ErrAlreadyMarked
	}
	copied := *rec
	r.records[key] = &copied
	result := copied
	return &result, nil
}

// SetCheckOut stamps the check-out on the day's record.
func (r *InMemoryRepository) SetCheckOut(ctx context.Context, userID string, date time.Time, at time.Time, lat, lon float64) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[recordKey(userID, date)]
	if !ok {
		return nil, ErrNoCheckInFound
	}
	if rec.CheckOutAt != nil {
		return nil, ErrAlreadyCheckedOut
	}
	rec.CheckOutAt = &at
	rec.CheckOutLat = &lat
	rec.CheckOutLon = &lon
	copied := *rec
	return &copied, nil
}

// GetByUserAndDate retrieves the day's record for a user
func (r *InMemoryRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[recordKey(userID, date)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

// StaticConfig is a ConfigRepository backed by a fixed value, for tests and
// single-tenant deployments configured from the environment.
type StaticConfig struct {
	Config GeofenceConfig
}

// Get returns the fixed configuration.
func (s StaticConfig) Get(ctx context.Context) (GeofenceConfig, error) {
	return s.Config, nil
}

// InMemoryShiftRepository holds shift assignments keyed by user and date.
type InMemoryShiftRepository struct {
	mu     sync.Mutex
	shifts map[string]scheduling.TimeOfDay
}

// NewInMemoryShiftRepository creates an empty in-memory shift store.
func NewInMemoryShiftRepository() *InMemoryShiftRepository {
	return &InMemoryShiftRepository{shifts: make(map[string]scheduling.TimeOfDay)}
}

// Assign records the shift start for a user on a date.
func (r *InMemoryShiftRepository) Assign(userID string, date time.Time, start scheduling.TimeOfDay) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shifts[recordKey(userID, date)] = start
}

// ShiftStart resolves the assignment for a user on a date.
func (r *InMemoryShiftRepository) ShiftStart(ctx context.Context, userID string, date time.Time) (scheduling.TimeOfDay, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, ok := r.shifts[recordKey(userID, date)]
	return start, ok, nil
}
