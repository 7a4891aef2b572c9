package patients

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for patient profile storage
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Patient, error)
	// Create persists a new profile and returns ErrProfileExists when the
	// user already has one.
	Create(ctx context.Context, p *Patient) (*Patient, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Patient
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Patient),
	}
}

// Add seeds a profile, generating an id if absent.
func (r *InMemoryRepository) Add(p *Patient) *Patient {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.profiles[p.UserID] = p
	r.mu.Unlock()
	return p
}

// Create persists a new profile, rejecting a duplicate for the same user.
func (r *InMemoryRepository) Create(ctx context.Context, p *Patient) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.UserID]; exists {
		return nil, ErrProfileExists
	}
	copied := *p
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.profiles[copied.UserID] = &copied
	result := copied
	return &result, nil
}

// GetByUserID retrieves a profile by the owning user id
func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}
