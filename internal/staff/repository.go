package staff

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for barber storage.
type Repository interface {
	Create(ctx context.Context, req *CreateBarberRequest) (*Barber, error)
	GetByID(ctx context.Context, id string) (*Barber, error)
	GetByPhone(ctx context.Context, phone string) (*Barber, error)
	List(ctx context.Context) ([]*Barber, error)
	Deactivate(ctx context.Context, id string) error
	DisplayNames(ctx context.Context) (map[string]string, error)
}

// InMemoryRepository is a stub Repository used in tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	barbers map[string]*Barber
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{barbers: make(map[string]*Barber)}
}

// Create adds a new barber in memory.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateBarberRequest) (*Barber, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	barber := &Barber{
		ID:          uuid.New().String(),
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Email:       req.Email,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.barbers[barber.ID] = barber
	r.mu.Unlock()

	return barber, nil
}

// GetByID retrieves a barber by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Barber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	barber, ok := r.barbers[id]
	if !ok {
		return nil, ErrBarberNotFound
	}
	return barber, nil
}

// GetByPhone retrieves a barber by phone number.
func (r *InMemoryRepository) GetByPhone(ctx context.Context, phone string) (*Barber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.barbers {
		if b.Phone == phone {
			return b, nil
		}
	}
	return nil, ErrBarberNotFound
}

// List returns all barbers.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Barber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Barber, 0, len(r.barbers))
	for _, b := range r.barbers {
		out = append(out, b)
	}
	return out, nil
}

// Deactivate marks a barber inactive.
func (r *InMemoryRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	barber, ok := r.barbers[id]
	if !ok {
		return ErrBarberNotFound
	}
	barber.Active = false
	return nil
}

// DisplayNames maps barber IDs to display names for reporting.
func (r *InMemoryRepository) DisplayNames(ctx context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[string]string, len(r.barbers))
	for id, b := range r.barbers {
		names[id] = b.DisplayName
	}
	return names, nil
}
