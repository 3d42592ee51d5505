package users

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepository is an in-process credential store. It backs the server
// when no database is configured and the unit tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

// Create stores a new user, enforcing email uniqueness.
func (r *MemoryRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrEmailExists
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[key] = &stored
	return nil
}

// GetByEmail retrieves a user by email.
func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByID retrieves a user by ID.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// Delete removes a user. Used by tests exercising the deleted-after-issue
// path of the request gate.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(r.byEmail, strings.ToLower(user.Email))
	delete(r.byID, id)
	return nil
}
