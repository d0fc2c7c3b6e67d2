package memory

import (
	"context"
	"sync"

	"goodnight/domain/entities"
)

// UserRepository is a mutex-guarded in-memory user store. Users are created
// externally; Put exists so tests and local seeding can install them.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entities.User
}

// NewUserRepository creates an in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*entities.User),
	}
}

// Put installs a user
func (r *UserRepository) Put(user *entities.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

// GetByID implements ports.UserRepository
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

// FindByIDs implements ports.UserRepository
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			result = append(result, user)
		}
	}
	return result, nil
}
