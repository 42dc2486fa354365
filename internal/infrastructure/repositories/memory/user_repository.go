package memory

import (
	"context"
	"sync"

	"moviehub/internal/core/domain"
	"moviehub/internal/core/ports"
)

// MemoryUserRepository keeps accounts for the lifetime of the process.
type MemoryUserRepository struct {
	users map[string]*domain.User
	mu    sync.RWMutex
}

func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return domain.ErrDuplicateUser
	}

	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[email]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) Exists(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.users[email]
	return exists, nil
}
