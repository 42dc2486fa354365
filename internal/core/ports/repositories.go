package ports

import (
	"context"

	"moviehub/internal/core/domain"
)

// UserRepository stores account records keyed by normalized email.
type UserRepository interface {
	// Create inserts user if no record with the same email exists and
	// returns domain.ErrDuplicateUser otherwise. The check and the insert
	// are atomic.
	Create(ctx context.Context, user *domain.User) error
	// GetByEmail returns domain.ErrUserNotFound when no record matches.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, email string) (bool, error)
}
