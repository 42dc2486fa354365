package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"moviehub/internal/core/domain"
	"moviehub/internal/core/ports"
	"moviehub/pkg/tracing"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "moviehub:user:"
	usersTable    = "users"
)

// userRecord is the stored form of domain.User. It is kept separate so
// the password hash never gains a JSON tag on the domain type.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type RedisUserRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisUserRepository(client *redis.Client) ports.UserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: userKeyPrefix,
	}
}

func (r *RedisUserRepository) userKey(email string) string {
	return r.prefix + email
}

// Create relies on SETNX so two instances racing on the same email
// cannot both succeed.
func (r *RedisUserRepository) Create(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(userRecord{
		ID:           string(user.ID),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	ctx, span := tracing.TraceDatabaseOperation(ctx, "setnx", usersTable)
	defer span.End()
	defer tracing.MeasureDuration(ctx, time.Now(), "user.create")

	created, err := r.client.SetNX(ctx, r.userKey(user.Email), data, 0).Result()
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to set user in Redis: %w", err)
	}
	if !created {
		return domain.ErrDuplicateUser
	}
	return nil
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "get", usersTable)
	defer span.End()

	data, err := r.client.Get(ctx, r.userKey(email)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to get user from Redis: %w", err)
	}

	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &domain.User{
		ID:           domain.UserID(rec.ID),
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (r *RedisUserRepository) Exists(ctx context.Context, email string) (bool, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "exists", usersTable)
	defer span.End()

	n, err := r.client.Exists(ctx, r.userKey(email)).Result()
	if err != nil {
		tracing.RecordError(ctx, err)
		return false, fmt.Errorf("failed to check user in Redis: %w", err)
	}
	return n > 0, nil
}
