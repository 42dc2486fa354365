package repositories

import (
	"context"
	"fmt"

	"moviehub/internal/core/ports"
	"moviehub/internal/infrastructure/repositories/memory"
	redisrepo "moviehub/internal/infrastructure/repositories/redis"
	"moviehub/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory builds the account store selected by storage.backend.
type RepositoryFactory struct {
	backend     string
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory connects to Redis when the redis backend is
// selected. A failed connection is an error; there is no fallback to the
// memory store.
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		backend: cfg.Storage.Backend,
		logger:  logger,
	}

	switch cfg.Storage.Backend {
	case config.StorageBackendRedis:
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("storage backend redis: %w", err)
		}
		factory.redisClient = client
		logger.Infow("using Redis account store", "address", cfg.Redis.Address)
	case config.StorageBackendMemory:
		logger.Info("using in-memory account store; accounts are lost on restart")
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return factory, nil
}

// CreateUserRepository returns the configured account store.
func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	if f.redisClient != nil {
		return redisrepo.NewRedisUserRepository(f.redisClient)
	}
	return memory.NewMemoryUserRepository()
}

// Backend reports the active storage backend.
func (f *RepositoryFactory) Backend() string {
	return f.backend
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck pings Redis when it backs the account store.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
