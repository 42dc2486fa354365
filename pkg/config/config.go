package config

import (
	"fmt"
	"os"
	"time"

	"moviehub/pkg/validation"

	"gopkg.in/yaml.v2"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendRedis  = "redis"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		Gzip            bool          `yaml:"gzip"`
	} `yaml:"server"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Catalog struct {
		// APIKey is the provider credential. Usually supplied through
		// TMDB_API_KEY rather than the file.
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url"`
		Language       string        `yaml:"language"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`

		Retry struct {
			Enabled      bool          `yaml:"enabled"`
			MaxAttempts  int           `yaml:"max_attempts"`
			InitialDelay time.Duration `yaml:"initial_delay"`
			MaxDelay     time.Duration `yaml:"max_delay"`
		} `yaml:"retry"`

		CircuitBreaker struct {
			Enabled          bool          `yaml:"enabled"`
			FailureThreshold int           `yaml:"failure_threshold"`
			SuccessThreshold int           `yaml:"success_threshold"`
			Timeout          time.Duration `yaml:"timeout"`
		} `yaml:"circuit_breaker"`
	} `yaml:"catalog"`

	Storage struct {
		Backend string `yaml:"backend"`
	} `yaml:"storage"`

	Password struct {
		MemoryKiB   uint32 `yaml:"memory_kib"`
		Iterations  uint32 `yaml:"iterations"`
		Parallelism uint8  `yaml:"parallelism"`
	} `yaml:"password"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled    bool    `yaml:"enabled"`
		JaegerURL  string  `yaml:"jaeger_url"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
// A missing catalog API key is deliberately not an error here: the proxy
// reports it per request.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Catalog
	if err := validation.ValidateURL(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("catalog.base_url: %w", err)
	}
	if c.Catalog.RequestTimeout <= 0 {
		return fmt.Errorf("catalog.request_timeout must be > 0")
	}
	if c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog.cache_ttl must be >= 0")
	}
	if c.Catalog.Retry.Enabled {
		if c.Catalog.Retry.MaxAttempts <= 0 {
			return fmt.Errorf("catalog.retry.max_attempts must be > 0 when retry is enabled")
		}
		if c.Catalog.Retry.InitialDelay <= 0 {
			return fmt.Errorf("catalog.retry.initial_delay must be > 0 when retry is enabled")
		}
	}
	if c.Catalog.CircuitBreaker.Enabled {
		if c.Catalog.CircuitBreaker.FailureThreshold <= 0 {
			return fmt.Errorf("catalog.circuit_breaker.failure_threshold must be > 0")
		}
		if c.Catalog.CircuitBreaker.SuccessThreshold <= 0 {
			return fmt.Errorf("catalog.circuit_breaker.success_threshold must be > 0")
		}
		if c.Catalog.CircuitBreaker.Timeout <= 0 {
			return fmt.Errorf("catalog.circuit_breaker.timeout must be > 0")
		}
	}

	// Storage
	switch c.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when storage.backend=redis")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when storage.backend=redis")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q",
			StorageBackendMemory, StorageBackendRedis, c.Storage.Backend)
	}

	// Password hashing
	if c.Password.MemoryKiB == 0 || c.Password.Iterations == 0 || c.Password.Parallelism == 0 {
		return fmt.Errorf("password.memory_kib, iterations and parallelism must be > 0")
	}

	// Tracing
	if c.Tracing.Enabled && c.Tracing.JaegerURL == "" {
		return fmt.Errorf("tracing.jaeger_url must not be empty when tracing is enabled")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.Server.Gzip = true

	cfg.CORS.AllowedOrigins = []string{"*"}

	cfg.Catalog.BaseURL = "https://api.themoviedb.org/3"
	cfg.Catalog.Language = "en-US"
	cfg.Catalog.RequestTimeout = 10 * time.Second
	cfg.Catalog.CacheTTL = 0

	// One outbound request per proxy call unless explicitly enabled
	cfg.Catalog.Retry.Enabled = false
	cfg.Catalog.Retry.MaxAttempts = 2
	cfg.Catalog.Retry.InitialDelay = 200 * time.Millisecond
	cfg.Catalog.Retry.MaxDelay = 2 * time.Second

	cfg.Catalog.CircuitBreaker.Enabled = true
	cfg.Catalog.CircuitBreaker.FailureThreshold = 5
	cfg.Catalog.CircuitBreaker.SuccessThreshold = 1
	cfg.Catalog.CircuitBreaker.Timeout = 30 * time.Second

	cfg.Storage.Backend = StorageBackendMemory

	// argon2id, OWASP minimum profile
	cfg.Password.MemoryKiB = 19 * 1024
	cfg.Password.Iterations = 2
	cfg.Password.Parallelism = 1

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("MOVIEHUB_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("MOVIEHUB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if backend := os.Getenv("MOVIEHUB_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if addr := os.Getenv("MOVIEHUB_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	if pass := os.Getenv("MOVIEHUB_REDIS_PASSWORD"); pass != "" {
		c.Redis.Password = pass
	}
	if base := os.Getenv("MOVIEHUB_TMDB_BASE_URL"); base != "" {
		c.Catalog.BaseURL = base
	}
	// The provider secret keeps the name the hosting platform uses.
	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		c.Catalog.APIKey = key
	}
}
