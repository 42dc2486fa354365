// Package config loads runtime settings for the MovieHub browse client.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: MOVIEHUB_API_URL and MOVIEHUB_STORAGE_PATH.
//  3. Command-line flags:
//
//	-api string       base URL of the MovieHub server
//	-storage string   path of the durable client storage file
//	-timeout duration request timeout for server calls
//	-parallel         load catalog sections concurrently
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moviehub/pkg/validation"
)

const (
	EnvAPIURL      = "MOVIEHUB_API_URL"
	EnvStoragePath = "MOVIEHUB_STORAGE_PATH"
)

type Config struct {
	APIURL      string
	StoragePath string
	Timeout     time.Duration
	Parallel    bool
}

// LoadDefaults populates c with defaults. The storage file lives under
// the user's home directory when one can be resolved.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8080"
	c.StoragePath = defaultStoragePath()
	c.Timeout = 15 * time.Second
	c.Parallel = false
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".moviehub", "storage.json")
	}
	return filepath.Join(home, ".moviehub", "storage.json")
}

// Load applies defaults, environment and then args (without the program
// name). Flag output goes to errOut.
func Load(args []string, errOut io.Writer) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.applyEnv()

	fs := flag.NewFlagSet("moviehub", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "base URL of the MovieHub server")
	fs.StringVar(&cfg.StoragePath, "storage", cfg.StoragePath, "path of the client storage file")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout for server calls")
	fs.BoolVar(&cfg.Parallel, "parallel", cfg.Parallel, "load catalog sections concurrently")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		c.StoragePath = v
	}
}

func (c *Config) Validate() error {
	if err := validation.ValidateURL(c.APIURL); err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if err := validation.ValidateNonEmptyString(c.StoragePath, "storage path"); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	return nil
}
