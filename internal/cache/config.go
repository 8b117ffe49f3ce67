// File path: internal/cache/config.go
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTTL is how long a cached work-order record stays servable.
const DefaultTTL = 72 * time.Hour

// Backend kinds accepted by Config.Backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config controls the construction of the cache store and its storage
// backend.
type Config struct {
	Backend string
	Path    string
	TTL     time.Duration
}

// DefaultConfig returns the baseline configuration used when no overrides
// are supplied.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Path:    filepath.Join("data", "workorders.json"),
		TTL:     DefaultTTL,
	}
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("FIELDOPS_CACHE_BACKEND")); value != "" {
		backend := strings.ToLower(value)
		if backend != BackendFile && backend != BackendSQLite {
			return Config{}, fmt.Errorf("unknown FIELDOPS_CACHE_BACKEND %q", value)
		}
		cfg.Backend = backend
	}
	if value := strings.TrimSpace(os.Getenv("FIELDOPS_CACHE_PATH")); value != "" {
		cfg.Path = value
	} else if cfg.Backend == BackendSQLite {
		cfg.Path = filepath.Join("data", "workorders.db")
	}
	if value := strings.TrimSpace(os.Getenv("FIELDOPS_CACHE_TTL")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse FIELDOPS_CACHE_TTL: %w", err)
		}
		if dur <= 0 {
			return Config{}, fmt.Errorf("FIELDOPS_CACHE_TTL must be positive, got %s", dur)
		}
		cfg.TTL = dur
	}
	return cfg, nil
}

// Merge overlays non-empty fields from the override onto the base
// configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if trimmed := strings.TrimSpace(override.Backend); trimmed != "" {
		result.Backend = trimmed
	}
	if trimmed := strings.TrimSpace(override.Path); trimmed != "" {
		result.Path = trimmed
	}
	if override.TTL > 0 {
		result.TTL = override.TTL
	}
	return result
}
