// File path: internal/portal/config.go
package portal

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Endpoint string `json:"endpoint"`

	Timeout       time.Duration `json:"-"`
	TimeoutString string        `json:"timeout"`

	HTTPMaxIdleConns    int           `json:"http_max_idle_conns"`
	HTTPMaxIdlePerHost  int           `json:"http_max_idle_per_host"`
	HTTPIdleConnTimeout time.Duration `json:"-"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Endpoint) != "" {
		result.Endpoint = strings.TrimSpace(override.Endpoint)
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if override.HTTPMaxIdleConns > 0 {
		result.HTTPMaxIdleConns = override.HTTPMaxIdleConns
	}
	if override.HTTPMaxIdlePerHost > 0 {
		result.HTTPMaxIdlePerHost = override.HTTPMaxIdlePerHost
	}
	if override.HTTPIdleConnTimeout > 0 {
		result.HTTPIdleConnTimeout = override.HTTPIdleConnTimeout
	}
	return result
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if value := strings.TrimSpace(os.Getenv("FIELDOPS_PORTAL_ENDPOINT")); value != "" {
		cfg.Endpoint = value
	}
	if value := strings.TrimSpace(os.Getenv("FIELDOPS_PORTAL_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse FIELDOPS_PORTAL_TIMEOUT: %w", err)
		}
		cfg.Timeout = dur
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Endpoint) == "" {
		c.Endpoint = "http://127.0.0.1:8090/api/alocacao"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.HTTPMaxIdleConns <= 0 {
		c.HTTPMaxIdleConns = 8
	}
	if c.HTTPMaxIdlePerHost <= 0 {
		c.HTTPMaxIdlePerHost = 4
	}
	if c.HTTPIdleConnTimeout <= 0 {
		c.HTTPIdleConnTimeout = 90 * time.Second
	}
}
