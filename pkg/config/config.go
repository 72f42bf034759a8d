package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Config manages service configuration
type Config struct {
	mu     sync.RWMutex
	values map[string]string

	// Define which keys require restart when changed
	restartKeys []string
}

// Environment variable to configuration key mapping, with defaults.
var envDefaults = []struct {
	env string
	key string
	def string
}{
	{"SERVER_PORT", "server.port", "8000"},
	{"DATABASE_URL", "database.url", ""},
	{"DATABASE_HOST", "database.host", "localhost"},
	{"DATABASE_PORT", "database.port", "5432"},
	{"DATABASE_USER", "database.user", "postgres"},
	{"DATABASE_PASSWORD", "database.password", "postgres"},
	{"DATABASE_NAME", "database.name", "pokecatalog"},
	{"DATABASE_SSLMODE", "database.sslmode", "disable"},
	{"DATABASE_MAX_CONNECTIONS", "database.max_connections", "10"},
	{"POKEAPI_BASE_URL", "pokeapi.base_url", "https://pokeapi.co/api/v2"},
	{"POKEAPI_TIMEOUT", "pokeapi.timeout", "10s"},
}

// New creates a new configuration manager
func New() *Config {
	return &Config{
		values: make(map[string]string),
		restartKeys: []string{
			"database.url",
			"database.host",
			"database.port",
			"server.port",
		},
	}
}

// FromEnv creates a configuration manager populated from environment
// variables, falling back to built-in defaults
func FromEnv() *Config {
	c := New()
	values := make(map[string]string, len(envDefaults))
	for _, e := range envDefaults {
		v := os.Getenv(e.env)
		if v == "" {
			v = e.def
		}
		values[e.key] = v
	}
	c.Update(values)
	return c
}

// Get retrieves a configuration value
func (c *Config) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// GetInt retrieves a configuration value as an integer, returning def
// when the value is absent or malformed
func (c *Config) GetInt(key string, def int) int {
	v := c.Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// GetDuration retrieves a configuration value as a duration, returning def
// when the value is absent or malformed
func (c *Config) GetDuration(key string, def time.Duration) time.Duration {
	v := c.Get(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// GetAll returns a copy of all configuration values
func (c *Config) GetAll() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	copy := make(map[string]string)
	for k, v := range c.values {
		copy[k] = v
	}
	return copy
}

// Update updates configuration values
func (c *Config) Update(values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range values {
		c.values[k] = v
	}
}

// RequiresRestart checks if any changed keys require a restart
func (c *Config) RequiresRestart(oldConfig map[string]string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, key := range c.restartKeys {
		if oldConfig[key] != c.values[key] {
			return true
		}
	}

	return false
}

// SetRestartKeys sets which configuration keys require restart when changed
func (c *Config) SetRestartKeys(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restartKeys = keys
}
