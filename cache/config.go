package cache

import "time"

// Config represents cache configuration
type Config struct {
	// GoCache configuration (memory tier)
	GoCache GoCacheConfig `yaml:"go_cache"`

	// Badger configuration (persistent tier)
	Badger BadgerConfig `yaml:"badger"`
}

// GoCacheConfig configuration for the in-memory go-cache tier
type GoCacheConfig struct {
	// DefaultExpiration default expiration time for cache items
	// If 0, items never expire by default
	DefaultExpiration time.Duration `yaml:"default_expiration"`

	// CleanupInterval interval for cleaning up expired items
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// BadgerConfig configuration for the persistent BadgerDB tier
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Required unless InMemory.
	Path string `yaml:"path"`

	// InMemory disables disk persistence. Used in tests.
	InMemory bool `yaml:"in_memory"`

	// SyncWrites enables synchronous writes for durability
	SyncWrites bool `yaml:"sync_writes"`

	// Enabled switches the persistent tier on. When false the service
	// runs memory-only.
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		GoCache: GoCacheConfig{
			// Reference data (institutions, years, majors) changes between
			// terms, not between requests; no expiration by default
			DefaultExpiration: 0,
			CleanupInterval:   10 * time.Minute,
		},
		Badger: BadgerConfig{
			Path:       "data/cache",
			SyncWrites: false,
			Enabled:    true,
		},
	}
}
