package cache

import (
	"time"
)

// Cache defines the interface for caching raw response bodies
type Cache interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, bool)

	// Set stores a value in the cache with the configured TTL
	Set(key string, value []byte)

	// Delete removes a value from the cache
	Delete(key string)

	// Clear removes all values from the cache
	Clear()

	// Keys returns all cache keys (useful for debugging)
	Keys() []string

	// Size returns the number of items in cache
	Size() int

	// Stats returns cache statistics
	Stats() Stats
}

// Stats provides cache performance metrics
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Sets      int64   `json:"sets"`
	Evictions int64   `json:"evictions"`
	Shared    int64   `json:"shared"`
	Size      int     `json:"size"`
	HitRatio  float64 `json:"hit_ratio"`
}

// Config holds cache configuration
type Config struct {
	// MaxItems is the maximum number of items to store. Zero disables caching.
	MaxItems int `json:"max_items"`

	// TTL is the time-to-live for cache items
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns a reasonable default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems: 256,
		TTL:      10 * time.Minute,
	}
}
