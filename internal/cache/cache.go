package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"
)

// Cache defines the interface for caching label suggestions
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from an arbitrary lookup string
func CacheKey(lookup string) string {
	hash := sha256.Sum256([]byte(lookup))
	return "foodlabel:v1:" + hex.EncodeToString(hash[:])
}

// DefaultDir returns the on-disk cache location ($HOME/.foodlabel/cache)
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "foodlabel-cache")
	}
	return filepath.Join(home, ".foodlabel", "cache")
}
