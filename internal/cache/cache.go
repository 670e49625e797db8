package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the interface shared by the memory, disk, and layered caches.
// The fetchers use it to avoid re-downloading source pages within a run and
// across resumed runs.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a source URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "concordia:v1:" + hex.EncodeToString(hash[:])
}
