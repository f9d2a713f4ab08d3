package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a simple file-based byte cache with a TTL, keyed by source URL.
// It sits in front of remote document fetches so resubmitting a batch does
// not re-download unchanged documents.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// key generates a SHA256 hash of the source to use as a filename.
func (c *Cache) key(source string) string {
	hash := sha256.Sum256([]byte(source))
	return fmt.Sprintf("%x", hash)
}

// Get retrieves cached document bytes for a source.
// It returns the data and true if the item is found and not expired.
func (c *Cache) Get(source string) ([]byte, bool) {
	filePath := filepath.Join(c.path, c.key(source))

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false // Cache miss
	}

	// A zero TTL means entries never expire.
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false // Cache miss (expired)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false // Cache miss (read error)
	}

	return data, true // Cache hit
}

// Set stores document bytes for a source.
func (c *Cache) Set(source string, data []byte) error {
	filePath := filepath.Join(c.path, c.key(source))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
