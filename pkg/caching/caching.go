// Package caching keeps downloaded event files on disk so repeated runs
// against the same daily export do not refetch it.
package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based byte cache with a TTL, keyed by source location.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates the cache directory if needed. A TTL of zero means
// entries never expire.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{path: path, ttl: ttl}, nil
}

// key hashes the location so arbitrary URLs map to safe filenames.
func (c *Cache) key(location string) string {
	hash := sha256.Sum256([]byte(location))
	return fmt.Sprintf("%x", hash)
}

// Get returns the cached bytes for a location and true on a fresh hit.
func (c *Cache) Get(location string) ([]byte, bool) {
	filePath := filepath.Join(c.path, c.key(location))

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, false
	}

	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false // expired
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}

	return data, true
}

// Set stores the bytes for a location.
func (c *Cache) Set(location string, data []byte) error {
	filePath := filepath.Join(c.path, c.key(location))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
