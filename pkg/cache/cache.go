// Package cache persists scan findings and scan-status bookkeeping as a
// single schema-versioned JSON document under the user's config directory.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/credsweep/credsweep/pkg/scan"
)

// Version is the cache schema version. A stored document with any other
// version is discarded and replaced with defaults; there is no migration.
// Version 2 switched discussion locations to encoded project directories.
const Version = 2

// Scan status values.
const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Cache is the persisted scan state. FullPattern values inside Tokens are
// unredacted, which is why the file is written 0600.
type Cache struct {
	Version            int               `json:"version"`
	LastScanTimestamp  time.Time         `json:"lastScanTimestamp"`
	LastScanDurationMs int64             `json:"lastScanDurationMs"`
	ScanStatus         string            `json:"scanStatus"`
	ScanError          string            `json:"scanError,omitempty"`
	SettingsScanned    bool              `json:"settingsScanned"`
	DiscussionsScanned bool              `json:"discussionsScanned"`
	DiscussionCount    int               `json:"discussionCount"`
	Tokens             []scan.TokenMatch `json:"tokens"`
}

// Defaults returns a fresh cache with no findings.
func Defaults() *Cache {
	return &Cache{
		Version:    Version,
		ScanStatus: StatusIdle,
		Tokens:     []scan.TokenMatch{},
	}
}

// Store reads and writes the cache document at a fixed path.
type Store struct {
	Path string
}

// NewStore returns a store rooted at path.
func NewStore(path string) *Store { return &Store{Path: path} }

// Load reads the cache file. A missing, unreadable, corrupt, or
// version-mismatched file yields defaults, never an error; the cache is
// advisory state, not a source of truth worth failing over.
func (s *Store) Load() *Cache {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Defaults()
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return Defaults()
	}
	if c.Version != Version {
		return Defaults()
	}
	if c.Tokens == nil {
		c.Tokens = []scan.TokenMatch{}
	}
	return &c
}

// Save writes the cache atomically (temp file + rename) with owner-only
// permissions, since token values are stored unredacted.
func (s *Store) Save(c *Cache) error {
	c.Version = Version

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scan cache: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".scan-cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to restrict cache permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write scan cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close scan cache: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace scan cache: %w", err)
	}
	return nil
}
