// Package cache implements a content-addressed on-disk store for expensive
// derived artifacts such as compiled or parsed spec sources. Keys are opaque
// to the store; derivation is the caller's responsibility.
package cache

import (
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Stats summarizes the cache contents.
type Stats struct {
	Entries    int    `json:"entries"`
	TotalBytes uint64 `json:"total_bytes"`
}

// EntryInfo describes one stored entry.
type EntryInfo struct {
	Key       string    `json:"key"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a content-hash-keyed artifact store. Entries are never mutated,
// only created or evicted. Reads are plain file reads; writes go to a
// temporary file and are renamed into place, so a concurrent reader sees
// either the complete payload or a miss. Any unreadable entry degrades to a
// miss; the caller is expected to recompute and overwrite.
type Store struct {
	logger zerolog.Logger
	dir    string
}

// New creates a store rooted at dir. The directory is created lazily on the
// first Put.
func New(logger zerolog.Logger, dir string) *Store {
	return &Store{logger: logger, dir: dir}
}

// Dir returns the cache root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Key derives a cache key from source bytes plus fingerprint strings covering
// anything else that affects the derived artifact, such as a toolchain
// version. The key is a lowercase base32 sha256 digest.
func Key(source []byte, fingerprint ...string) string {
	h := sha256.New()
	h.Write(source)
	for _, f := range fingerprint {
		h.Write([]byte{0})
		h.Write([]byte(f))
	}
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(h.Sum(nil)))
}

// Get returns the payload stored under key, or ok=false on a miss. Corrupt or
// unreadable entries are misses, never errors.
func (s *Store) Get(key string) ([]byte, bool) {
	path, err := s.entryPath(key)
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("Rejecting cache key")
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Err(err).Str("key", key).Msg("Treating unreadable cache entry as miss")
		}
		return nil, false
	}
	return data, true
}

// Put stores payload under key. Writing the same key again is idempotent;
// identical keys are expected to carry byte-identical payloads, so racing
// writers are harmless. The payload is promoted atomically so a concurrent
// Get never observes a partial entry.
func (s *Store) Put(key string, payload []byte) error {
	path, err := s.entryPath(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+key+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(payload); err != nil {
		return fmt.Errorf("writing cache payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("promoting cache entry: %w", err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(payload)).Msg("Stored cache entry")
	return nil
}

// Entries enumerates all stored entries with their sizes.
func (s *Store) Entries() ([]EntryInfo, error) {
	var entries []EntryInfo
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Entry vanished mid-walk; a reader would see a miss.
			return nil
		}
		entries = append(entries, EntryInfo{
			Key:       d.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating cache entries: %w", err)
	}
	return entries, nil
}

// GetStatistics returns entry count and total payload size.
func (s *Store) GetStatistics() (Stats, error) {
	entries, err := s.Entries()
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Entries: len(entries)}
	for _, e := range entries {
		stats.TotalBytes += uint64(e.SizeBytes)
	}
	return stats, nil
}

// Clear removes all entries. It is best-effort and safe while other processes
// read: a reader observing a just-deleted entry falls back to a miss.
func (s *Store) Clear() error {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}

	var first error
	for _, d := range dirents {
		if err := os.RemoveAll(filepath.Join(s.dir, d.Name())); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return fmt.Errorf("clearing cache: %w", first)
	}
	return nil
}

// entryPath shards entries by the first two key characters to keep directory
// fanout bounded.
func (s *Store) entryPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	if len(key) < 2 {
		return filepath.Join(s.dir, key), nil
	}
	return filepath.Join(s.dir, key[:2], key), nil
}
