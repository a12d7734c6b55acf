package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/cache"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// Store persists a single JSON cache document with crash-safe writes.
//
// Reads are served from a short-TTL overlay keyed by file path, so hot
// request paths do not hit the disk on every call. A successful write
// refreshes the overlay immediately.
//
// There is no cross-process lock: the atomic replace keeps any single
// write crash-safe, but concurrent writers race and last-write-wins.
type Store struct {
	path    string
	overlay cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// New creates a Store over the given file path. The overlay bounds read
// staleness to ttl; writes update it directly.
func New(path string, overlay cache.Cache, ttl time.Duration) *Store {
	return &Store{
		path:    path,
		overlay: overlay,
		ttl:     ttl,
		logger:  logger.Named("store"),
	}
}

// Read returns the current document. A missing, empty or corrupt file is
// reinitialized to the default shape and the read retried, so callers
// always get a usable document.
func (s *Store) Read() Document {
	if raw, err := s.overlay.Get(context.Background(), s.path); err == nil {
		var doc Document
		if json.Unmarshal(raw, &doc) == nil {
			return doc
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("Overlay read failed, falling back to disk", zap.Error(err))
	}

	doc, err := s.readDisk()
	if err != nil {
		s.logger.Warn("Cache file unreadable, reinitializing",
			zap.String("path", s.path),
			zap.Error(err),
		)
		s.initialize()
		doc, err = s.readDisk()
		if err != nil {
			// Disk refuses both read and init; serve the default shape.
			s.logger.Error("Cache file reinitialization failed", zap.Error(err))
			return Document{}
		}
	}

	s.updateOverlay(doc)
	return doc
}

// Write serializes the document to a temporary file and atomically
// replaces the target. A marshal failure is logged and leaves the
// existing file untouched; I/O failures are returned.
func (s *Store) Write(doc Document) error {
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		s.logger.Error("Invalid cache document, write aborted", zap.Error(err))
		return nil
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	s.updateOverlay(doc)
	return nil
}

// readDisk loads and parses the file, treating an empty file as absent.
func (s *Store) readDisk() (Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}, err
	}
	if len(raw) == 0 {
		return Document{}, errors.New("cache file is empty")
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// initialize writes the default document shape if the file is absent or empty.
func (s *Store) initialize() {
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		// Corrupt but present: replace through the same atomic path.
		if err := s.Write(Document{}); err != nil {
			s.logger.Error("Failed to replace corrupt cache file", zap.Error(err))
		}
		return
	}

	raw, _ := json.MarshalIndent(Document{}, "", "    ")
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Error("Failed to initialize cache file", zap.Error(err))
	}
}

func (s *Store) updateOverlay(doc Document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := s.overlay.Set(context.Background(), s.path, raw, s.ttl); err != nil {
		s.logger.Warn("Overlay update failed", zap.Error(err))
	}
}
