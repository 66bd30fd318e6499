// Package store provides the JSON document store backing all engine
// collections. Each collection is one file in the data directory, rewritten
// wholesale on every save. Timestamps serialize as RFC 3339 strings.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store persists JSON collections under a base directory. Saves go through
// a temp file and rename so a crash mid-write never truncates a collection.
// A single mutex serializes saves across collections.
type Store struct {
	mu  sync.Mutex
	dir string
	log logrus.FieldLogger
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		dir: dir,
		log: logrus.WithField("component", "store"),
	}, nil
}

// Dir returns the base directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads a collection into v. A missing file is not an error: v is left
// untouched so engines start fresh on first run.
func (s *Store) Load(collection string, v interface{}) error {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			s.log.WithField("collection", collection).Debug("Collection file not found, starting fresh")
			return nil
		}
		return fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal collection %s: %w", collection, err)
	}
	return nil
}

// Save writes a collection atomically, replacing the previous contents.
func (s *Store) Save(collection string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", collection, err)
	}

	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", collection, err)
	}

	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection %s: %w", collection, err)
	}

	s.log.WithFields(logrus.Fields{
		"collection": collection,
		"bytes":      len(data),
	}).Debug("Saved collection")
	return nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}
