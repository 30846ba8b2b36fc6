// Package store loads and saves the shared configuration document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/slide-scroller/overlay/internal/models"
)

// ErrCorrupt is returned when the document exists but is not a JSON object.
// Load still returns a usable empty document alongside it. Mistyped members
// inside a valid document are not corruption; they decode to defaults.
var ErrCorrupt = errors.New("configuration document is corrupt")

// Store defines the interface for the configuration document.
type Store interface {
	Load() (*models.Document, error)
	Save(doc *models.Document) error
	Update(fn func(doc *models.Document) error) error
	Path() string
}

// FileStore implements Store on a single JSON file. Writes go to a temporary
// file in the same directory which is then renamed over the target, so a
// watcher never observes a half-written document.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore for path, creating its directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &FileStore{
		path:   path,
		logger: slog.With("component", "store"),
	}, nil
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing file is bootstrapped with the default
// document. An unparsable file yields an empty document and ErrCorrupt.
func (s *FileStore) Load() (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) load() (*models.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			doc := models.DefaultDocument()
			if err := s.save(doc); err != nil {
				s.logger.Warn("failed to write default document", "path", s.path, "error", err)
			}
			return doc, nil
		}
		return models.EmptyDocument(), fmt.Errorf("reading document: %w", err)
	}

	doc := &models.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("document failed to parse, using empty document", "path", s.path, "error", err)
		return models.EmptyDocument(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return doc, nil
}

// Save writes the document atomically.
func (s *FileStore) Save(doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(doc)
}

func (s *FileStore) save(doc *models.Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		s.logger.Debug("chmod temp file failed", "error", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing document: %w", err)
	}

	return nil
}

// Update loads the document, applies fn and saves the result. If fn returns
// an error nothing is written. A corrupt document is never overwritten here,
// since fn would only see the empty fallback; Save repairs it explicitly.
func (s *FileStore) Update(fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	return s.save(doc)
}
