// memory_store.go - In-memory document store for testing
package testutil

import (
	"errors"
	"sync"

	"github.com/slide-scroller/overlay/internal/models"
)

// MemoryStore implements store.Store without touching the filesystem.
// Documents are deep-copied in and out so callers cannot alias its state.
type MemoryStore struct {
	mu    sync.Mutex
	doc   *models.Document
	saves int

	// LoadErr, when set, is returned by Load alongside an empty document and
	// fails Update before anything is written.
	LoadErr error
	// SaveErr, when set, fails every Save.
	SaveErr error
}

// NewMemoryStore creates a store holding doc, or the default document when nil.
func NewMemoryStore(doc *models.Document) *MemoryStore {
	if doc == nil {
		doc = models.DefaultDocument()
	}
	return &MemoryStore{doc: doc.Clone()}
}

func (m *MemoryStore) Load() (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return models.EmptyDocument(), m.LoadErr
	}
	return m.doc.Clone(), nil
}

func (m *MemoryStore) Save(doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.save(doc)
}

func (m *MemoryStore) save(doc *models.Document) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if doc == nil {
		return errors.New("nil document")
	}
	m.doc = doc.Clone()
	m.saves++
	return nil
}

func (m *MemoryStore) Update(fn func(doc *models.Document) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return m.LoadErr
	}
	doc := m.doc.Clone()
	if err := fn(doc); err != nil {
		return err
	}
	return m.save(doc)
}

func (m *MemoryStore) Path() string {
	return "memory://slides.json"
}

// Document returns a copy of the stored document.
func (m *MemoryStore) Document() *models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

// Saves returns how many successful writes happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
