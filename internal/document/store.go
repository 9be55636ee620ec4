package document

import (
	"errors"
	"sync"
)

// ErrNotReady is returned by Store methods before the first document is set.
var ErrNotReady = errors.New("document not built yet")

// Store holds the current document for concurrent readers. Mutations run
// under the write lock so InsertMedia and SetMediaEnabled never race a view.
type Store struct {
	mu  sync.RWMutex
	doc *Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the current document.
func (s *Store) Set(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// Ready reports whether a document has been set.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc != nil
}

// View runs fn with the current document under the read lock.
func (s *Store) View(fn func(*Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return ErrNotReady
	}
	return fn(s.doc)
}

// Update runs fn with the current document under the write lock.
func (s *Store) Update(fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotReady
	}
	return fn(s.doc)
}
