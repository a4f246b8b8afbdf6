// Package memory provides an in-memory implementation of domain.ProjectStore
// used for tests and ephemeral sessions.
package memory

import (
	"context"
	"errors"
	"sync"

	"tieintrack/pkg/domain"
)

var _ domain.ProjectStore = (*Store)(nil)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("memory store closed")

// Store keeps a private clone of the last saved collection.
type Store struct {
	mu       sync.RWMutex
	projects *domain.Collection
	closed   bool
	saves    int

	// LoadErr and SaveErr, when set, are returned instead of touching the data.
	LoadErr error
	SaveErr error
}

// NewStore returns a store pre-populated with a clone of initial (may be nil).
func NewStore(initial *domain.Collection) *Store {
	return &Store{projects: initial.Clone()}
}

// Driver reports "memory".
func (s *Store) Driver() string { return "memory" }

// LoadAll returns a clone of the stored collection.
func (s *Store) LoadAll(ctx context.Context) (*domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.projects.Clone(), nil
}

// SaveAll replaces the stored collection with a clone of projects.
func (s *Store) SaveAll(ctx context.Context, projects *domain.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.projects = projects.Clone()
	s.saves++
	return nil
}

// Saves counts successful SaveAll calls.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close marks the store closed. Closing twice is harmless.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
