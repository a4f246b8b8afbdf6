// Package document persists the whole project collection as a single JSON
// document inside a blob store. It is the fallback backend: any blob driver
// (local directory, S3 bucket, memory) can hold it.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"tieintrack/internal/blob"
	"tieintrack/pkg/domain"
)

var _ domain.ProjectStore = (*Store)(nil)

// DefaultKey is the blob key used when none is configured.
const DefaultKey = "tieintrack/projects.json"

const contentType = "application/json"

// Store reads and writes the collection document.
type Store struct {
	blobs blob.Store
	key   string
	mu    sync.Mutex
}

// NewStore wraps blobs. An empty key selects DefaultKey.
func NewStore(blobs blob.Store, key string) (*Store, error) {
	if blobs == nil {
		return nil, errors.New("document store requires a blob store")
	}
	if key == "" {
		key = DefaultKey
	}
	return &Store{blobs: blobs, key: key}, nil
}

// Driver reports "document:<blob driver>".
func (s *Store) Driver() string { return "document:" + string(s.blobs.Driver()) }

// LoadAll decodes the document. A missing document yields an empty collection.
func (s *Store) LoadAll(ctx context.Context) (*domain.Collection, error) {
	data, _, err := blob.ReadAll(ctx, s.blobs, s.key)
	if errors.Is(err, blob.ErrNotExist) {
		return domain.NewCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	projects := domain.NewCollection()
	if err := json.Unmarshal(data, projects); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return projects, nil
}

// SaveAll overwrites the document with projects.
func (s *Store) SaveAll(ctx context.Context, projects *domain.Collection) error {
	if projects == nil {
		projects = domain.NewCollection()
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := blob.PutOptions{ContentType: contentType, Metadata: map[string]string{"projects": fmt.Sprint(projects.Len())}}
	if _, err := blob.Replace(ctx, s.blobs, s.key, data, opts); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

// Close is a no-op; the blob store has no handle to release.
func (s *Store) Close() error { return nil }
