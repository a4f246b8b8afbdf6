// Package sqlstore implements domain.ProjectStore over database/sql. Each
// project is one row of the projects table; a save replaces every row inside a
// single transaction and a position column keeps insertion order.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"tieintrack/pkg/domain"
)

var _ domain.ProjectStore = (*Store)(nil)

// Dialect holds the engine-specific statements for the projects table.
type Dialect struct {
	Name        string
	CreateTable string
	Clear       string
	Insert      string
	Select      string
}

// Store persists the project collection through a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// New ensures the projects table exists and returns a store over db.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, fmt.Errorf("ensure %s table: %w", domain.RecordStoreName, err)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Driver names the SQL engine.
func (s *Store) Driver() string { return s.dialect.Name }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// LoadAll reads every row ordered by position.
func (s *Store) LoadAll(ctx context.Context) (*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Select)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", domain.RecordStoreName, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var (
			id       string
			position int64
			payload  []byte
		)
		if err := rows.Scan(&id, &position, &payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", domain.RecordStoreName, err)
		}
		project, err := domain.DecodeProject(id, payload)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.Record{ID: id, Data: project})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", domain.RecordStoreName, err)
	}
	return domain.CollectionFromRecords(records), nil
}

// SaveAll clears the table and reinserts every project in one transaction.
func (s *Store) SaveAll(ctx context.Context, projects *domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, s.dialect.Clear); err != nil {
		return fmt.Errorf("clear %s: %w", domain.RecordStoreName, err)
	}
	for i, record := range domain.Records(projects) {
		payload, err := domain.EncodeProject(record.Data)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Insert, record.ID, int64(i), payload); err != nil {
			return fmt.Errorf("insert project %s: %w", record.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
