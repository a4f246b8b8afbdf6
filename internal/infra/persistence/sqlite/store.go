// Package sqlite stores projects in an embedded SQLite database file using the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"tieintrack/internal/infra/persistence/sqlstore"
	"tieintrack/pkg/domain"
)

var _ domain.ProjectStore = (*Store)(nil)

// DefaultPath is used when no database path is configured.
const DefaultPath = "tieintrack.db"

// Dialect is the SQLite flavour of the projects table.
var Dialect = sqlstore.Dialect{
	Name: "sqlite",
	CreateTable: `CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		data BLOB NOT NULL
	)`,
	Clear:  `DELETE FROM projects`,
	Insert: `INSERT INTO projects (id, position, data) VALUES (?, ?, ?)`,
	Select: `SELECT id, position, data FROM projects ORDER BY position`,
}

// Store is a SQLite-backed domain.ProjectStore.
type Store struct {
	*sqlstore.Store
}

// NewStore opens (creating if needed) the database at path.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases stable across calls
	db.SetMaxOpenConns(1)
	inner, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Store: inner}, nil
}
