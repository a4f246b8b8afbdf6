// Package postgres stores projects in a Postgres table through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"tieintrack/internal/infra/persistence/sqlstore"
	"tieintrack/pkg/domain"
)

var _ domain.ProjectStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// DefaultDSN is used when no DSN is configured.
	DefaultDSN = "postgres://localhost/tieintrack?sslmode=disable"
)

// Dialect is the Postgres flavour of the projects table.
var Dialect = sqlstore.Dialect{
	Name: "postgres",
	CreateTable: `CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		data JSONB NOT NULL
	)`,
	Clear:  `TRUNCATE TABLE projects`,
	Insert: `INSERT INTO projects (id, position, data) VALUES ($1, $2, $3)`,
	Select: `SELECT id, position, data FROM projects ORDER BY position`,
}

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a Postgres-backed domain.ProjectStore.
type Store struct {
	*sqlstore.Store
}

// NewStore connects to dsn (DefaultDSN when empty), pings the server and
// ensures the projects table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	inner, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Store: inner}, nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
