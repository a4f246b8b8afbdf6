package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tieintrack/internal/blob"
	"tieintrack/internal/config"
	"tieintrack/internal/infra/persistence/document"
	"tieintrack/internal/infra/persistence/memory"
	"tieintrack/internal/infra/persistence/postgres"
	"tieintrack/internal/infra/persistence/sqlite"
	"tieintrack/pkg/domain"
)

// Stack bundles the storage components built from configuration.
type Stack struct {
	Gateway  *Gateway
	Saver    *Saver
	Exporter *Exporter
	Blobs    blob.Store
	Metrics  *Metrics
}

// Open builds the blob store, the primary and fallback project stores, the
// gateway over them and a debounced saver writing through the gateway. reg may
// be nil.
//
// A store that fails to open is logged, counted and replaced by a stand-in
// whose every call fails, so the gateway serves whichever store did open and
// the session still starts. When neither opens, loads and saves report
// domain.ErrStorageUnavailable. Only configuration errors are returned.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Stack, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := checkDriver(cfg.Storage.Driver); err != nil {
		return nil, err
	}
	fb := cfg.Storage.Fallback
	if fb == config.DriverNone {
		fb = ""
	}
	if fb != "" {
		if err := checkDriver(fb); err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
	}
	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	primary := openOrStandIn(ctx, cfg.Storage.Driver, cfg, blobs, logger, metrics)
	var fallback domain.ProjectStore
	if fb != "" {
		fallback = openOrStandIn(ctx, fb, cfg, blobs, logger, metrics)
	}
	return Assemble(primary, fallback, blobs, cfg.Storage, logger, metrics)
}

// Assemble wires already opened stores into a Stack. fallback and metrics may
// be nil.
func Assemble(primary, fallback domain.ProjectStore, blobs blob.Store, cfg config.Storage, logger *zap.Logger, metrics *Metrics) (*Stack, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []GatewayOption{WithGatewayLogger(logger), WithMetrics(metrics)}
	if fallback != nil {
		opts = append(opts, WithFallback(fallback))
	}
	gateway, err := NewGateway(primary, opts...)
	if err != nil {
		return nil, err
	}
	saver := NewSaver(gateway,
		WithDelay(cfg.SaveDebounce),
		WithWriteTimeout(cfg.WriteTimeout),
		WithSaverLogger(logger),
		WithSaverMetrics(metrics),
	)
	logger.Debug("storage ready", zap.String("driver", gateway.Driver()), zap.String("blob", string(blobs.Driver())))
	return &Stack{Gateway: gateway, Saver: saver, Exporter: NewExporter(blobs, metrics), Blobs: blobs, Metrics: metrics}, nil
}

// Close flushes the saver and closes the stores.
func (s *Stack) Close(ctx context.Context) error {
	return errors.Join(s.Saver.Close(ctx), s.Gateway.Close())
}

func checkDriver(driver string) error {
	switch driver {
	case config.DriverSQLite, config.DriverPostgres, config.DriverMemory, config.DriverDocument:
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", driver)
	}
}

func openOrStandIn(ctx context.Context, driver string, cfg *config.Config, blobs blob.Store, logger *zap.Logger, metrics *Metrics) domain.ProjectStore {
	start := time.Now()
	store, err := openStore(ctx, driver, cfg, blobs)
	metrics.observe(OpOpen, driver, start, err)
	if err != nil {
		logger.Warn("project store unavailable", zap.String("backend", driver), zap.Error(err))
		return unopenedStore{driver: driver, err: err}
	}
	return store
}

func openStore(ctx context.Context, driver string, cfg *config.Config, blobs blob.Store) (domain.ProjectStore, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.NewStore(ctx, cfg.Storage.SQLitePath)
	case config.DriverPostgres:
		return postgres.NewStore(ctx, cfg.Storage.PostgresDSN)
	case config.DriverMemory:
		return memory.NewStore(nil), nil
	case config.DriverDocument:
		return document.NewStore(blobs, cfg.Storage.DocumentKey)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// unopenedStore stands in for a store that failed to open.
type unopenedStore struct {
	driver string
	err    error
}

func (s unopenedStore) Driver() string { return s.driver }

func (s unopenedStore) LoadAll(context.Context) (*domain.Collection, error) {
	return nil, fmt.Errorf("%s store not open: %w", s.driver, s.err)
}

func (s unopenedStore) SaveAll(context.Context, *domain.Collection) error {
	return fmt.Errorf("%s store not open: %w", s.driver, s.err)
}

func (unopenedStore) Close() error { return nil }
