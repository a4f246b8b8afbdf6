// Package persistence composes project stores into the gateway the session
// service loads from and saves to. It adds a fallback store, a debounced
// saver, prometheus metrics and JSON snapshot export.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tieintrack/pkg/domain"
)

var _ domain.ProjectStore = (*Gateway)(nil)

// Gateway reads from the primary store and falls back to a secondary one.
// Saves go to both so the fallback stays current.
type Gateway struct {
	primary  domain.ProjectStore
	fallback domain.ProjectStore
	logger   *zap.Logger
	metrics  *Metrics
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithFallback sets the secondary store. nil disables the fallback.
func WithFallback(store domain.ProjectStore) GatewayOption {
	return func(g *Gateway) { g.fallback = store }
}

// WithGatewayLogger sets the logger.
func WithGatewayLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records operations on m.
func WithMetrics(m *Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// NewGateway wraps primary, which is required.
func NewGateway(primary domain.ProjectStore, opts ...GatewayOption) (*Gateway, error) {
	if primary == nil {
		return nil, errors.New("gateway requires a primary store")
	}
	g := &Gateway{primary: primary, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Driver describes the composition, e.g. "sqlite+document:fs".
func (g *Gateway) Driver() string {
	if g.fallback == nil {
		return g.primary.Driver()
	}
	return g.primary.Driver() + "+" + g.fallback.Driver()
}

// LoadAll reads the primary store, then the fallback when the primary fails
// or is empty. An empty primary never hides data held by the fallback; the
// next save copies it back. It returns domain.ErrStorageUnavailable when no
// store can be read.
func (g *Gateway) LoadAll(ctx context.Context) (*domain.Collection, error) {
	projects, perr := g.load(ctx, g.primary)
	if perr == nil {
		if projects.Len() > 0 || g.fallback == nil {
			return projects, nil
		}
		return g.recover(ctx, projects), nil
	}
	g.logger.Warn("primary load failed", zap.String("backend", g.primary.Driver()), zap.Error(perr))
	if g.fallback == nil {
		return nil, domain.ErrStorageUnavailable{Op: OpLoad, Err: perr}
	}
	projects, ferr := g.load(ctx, g.fallback)
	if ferr != nil {
		g.logger.Error("fallback load failed", zap.String("backend", g.fallback.Driver()), zap.Error(ferr))
		return nil, domain.ErrStorageUnavailable{Op: OpLoad, Err: errors.Join(perr, ferr)}
	}
	g.metrics.degraded(OpLoad, g.fallback.Driver())
	g.logger.Info("loaded projects from fallback", zap.String("backend", g.fallback.Driver()), zap.Int("count", projects.Len()))
	return projects, nil
}

// SaveAll writes projects to the primary and mirrors them to the fallback.
// One successful write is enough; both failing yields
// domain.ErrStorageUnavailable.
func (g *Gateway) SaveAll(ctx context.Context, projects *domain.Collection) error {
	perr := g.save(ctx, g.primary, projects)
	if perr != nil {
		g.logger.Warn("primary save failed", zap.String("backend", g.primary.Driver()), zap.Error(perr))
	}
	if g.fallback == nil {
		if perr != nil {
			return domain.ErrStorageUnavailable{Op: OpSave, Err: perr}
		}
		return nil
	}
	ferr := g.save(ctx, g.fallback, projects)
	switch {
	case perr != nil && ferr != nil:
		g.logger.Error("fallback save failed", zap.String("backend", g.fallback.Driver()), zap.Error(ferr))
		return domain.ErrStorageUnavailable{Op: OpSave, Err: errors.Join(perr, ferr)}
	case perr != nil:
		g.metrics.degraded(OpSave, g.fallback.Driver())
		g.logger.Warn("projects saved to fallback only", zap.String("backend", g.fallback.Driver()))
	case ferr != nil:
		g.logger.Warn("fallback mirror failed", zap.String("backend", g.fallback.Driver()), zap.Error(ferr))
	}
	return nil
}

// Close closes both stores.
func (g *Gateway) Close() error {
	var errs []error
	if err := g.primary.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", g.primary.Driver(), err))
	}
	if g.fallback != nil {
		if err := g.fallback.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", g.fallback.Driver(), err))
		}
	}
	return errors.Join(errs...)
}

// recover returns the fallback's projects when it holds any, otherwise the
// empty primary result.
func (g *Gateway) recover(ctx context.Context, empty *domain.Collection) *domain.Collection {
	projects, err := g.load(ctx, g.fallback)
	if err != nil {
		g.logger.Warn("fallback check failed", zap.String("backend", g.fallback.Driver()), zap.Error(err))
		return empty
	}
	if projects.Len() == 0 {
		return empty
	}
	g.metrics.degraded(OpLoad, g.fallback.Driver())
	g.logger.Warn("primary store empty, loaded projects from fallback",
		zap.String("primary", g.primary.Driver()),
		zap.String("backend", g.fallback.Driver()),
		zap.Int("count", projects.Len()))
	return projects
}

func (g *Gateway) load(ctx context.Context, store domain.ProjectStore) (*domain.Collection, error) {
	start := time.Now()
	projects, err := store.LoadAll(ctx)
	g.metrics.observe(OpLoad, store.Driver(), start, err)
	return projects, err
}

func (g *Gateway) save(ctx context.Context, store domain.ProjectStore, projects *domain.Collection) error {
	start := time.Now()
	err := store.SaveAll(ctx, projects)
	g.metrics.observe(OpSave, store.Driver(), start, err)
	return err
}
