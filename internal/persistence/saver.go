package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"

	"tieintrack/pkg/domain"
)

// DefaultSaveDelay is the debounce window used when none is configured.
const DefaultSaveDelay = 500 * time.Millisecond

const defaultWriteTimeout = 10 * time.Second

// ErrSaverClosed is returned by Flush after Close.
var ErrSaverClosed = errors.New("saver closed")

// Saver coalesces bursts of scheduled snapshots into a single SaveAll. The
// newest snapshot always wins; older pending ones are dropped.
type Saver struct {
	store     domain.ProjectStore
	debounced func(func())
	logger    *zap.Logger
	metrics   *Metrics
	onError   func(error)
	timeout   time.Duration

	// writeMu serialises writes and makes Close wait for an in-flight one.
	writeMu sync.Mutex
	mu      sync.Mutex
	pending *domain.Collection
	closed  bool
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithDelay sets the debounce window. Zero or negative keeps the default.
func WithDelay(d time.Duration) SaverOption {
	return func(s *Saver) {
		if d > 0 {
			s.debounced = debounce.New(d)
		}
	}
}

// WithWriteTimeout bounds each background SaveAll.
func WithWriteTimeout(d time.Duration) SaverOption {
	return func(s *Saver) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSaverLogger sets the logger.
func WithSaverLogger(logger *zap.Logger) SaverOption {
	return func(s *Saver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSaverMetrics counts coalesced saves on m.
func WithSaverMetrics(m *Metrics) SaverOption {
	return func(s *Saver) { s.metrics = m }
}

// OnError registers the callback receiving background write failures.
func OnError(fn func(error)) SaverOption {
	return func(s *Saver) { s.onError = fn }
}

// NewSaver returns a saver writing to store.
func NewSaver(store domain.ProjectStore, opts ...SaverOption) *Saver {
	s := &Saver{
		store:     store,
		debounced: debounce.New(DefaultSaveDelay),
		logger:    zap.NewNop(),
		timeout:   defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetErrorHandler replaces the failure callback. It exists for callers that
// build the saver before the component that reports its errors.
func (s *Saver) SetErrorHandler(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// Schedule queues projects for a debounced write. Calls after Close are ignored.
func (s *Saver) Schedule(projects *domain.Collection) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.pending != nil {
		s.metrics.coalesce()
	}
	s.pending = projects
	s.mu.Unlock()
	s.debounced(s.fire)
}

// Pending reports whether a snapshot is waiting to be written.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush writes the pending snapshot now. It is a no-op when nothing is pending.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSaverClosed
	}
	return s.write(ctx)
}

// Close writes any pending snapshot and stops accepting new ones. The timer may
// still fire afterwards but finds nothing to do.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.write(ctx)
}

func (s *Saver) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.write(ctx); err != nil {
		s.mu.Lock()
		handler := s.onError
		s.mu.Unlock()
		if handler != nil {
			handler(err)
		}
	}
}

func (s *Saver) write(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snapshot := s.pending
	s.pending = nil
	s.mu.Unlock()
	if snapshot == nil {
		return nil
	}
	if err := s.store.SaveAll(ctx, snapshot); err != nil {
		s.logger.Error("save projects", zap.String("backend", s.store.Driver()), zap.Error(err))
		return err
	}
	s.logger.Debug("projects saved", zap.String("backend", s.store.Driver()), zap.Int("count", snapshot.Len()))
	return nil
}
