package persistence

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels.
const (
	OpOpen   = "open"
	OpLoad   = "load"
	OpSave   = "save"
	OpExport = "export"
)

// Metrics counts store operations per backend. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	coalesced  prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg when reg is not
// nil. Collectors already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tieintrack_store_operations_total",
			Help: "Project store operations by backend and result.",
		}, []string{"op", "backend", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tieintrack_store_operation_seconds",
			Help:    "Project store operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "backend"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tieintrack_saves_coalesced_total",
			Help: "Scheduled saves superseded by a newer snapshot before being written.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, m.latency); err != nil {
		return nil, err
	}
	if m.coalesced, err = register(reg, m.coalesced); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(op, backend string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, backend, result).Inc()
	m.latency.WithLabelValues(op, backend).Observe(time.Since(start).Seconds())
}

func (m *Metrics) degraded(op, backend string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, backend, "degraded").Inc()
}

func (m *Metrics) coalesce() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}
