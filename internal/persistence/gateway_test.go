package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"tieintrack/internal/infra/persistence/memory"
	"tieintrack/internal/infra/persistence/storetest"
	"tieintrack/pkg/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type namedStore struct {
	*memory.Store
	name string
}

func (n namedStore) Driver() string { return n.name }

func newPair(t *testing.T) (*Gateway, namedStore, namedStore, *Metrics) {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	primary := namedStore{memory.NewStore(nil), "primary"}
	fallback := namedStore{memory.NewStore(nil), "fallback"}
	g, err := NewGateway(primary, WithFallback(fallback), WithMetrics(m))
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	return g, primary, fallback, m
}

func TestGatewayConformance(t *testing.T) {
	g, _, _, _ := newPair(t)
	storetest.Run(t, g)
	if g.Driver() != "primary+fallback" {
		t.Fatalf("unexpected driver %q", g.Driver())
	}
}

func TestGatewaySaveMirrorsToFallback(t *testing.T) {
	ctx := context.Background()
	g, primary, fallback, m := newPair(t)
	if err := g.SaveAll(ctx, storetest.Fixture()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if primary.Saves() != 1 || fallback.Saves() != 1 {
		t.Fatalf("expected one save each, got %d/%d", primary.Saves(), fallback.Saves())
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues(OpSave, "fallback", "ok")); got != 1 {
		t.Fatalf("expected fallback save counted, got %v", got)
	}
}

func TestGatewayFallsBackOnLoad(t *testing.T) {
	ctx := context.Background()
	g, primary, fallback, m := newPair(t)
	if err := fallback.SaveAll(ctx, storetest.Fixture()); err != nil {
		t.Fatalf("seed fallback: %v", err)
	}
	primary.LoadErr = errors.New("disk gone")

	got, err := g.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected fallback data, got %v", got.IDs())
	}
	if v := testutil.ToFloat64(m.operations.WithLabelValues(OpLoad, "primary", "error")); v != 1 {
		t.Fatalf("expected primary load error counted, got %v", v)
	}
	if v := testutil.ToFloat64(m.operations.WithLabelValues(OpLoad, "fallback", "degraded")); v != 1 {
		t.Fatalf("expected degraded load counted, got %v", v)
	}
}

func TestGatewayEmptyPrimaryDefersToFallback(t *testing.T) {
	ctx := context.Background()
	g, primary, fallback, m := newPair(t)
	kept := domain.NewCollection(domain.Project{ID: "KEEP", Name: "Kept", DaisyChains: []domain.DaisyChain{}})
	if err := fallback.SaveAll(ctx, kept); err != nil {
		t.Fatalf("seed fallback: %v", err)
	}

	got, err := g.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"KEEP"}, got.IDs()); diff != "" {
		t.Fatalf("fallback data hidden by empty primary (-want +got):\n%s", diff)
	}
	if v := testutil.ToFloat64(m.operations.WithLabelValues(OpLoad, "fallback", "degraded")); v != 1 {
		t.Fatalf("expected degraded load counted, got %v", v)
	}

	// the next save restores the primary
	if err := g.SaveAll(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}
	restored, err := primary.LoadAll(ctx)
	if err != nil || !restored.Has("KEEP") {
		t.Fatalf("primary not restored: %v %v", restored, err)
	}

	// both empty stays empty; an unreadable fallback does not fail the load
	g2, _, fallback2, _ := newPair(t)
	fallback2.LoadErr = errors.New("bucket gone")
	empty, err := g2.LoadAll(ctx)
	if err != nil || empty.Len() != 0 {
		t.Fatalf("expected empty load, got %v %v", empty, err)
	}
}

func TestGatewayStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	g, primary, fallback, _ := newPair(t)
	primary.LoadErr = errors.New("primary down")
	fallback.LoadErr = errors.New("fallback down")
	_, err := g.LoadAll(ctx)
	var unavailable domain.ErrStorageUnavailable
	if !errors.As(err, &unavailable) || unavailable.Op != OpLoad {
		t.Fatalf("expected ErrStorageUnavailable for load, got %v", err)
	}
	if !errors.Is(err, domain.ErrStorageKind) || !errors.Is(err, primary.LoadErr) {
		t.Fatalf("error should match kind and wrap causes: %v", err)
	}

	primary.SaveErr = errors.New("primary ro")
	if err := g.SaveAll(ctx, storetest.Fixture()); err != nil {
		t.Fatalf("degraded save should succeed: %v", err)
	}
	fallback.SaveErr = errors.New("fallback ro")
	if err := g.SaveAll(ctx, storetest.Fixture()); !errors.Is(err, domain.ErrStorageKind) {
		t.Fatalf("expected storage unavailable on save, got %v", err)
	}
}

func TestGatewayWithoutFallback(t *testing.T) {
	ctx := context.Background()
	primary := memory.NewStore(nil)
	g, err := NewGateway(primary)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	if g.Driver() != "memory" {
		t.Fatalf("unexpected composition %q", g.Driver())
	}
	primary.LoadErr = errors.New("down")
	if _, err := g.LoadAll(ctx); !errors.Is(err, domain.ErrStorageKind) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
	primary.SaveErr = errors.New("down")
	if err := g.SaveAll(ctx, domain.NewCollection()); !errors.Is(err, domain.ErrStorageKind) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := NewGateway(nil); err == nil {
		t.Fatalf("expected error for nil primary")
	}
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	second.coalesce()
	if got := testutil.ToFloat64(first.coalesced); got != 1 {
		t.Fatalf("expected shared counter, got %v", got)
	}
	var nilMetrics *Metrics
	nilMetrics.coalesce()
	nilMetrics.degraded(OpSave, "x")
}
