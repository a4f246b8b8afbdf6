// Package storetest holds the behavioural suite every domain.ProjectStore
// backend must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tieintrack/pkg/domain"
)

// Fixture returns three projects inserted in non-alphabetical order so that
// order preservation is observable.
func Fixture() *domain.Collection {
	return domain.NewCollection(
		domain.Project{ID: "ZZ-9", Name: "Last by name", DaisyChains: []domain.DaisyChain{{
			ID: 1, Name: "Chain 1",
			TieIns: []domain.TieIn{
				{ID: 1, Connects: []int{2}, Status: domain.StatusComplete},
				{ID: 2, Connects: []int{9}, Status: domain.StatusNeedsSplicing},
			},
		}}},
		domain.Project{ID: "AA-1", Name: "First by name", DaisyChains: []domain.DaisyChain{}},
		domain.Project{ID: "MM-5", Name: "Middle", DaisyChains: []domain.DaisyChain{
			{ID: 3, Name: "Trunk", TieIns: []domain.TieIn{}},
			{ID: 1, Name: "Spur", TieIns: []domain.TieIn{{ID: 4, Connects: []int{}, Status: domain.StatusPendingLocates}}},
		}},
	)
}

// Run checks empty load, round trip, order preservation and full replace
// semantics. The store must start empty.
func Run(t *testing.T, store domain.ProjectStore) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("expected empty store, got %v", empty.IDs())
	}

	want := Fixture()
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want.IDs(), got.IDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Projects(), got.Projects()); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}

	// a save replaces everything, including dropping projects no longer present
	next := got.Clone()
	next.Delete("AA-1")
	p, _ := next.Get("ZZ-9")
	p.Name = "Renamed"
	next.Put(p)
	if err := store.SaveAll(ctx, next); err != nil {
		t.Fatalf("second save: %v", err)
	}
	reloaded, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff([]string{"ZZ-9", "MM-5"}, reloaded.IDs()); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}
	if p, _ := reloaded.Get("ZZ-9"); p.Name != "Renamed" {
		t.Fatalf("expected renamed project, got %q", p.Name)
	}

	if err := store.SaveAll(ctx, domain.NewCollection()); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	cleared, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load cleared: %v", err)
	}
	if cleared.Len() != 0 {
		t.Fatalf("expected cleared store, got %v", cleared.IDs())
	}
	if store.Driver() == "" {
		t.Fatalf("driver name must not be empty")
	}
}
