package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tieintrack/pkg/domain"
)

func fixtureState() State {
	return NewState(domain.NewCollection(
		domain.Project{ID: "P1", Name: "One", DaisyChains: []domain.DaisyChain{{
			ID: 1, Name: "C1", TieIns: []domain.TieIn{
				{ID: 1, Connects: []int{2}, Status: domain.StatusComplete},
				{ID: 2, Connects: []int{}, Status: domain.StatusPendingLocates},
			},
		}}},
		domain.Project{ID: "P2", Name: "Two", DaisyChains: []domain.DaisyChain{}},
	))
}

func TestNewStateSelectsFirstProject(t *testing.T) {
	st := fixtureState()
	if st.Selection.ProjectID != "P1" || st.Selection.HasChain() {
		t.Fatalf("unexpected selection %+v", st.Selection)
	}
	if empty := NewState(nil); empty.Projects.Len() != 0 || empty.Selection.HasProject() {
		t.Fatalf("nil collection should produce empty state")
	}
}

func TestCreateProject(t *testing.T) {
	st := NewState(domain.NewCollection())
	next, err := CreateProject(st, "X", "Xray")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p, ok := next.Projects.Get("X")
	if !ok || p.Name != "Xray" || len(p.DaisyChains) != 0 || p.DaisyChains == nil {
		t.Fatalf("unexpected project %+v", p)
	}
	if next.Selection.ProjectID != "X" {
		t.Fatalf("new project should be selected, got %+v", next.Selection)
	}
	if st.Projects.Len() != 0 {
		t.Fatalf("input state was modified")
	}

	next, err = CreateChain(next, "X", domain.NextChainID(p), "Chain 1")
	if err != nil {
		t.Fatalf("create chain: %v", err)
	}
	p, _ = next.Projects.Get("X")
	if len(p.DaisyChains) != 1 || p.DaisyChains[0].ID != 1 || p.DaisyChains[0].Name != "Chain 1" || len(p.DaisyChains[0].TieIns) != 0 {
		t.Fatalf("unexpected chains %+v", p.DaisyChains)
	}

	if _, err := CreateProject(next, "X", "again"); !errors.Is(err, domain.ErrDuplicateKind) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if _, err := CreateProject(next, "", "blank"); !errors.Is(err, domain.ErrEmptyIdentifier) {
		t.Fatalf("expected empty identifier, got %v", err)
	}
}

func TestRenameProjectKeepsChainsAndPosition(t *testing.T) {
	st := fixtureState()
	before, _ := st.Projects.Get("P1")
	next, err := RenameProject(st, "P1", "P1b", "One B")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if diff := cmp.Diff([]string{"P1b", "P2"}, next.Projects.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	after, _ := next.Projects.Get("P1b")
	if after.Name != "One B" {
		t.Fatalf("name not updated: %q", after.Name)
	}
	if diff := cmp.Diff(before.DaisyChains, after.DaisyChains); diff != "" {
		t.Fatalf("chains changed (-want +got):\n%s", diff)
	}
	if next.Projects.Has("P1") || next.Selection.ProjectID != "P1b" {
		t.Fatalf("old id remains or selection stale: %+v", next.Selection)
	}

	same, err := RenameProject(st, "P1", "P1", "Renamed")
	if err != nil {
		t.Fatalf("rename in place: %v", err)
	}
	if p, _ := same.Projects.Get("P1"); p.Name != "Renamed" {
		t.Fatalf("in-place rename lost name: %+v", p)
	}

	if _, err := RenameProject(st, "missing", "Z", "Z"); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := RenameProject(st, "P1", "P2", "clash"); !errors.Is(err, domain.ErrDuplicateKind) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	st := fixtureState()
	next, err := DeleteProject(st, "P1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if next.Projects.Len() != st.Projects.Len()-1 || next.Projects.Has("P1") {
		t.Fatalf("expected exactly one entry removed, got %v", next.Projects.IDs())
	}
	if next.Selection.ProjectID != "P2" {
		t.Fatalf("selection should fall back to first remaining, got %+v", next.Selection)
	}

	// the survivor keeps its chains and tie-ins untouched
	before, _ := st.Projects.Get("P1")
	other, err := DeleteProject(st, "P2")
	if err != nil {
		t.Fatalf("delete P2: %v", err)
	}
	after, ok := other.Projects.Get("P1")
	if !ok {
		t.Fatalf("P1 removed by deleting P2")
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("surviving project changed (-before +after):\n%s", diff)
	}
	if !st.Projects.Has("P2") {
		t.Fatalf("delete mutated the input state")
	}

	next, _ = DeleteProject(next, "P2")
	if next.Selection.HasProject() {
		t.Fatalf("selection should be empty, got %+v", next.Selection)
	}
	if _, err := DeleteProject(next, "P2"); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChainLifecycle(t *testing.T) {
	st := fixtureState()
	if _, err := CreateChain(st, "nope", 1, "x"); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("expected project not found, got %v", err)
	}
	if _, err := CreateChain(st, "P1", 1, "dup"); !errors.Is(err, domain.ErrDuplicateKind) {
		t.Fatalf("expected duplicate chain, got %v", err)
	}

	st, _ = SelectChain(st, 1)
	next, err := RenameChain(st, "P1", 1, 5, "Five")
	if err != nil {
		t.Fatalf("rename chain: %v", err)
	}
	p, _ := next.Projects.Get("P1")
	if p.DaisyChains[0].ID != 5 || p.DaisyChains[0].Name != "Five" || len(p.DaisyChains[0].TieIns) != 2 {
		t.Fatalf("rename chain mismatch: %+v", p.DaisyChains[0])
	}
	if !next.Selection.IsChain(5) {
		t.Fatalf("chain selection should follow rename, got %+v", next.Selection)
	}
	if _, err := RenameChain(next, "P1", 9, 10, "x"); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("expected chain not found, got %v", err)
	}
	next, _ = CreateChain(next, "P1", 6, "Six")
	if _, err := RenameChain(next, "P1", 6, 5, "clash"); !errors.Is(err, domain.ErrDuplicateKind) {
		t.Fatalf("expected duplicate chain id, got %v", err)
	}

	deleted := DeleteChain(next, "P1", 5)
	p, _ = deleted.Projects.Get("P1")
	if len(p.DaisyChains) != 1 || p.DaisyChains[0].ID != 6 {
		t.Fatalf("delete chain mismatch: %+v", p.DaisyChains)
	}
	if deleted.Selection.HasChain() {
		t.Fatalf("deleting the selected chain should clear chain selection")
	}
	if same := DeleteChain(deleted, "P1", 42); same.Projects != deleted.Projects {
		t.Fatalf("missing chain delete should be a no-op")
	}
}

func TestTieInStatusUpdateDrivesCompletion(t *testing.T) {
	st := fixtureState()
	p, _ := st.Projects.Get("P1")
	if got := CompletionRatio(p); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	next, err := UpdateTieInStatus(st, "P1", 1, 2, domain.StatusComplete)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	p, _ = next.Projects.Get("P1")
	if got := CompletionRatio(p); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	orig, _ := st.Projects.Get("P1")
	if orig.DaisyChains[0].TieIns[1].Status != domain.StatusPendingLocates {
		t.Fatalf("input state mutated")
	}
	if _, err := UpdateTieInStatus(st, "P1", 1, 2, "Done"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestTieInCreateUpdateDelete(t *testing.T) {
	st := fixtureState()
	if _, err := CreateTieIn(st, "P1", 9, 3, nil, domain.StatusComplete); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("expected chain not found, got %v", err)
	}
	if _, err := CreateTieIn(st, "P1", 1, 2, nil, domain.StatusComplete); !errors.Is(err, domain.ErrDuplicateKind) {
		t.Fatalf("expected duplicate tie-in, got %v", err)
	}
	if _, err := CreateTieIn(st, "P1", 1, 3, nil, "Bogus"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}

	connects := []int{1, 99}
	next, err := CreateTieIn(st, "P1", 1, 3, connects, domain.StatusNeedsSplicing)
	if err != nil {
		t.Fatalf("create tie-in: %v", err)
	}
	connects[0] = 500
	p, _ := next.Projects.Get("P1")
	created := p.DaisyChains[0].TieIns[2]
	if diff := cmp.Diff(domain.TieIn{ID: 3, Connects: []int{1, 99}, Status: domain.StatusNeedsSplicing}, created); diff != "" {
		t.Fatalf("created tie-in mismatch (-want +got):\n%s", diff)
	}

	next, err = UpdateTieIn(next, "P1", 1, 3, []int{2}, domain.StatusComplete)
	if err != nil {
		t.Fatalf("update tie-in: %v", err)
	}
	p, _ = next.Projects.Get("P1")
	if diff := cmp.Diff(domain.TieIn{ID: 3, Connects: []int{2}, Status: domain.StatusComplete}, p.DaisyChains[0].TieIns[2]); diff != "" {
		t.Fatalf("updated tie-in mismatch (-want +got):\n%s", diff)
	}
	if same, err := UpdateTieIn(next, "P1", 1, 77, nil, domain.StatusComplete); err != nil || same.Projects != next.Projects {
		t.Fatalf("update of missing tie-in should be a no-op, err=%v", err)
	}

	deleted := DeleteTieIn(next, "P1", 1, 2)
	p, _ = deleted.Projects.Get("P1")
	if len(p.DaisyChains[0].TieIns) != 2 {
		t.Fatalf("expected 2 tie-ins after delete, got %d", len(p.DaisyChains[0].TieIns))
	}
	if p.DaisyChains[0].TieIns[0].Connects[0] != 2 {
		t.Fatalf("delete must not cascade into connects")
	}
}

func TestDeleteTieInMissingLeavesChainUnchanged(t *testing.T) {
	st := fixtureState()
	before, _ := st.Projects.Get("P1")
	next := DeleteTieIn(st, "P1", 1, 404)
	after, _ := next.Projects.Get("P1")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("chain changed (-want +got):\n%s", diff)
	}
	DeleteTieIn(st, "nope", 1, 1)
	DeleteTieIn(st, "P1", 8, 1)
}

func TestSelectionHelpers(t *testing.T) {
	st := fixtureState()
	if _, err := SelectProject(st, "zzz"); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("expected not found, got %v", err)
	}
	st, _ = SelectChain(st, 1)
	next, err := SelectProject(st, "P2")
	if err != nil {
		t.Fatalf("select project: %v", err)
	}
	if next.Selection.ProjectID != "P2" || next.Selection.HasChain() {
		t.Fatalf("selecting a project should clear chain: %+v", next.Selection)
	}
	if _, err := SelectChain(next, 1); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("P2 has no chain 1, got %v", err)
	}
	if cleared := ClearChainSelection(st); cleared.Selection.HasChain() {
		t.Fatalf("chain selection not cleared")
	}
}
