package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStatusesCanonicalOrder(t *testing.T) {
	want := []Status{
		"Pending Verification",
		"Pending Locates",
		"Needs Construction",
		"Construction Started",
		"Needs Stingray",
		"Needs Splicing",
		"Complete",
	}
	got := Statuses()
	if len(got) != len(want) {
		t.Fatalf("expected %d statuses, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("status %d: want %q got %q", i, want[i], got[i])
		}
		if got[i].Index() != i {
			t.Fatalf("index of %q: want %d got %d", got[i], i, got[i].Index())
		}
		if got[i].Color() == "" {
			t.Fatalf("missing color for %q", got[i])
		}
	}
	got[0] = "mutated"
	if Statuses()[0] != StatusPendingVerification {
		t.Fatalf("Statuses must return a copy")
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Complete":             StatusComplete,
		"complete":             StatusComplete,
		"needs-splicing":       StatusNeedsSplicing,
		"NEEDS_STINGRAY":       StatusNeedsStingray,
		"  pending   locates ": StatusPendingLocates,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %q got %q", raw, want, got)
		}
	}
	if _, err := ParseStatus("Done"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if Status("Done").IsValid() {
		t.Fatalf("unknown status reported valid")
	}
}

func TestNeedsAttention(t *testing.T) {
	attention := 0
	for _, s := range Statuses() {
		if s.NeedsAttention() {
			attention++
		}
	}
	if attention != 3 {
		t.Fatalf("expected 3 needs-attention statuses, got %d", attention)
	}
	if StatusConstructionStarted.NeedsAttention() {
		t.Fatalf("construction started is in progress, not needs attention")
	}
}

func TestNextChainIDAndName(t *testing.T) {
	empty := Project{ID: "X"}
	if got := NextChainID(empty); got != 1 {
		t.Fatalf("empty project: want 1 got %d", got)
	}
	if got := NextChainName(empty); got != "Chain 1" {
		t.Fatalf("empty project name: got %q", got)
	}
	p := Project{ID: "X", DaisyChains: []DaisyChain{{ID: 4}, {ID: 9}, {ID: 2}}}
	if got := NextChainID(p); got != 10 {
		t.Fatalf("want 10 got %d", got)
	}
	if got := NextChainName(p); got != "Chain 4" {
		t.Fatalf("want Chain 4 got %q", got)
	}
}

func TestNextTieInID(t *testing.T) {
	if got := NextTieInID(DaisyChain{}); got != 1 {
		t.Fatalf("empty chain: want 1 got %d", got)
	}
	c := DaisyChain{TieIns: []TieIn{{ID: 70}, {ID: 77}, {ID: 71}}}
	if got := NextTieInID(c); got != 78 {
		t.Fatalf("want 78 got %d", got)
	}
}

func TestProjectCloneIsDeep(t *testing.T) {
	p := Project{ID: "P1", Name: "One", DaisyChains: []DaisyChain{{
		ID: 1, Name: "C1", TieIns: []TieIn{{ID: 1, Connects: []int{2}, Status: StatusComplete}},
	}}}
	cp := p.Clone()
	cp.DaisyChains[0].Name = "changed"
	cp.DaisyChains[0].TieIns[0].Connects[0] = 99
	cp.DaisyChains[0].TieIns[0].Status = StatusPendingLocates
	if p.DaisyChains[0].Name != "C1" || p.DaisyChains[0].TieIns[0].Connects[0] != 2 || p.DaisyChains[0].TieIns[0].Status != StatusComplete {
		t.Fatalf("clone aliased original: %+v", p)
	}
}

func TestProjectJSONShape(t *testing.T) {
	p := Project{ID: "P1", Name: "One", DaisyChains: []DaisyChain{{ID: 1, Name: "C1", TieIns: []TieIn{{ID: 5, Connects: []int{6}, Status: StatusNeedsSplicing}}}}}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"P1","name":"One","daisyChains":[{"id":1,"name":"C1","tieIns":[{"id":5,"connects":[6],"status":"Needs Splicing"}]}]}`
	if string(data) != want {
		t.Fatalf("unexpected json:\nwant %s\ngot  %s", want, data)
	}
}

func TestErrorKinds(t *testing.T) {
	var err error = ErrNotFound{Entity: EntityProject, ID: "X"}
	if !errors.Is(err, ErrNotFoundKind) || errors.Is(err, ErrDuplicateKind) {
		t.Fatalf("ErrNotFound kind mismatch")
	}
	if err.Error() != "project X not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	err = ErrDuplicateID{Entity: EntityChain, ID: "X/1"}
	if !errors.Is(err, ErrDuplicateKind) {
		t.Fatalf("ErrDuplicateID kind mismatch")
	}
	cause := errors.New("disk gone")
	err = ErrStorageUnavailable{Op: "load", Err: cause}
	if !errors.Is(err, ErrStorageKind) || !errors.Is(err, cause) {
		t.Fatalf("ErrStorageUnavailable should match kind and cause")
	}
	if got := TieInNotFound("P", 2, 3).ID; got != "P/2/3" {
		t.Fatalf("unexpected tie-in key %q", got)
	}
}
