package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tieintrack/internal/blob"
	"tieintrack/internal/infra/persistence/storetest"
	"tieintrack/pkg/domain"
)

func TestExportAllProjects(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	e := NewExporter(blobs, nil)
	e.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.FixedZone("x", 3600)) }

	info, err := e.Export(ctx, storetest.Fixture(), "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(info.Key, "exports/all/20240305T133000Z-") || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("unexpected key %q", info.Key)
	}
	id := strings.TrimSuffix(strings.TrimPrefix(info.Key, "exports/all/20240305T133000Z-"), ".json")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("key does not end in a uuid: %v", err)
	}

	data, _, err := blob.ReadAll(ctx, blobs, info.Key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Scope != ScopeAll || snap.Projects.Len() != 3 || snap.Projects.IDs()[0] != "ZZ-9" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestExportSingleProjectAndList(t *testing.T) {
	ctx := context.Background()
	e := NewExporter(blob.NewMemory(), nil)
	info, err := e.Export(ctx, storetest.Fixture(), "MM-5")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Metadata["scope"] != "MM-5" || info.Metadata["projects"] != "1" {
		t.Fatalf("unexpected metadata %v", info.Metadata)
	}
	if _, err := e.Export(ctx, storetest.Fixture(), ""); err != nil {
		t.Fatalf("export all: %v", err)
	}
	scoped, err := e.List(ctx, "MM-5")
	if err != nil || len(scoped) != 1 {
		t.Fatalf("expected one scoped export, got %d (%v)", len(scoped), err)
	}
	all, err := e.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected two exports, got %d (%v)", len(all), err)
	}

	if _, err := e.Export(ctx, storetest.Fixture(), "nope"); !errors.Is(err, domain.ErrNotFoundKind) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScopeSegment(t *testing.T) {
	if got := scopeSegment("FB/HDH 02A..x"); got != "FB_HDH_02A__x" {
		t.Fatalf("unexpected segment %q", got)
	}
}
