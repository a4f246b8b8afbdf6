// Package blobtest holds a behavioural suite every core.Store driver must pass.
package blobtest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"tieintrack/internal/blob/core"
)

// Run exercises create-only Put, Get, Replace, List ordering and Delete
// against store. The store must start empty.
func Run(t *testing.T, store core.Store) {
	t.Helper()
	ctx := context.Background()

	info, err := store.Put(ctx, "docs/projects.json", bytes.NewReader([]byte(`{"a":1}`)),
		core.PutOptions{ContentType: "application/json", Metadata: map[string]string{"scope": "all"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "docs/projects.json" || info.Size != 7 {
		t.Fatalf("unexpected put info %+v", info)
	}
	if _, err := store.Put(ctx, "docs/projects.json", bytes.NewReader([]byte("x")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists on second put, got %v", err)
	}

	got, rc, err := store.Get(ctx, "docs/projects.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"a":1}` {
		t.Fatalf("unexpected body %q", body)
	}
	if got.ContentType != "application/json" {
		t.Fatalf("content type lost: %+v", got)
	}

	if _, err := core.Replace(ctx, store, "docs/projects.json", []byte(`{"a":2}`), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	data, _, err := core.ReadAll(ctx, store, "docs/projects.json")
	if err != nil || string(data) != `{"a":2}` {
		t.Fatalf("replace not visible: %q %v", data, err)
	}

	if _, _, err := store.Get(ctx, "docs/missing.json"); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	for _, key := range []string{"exports/b.json", "exports/a.json", "other/c.json"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("{}")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "exports/a.json" || list[1].Key != "exports/b.json" {
		t.Fatalf("unexpected list %+v", list)
	}

	existed, err := store.Delete(ctx, "exports/a.json")
	if err != nil || !existed {
		t.Fatalf("delete existing: %v %v", existed, err)
	}
	existed, err = store.Delete(ctx, "exports/a.json")
	if err != nil || existed {
		t.Fatalf("delete missing should report false: %v %v", existed, err)
	}
	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 blobs left, got %+v", all)
	}
}
