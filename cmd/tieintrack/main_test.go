package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tieintrack/internal/blob"
	"tieintrack/internal/config"
	"tieintrack/internal/infra/persistence/memory"
	"tieintrack/internal/persistence"
)

// sharedStore outlives a single invocation so consecutive commands see each
// other's writes.
type sharedStore struct{ *memory.Store }

func (sharedStore) Close() error { return nil }

type harness struct {
	t      *testing.T
	store  *memory.Store
	blobs  blob.Store
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		store:  memory.NewStore(nil),
		blobs:  blob.NewMemory(),
		config: filepath.Join(t.TempDir(), "absent.yaml"),
	}
	prev := openStorage
	openStorage = func(_ context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*persistence.Stack, error) {
		metrics, err := persistence.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		return persistence.Assemble(sharedStore{h.store}, nil, h.blobs, cfg.Storage, logger, metrics)
	}
	t.Cleanup(func() { openStorage = prev })
	t.Setenv("TIEINTRACK_LOG_LEVEL", "error")
	return h
}

func (h *harness) run(args ...string) (string, string, int) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(context.Background(), append([]string{"--config", h.config}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (h *harness) ok(args ...string) (string, string) {
	h.t.Helper()
	out, errOut, code := h.run(args...)
	require.Equalf(h.t, 0, code, "%v failed: %s", args, errOut)
	return out, errOut
}

func TestFirstRunSeedsSampleData(t *testing.T) {
	h := newHarness(t)
	out, errOut := h.ok("project", "list", "--json")

	var projects map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Contains(t, projects, "FB-HDH02A")
	assert.Contains(t, projects, "FB-HDH03B")
	assert.Empty(t, errOut, "seeding an empty store is silent")
	assert.Equal(t, 1, h.store.Saves(), "seed data is persisted")

	out, _ = h.ok("project", "list")
	assert.Contains(t, out, "FB-HDH02A")
	assert.Contains(t, out, "*", "the first project is selected")
}

func TestTieInWorkflow(t *testing.T) {
	h := newHarness(t)
	_, errOut := h.ok("project", "add", "P1", "--name", "One")
	assert.Contains(t, errOut, `[success] Project "P1" created successfully`)

	out, _ := h.ok("chain", "add", "--name", "C1")
	assert.Equal(t, "Created chain 1 in P1\n", out, "new project is selected")

	out, _ = h.ok("tiein", "add", "--chain", "1", "--connects", "2", "--status", "complete")
	assert.Equal(t, "Added tie-in 1 to chain 1\n", out)
	out, _ = h.ok("tiein", "add", "-c", "1", "--status", "needs-splicing")
	assert.Equal(t, "Added tie-in 2 to chain 1\n", out)

	assert.InDelta(t, 50.0, completion(t, h), 0.001)

	h.ok("chain", "select", "1")
	h.ok("tiein", "status", "2", "Complete")
	assert.InDelta(t, 100.0, completion(t, h), 0.001)

	out, _ = h.ok("tiein", "list", "--json")
	var tieIns []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tieIns))
	require.Len(t, tieIns, 2)
	assert.Equal(t, "Complete", tieIns[1]["status"])

	h.ok("tiein", "update", "1", "--connects", "")
	out, _ = h.ok("graph", "--json")
	var g struct {
		Nodes []map[string]any `json:"nodes"`
		Links []map[string]any `json:"links"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Nodes, 2)
	assert.Empty(t, g.Links)

	stored, err := h.store.LoadAll(context.Background())
	require.NoError(t, err)
	p, ok := stored.Get("P1")
	require.True(t, ok)
	assert.Equal(t, "C1", p.DaisyChains[0].Name)
}

func completion(t *testing.T, h *harness) float64 {
	t.Helper()
	out, _ := h.ok("stats", "--json")
	var s struct {
		Summary struct {
			Completion float64 `json:"completion"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	return s.Summary.Completion
}

func TestDeletesRequireConfirmation(t *testing.T) {
	h := newHarness(t)
	h.ok("project", "list")

	_, errOut, code := h.run("project", "delete", "FB-HDH03B")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "without --yes")

	_, errOut = h.ok("project", "delete", "FB-HDH03B", "--yes")
	assert.Contains(t, errOut, `Project "FB-HDH03B" deleted`)

	_, _, code = h.run("chain", "delete", "6", "--project", "FB-HDH02A")
	assert.Equal(t, 2, code)
	_, errOut = h.ok("chain", "delete", "6", "--project", "FB-HDH02A", "-y")
	assert.Contains(t, errOut, "Chain deleted successfully")

	_, errOut = h.ok("tiein", "delete", "70", "-p", "FB-HDH02A", "-c", "1", "-y")
	assert.Contains(t, errOut, "Tie-in 70 deleted")

	stored, _ := h.store.LoadAll(context.Background())
	assert.Equal(t, []string{"FB-HDH02A"}, stored.IDs())
	p, _ := stored.Get("FB-HDH02A")
	assert.Len(t, p.DaisyChains, 5)
	assert.Len(t, p.DaisyChains[0].TieIns, 7)
}

func TestRenameAndSelectionPersist(t *testing.T) {
	h := newHarness(t)
	h.ok("project", "list")
	h.ok("project", "rename", "FB-HDH02A", "FB-HDH02Z", "--name", "Renamed")
	h.ok("project", "select", "FB-HDH03B")

	out, _ := h.ok("project", "list", "--json")
	idx02 := strings.Index(out, "FB-HDH02Z")
	idx03 := strings.Index(out, "FB-HDH03B")
	assert.True(t, idx02 >= 0 && idx02 < idx03, "renamed project keeps its position")
	assert.NotContains(t, out, `"FB-HDH02A"`)

	out, _ = h.ok("chain", "list", "--json")
	var chains []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &chains))
	assert.Len(t, chains, 2, "selection survives between invocations")

	h.ok("chain", "rename", "2", "--new-id", "9", "--name", "Spur")
	out, _ = h.ok("chain", "list")
	assert.Contains(t, out, "Spur")
}

func TestProjectRenameKeepsNameByDefault(t *testing.T) {
	h := newHarness(t)
	h.ok("project", "add", "P1", "--name", "Pump station")
	h.ok("project", "rename", "P1", "P2")

	out, _ := h.ok("project", "list", "--json")
	var projects map[string]struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	require.Contains(t, projects, "P2")
	assert.Equal(t, "Pump station", projects["P2"].Name)

	_, _, code := h.run("project", "rename", "nope", "P3")
	assert.Equal(t, 1, code, "unknown project")
}

func TestErrorsAndExitCodes(t *testing.T) {
	h := newHarness(t)
	_, errOut, code := h.run("stats", "--project", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "project nope not found")

	_, errOut, code = h.run("project", "add", "FB-HDH02A")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "FB-HDH02A")

	_, _, code = h.run("tiein", "status", "70", "finished", "-c", "1")
	assert.Equal(t, 2, code)

	_, _, code = h.run("graph")
	assert.Equal(t, 2, code, "graph needs a chain")

	_, _, code = h.run("tiein", "status", "999", "complete", "-c", "1")
	assert.Equal(t, 1, code)

	_, _, code = h.run("stats", "--bogus")
	assert.Equal(t, 2, code)
}

func TestSyntheticSeries(t *testing.T) {
	h := newHarness(t)
	out, _ := h.ok("trend", "--seed", "7", "--json")
	var tr struct {
		Synthetic bool             `json:"synthetic"`
		Points    []map[string]any `json:"points"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tr))
	assert.True(t, tr.Synthetic)
	assert.Len(t, tr.Points, 8)

	again, _ := h.ok("trend", "--seed", "7", "--json")
	assert.Equal(t, out, again, "a fixed seed repeats the series")

	out, _ = h.ok("timeline", "--seed", "3")
	assert.Contains(t, out, "(simulated)")
	out, _ = h.ok("report")
	assert.Contains(t, out, "FB-HDH02A Project Report")
}

func TestExportAndSeed(t *testing.T) {
	h := newHarness(t)
	out, _ := h.ok("export", "--all")
	assert.Contains(t, out, "Exported exports/all/")
	h.ok("export")

	out, _ = h.ok("export", "--list", "--all", "--json")
	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, 2)

	h.ok("project", "delete", "FB-HDH02A", "--yes")
	_, _, code := h.run("seed")
	assert.Equal(t, 2, code)
	_, errOut := h.ok("seed", "--yes")
	assert.Contains(t, errOut, "Loaded 2 projects")
	stored, _ := h.store.LoadAll(context.Background())
	assert.Equal(t, 2, stored.Len())
}

func TestMainUsesExitFunc(t *testing.T) {
	newHarness(t)
	var codes []int
	prevExit, prevArgs := exitFunc, os.Args
	exitFunc = func(code int) { codes = append(codes, code) }
	defer func() { exitFunc, os.Args = prevExit, prevArgs }()

	os.Args = []string{"tieintrack", "--config", filepath.Join(t.TempDir(), "none.yaml"), "project", "list", "--json"}
	main()
	os.Args = []string{"tieintrack", "project", "delete", "x"}
	main()
	assert.Equal(t, []int{0, 2}, codes)
}

func TestUnopenablePrimaryFallsBackToDocument(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	t.Setenv("TIEINTRACK_SQLITE_PATH", filepath.Join(file, "sub", "db.sqlite"))
	t.Setenv("TIEINTRACK_BLOB_DRIVER", "fs")
	t.Setenv("TIEINTRACK_BLOB_FS_ROOT", filepath.Join(dir, "blobs"))
	t.Setenv("TIEINTRACK_LOG_LEVEL", "error")
	cfgPath := filepath.Join(dir, "absent.yaml")

	run := func(args ...string) (string, string, int) {
		var stdout, stderr bytes.Buffer
		code := cli(context.Background(), append([]string{"--config", cfgPath}, args...), &stdout, &stderr)
		return stdout.String(), stderr.String(), code
	}

	out, errOut, code := run("project", "list")
	require.Equalf(t, 0, code, "stderr: %s", errOut)
	assert.Contains(t, out, "FB-HDH02A")

	_, errOut, code = run("project", "add", "KEEP", "--name", "Kept")
	require.Equalf(t, 0, code, "stderr: %s", errOut)

	out, errOut, code = run("project", "list", "--json")
	require.Equalf(t, 0, code, "stderr: %s", errOut)
	var projects map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Contains(t, projects, "KEEP", "writes survive through the document fallback")
}

func TestConfigInitWritesEffectiveConfig(t *testing.T) {
	h := newHarness(t)
	h.config = filepath.Join(t.TempDir(), "etc", "tieintrack.yaml")
	t.Setenv("TIEINTRACK_STORAGE_DRIVER", "memory")

	out, _ := h.ok("config", "init")
	assert.Equal(t, "Wrote "+h.config+"\n", out)
	assert.Zero(t, h.store.Saves(), "config commands do not open storage")

	data, err := os.ReadFile(h.config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "driver: memory")
	assert.Contains(t, string(data), "fallback: document")
	cfg, err := config.Load(h.config)
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)

	_, errOut, code := h.run("config", "init")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "--force")
	h.ok("config", "init", "--force")
}
