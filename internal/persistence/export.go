package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tieintrack/internal/blob"
	"tieintrack/pkg/domain"
)

// ExportPrefix is the blob key prefix for snapshot exports.
const ExportPrefix = "exports/"

// ScopeAll names an export of every project.
const ScopeAll = "all"

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time          `json:"exportedAt"`
	Scope      string             `json:"scope"`
	Projects   *domain.Collection `json:"projects"`
}

// Exporter writes JSON snapshots to a blob store.
type Exporter struct {
	blobs   blob.Store
	metrics *Metrics
	now     func() time.Time
	newID   func() string
}

// NewExporter returns an exporter writing to blobs. m may be nil.
func NewExporter(blobs blob.Store, m *Metrics) *Exporter {
	return &Exporter{
		blobs:   blobs,
		metrics: m,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Export stores projects, or only projectID when it is not empty, under
// exports/<scope>/<UTC timestamp>-<uuid>.json.
func (e *Exporter) Export(ctx context.Context, projects *domain.Collection, projectID string) (blob.Info, error) {
	start := time.Now()
	info, err := e.export(ctx, projects, projectID)
	e.metrics.observe(OpExport, string(e.blobs.Driver()), start, err)
	return info, err
}

func (e *Exporter) export(ctx context.Context, projects *domain.Collection, projectID string) (blob.Info, error) {
	scope := ScopeAll
	selected := projects.Clone()
	if projectID != "" {
		p, ok := projects.Get(projectID)
		if !ok {
			return blob.Info{}, domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
		}
		scope = projectID
		selected = domain.NewCollection(p)
	}
	now := e.now().UTC()
	data, err := json.MarshalIndent(Snapshot{ExportedAt: now, Scope: scope, Projects: selected}, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := fmt.Sprintf("%s%s/%s-%s.json", ExportPrefix, scopeSegment(scope), now.Format("20060102T150405Z"), e.newID())
	info, err := e.blobs.Put(ctx, key, strings.NewReader(string(data)), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"scope": scope, "projects": fmt.Sprint(selected.Len())},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store snapshot: %w", err)
	}
	return info, nil
}

// List returns stored exports for scope, every export when scope is empty.
func (e *Exporter) List(ctx context.Context, scope string) ([]blob.Info, error) {
	prefix := ExportPrefix
	if scope != "" {
		prefix += scopeSegment(scope) + "/"
	}
	return e.blobs.List(ctx, prefix)
}

// scopeSegment makes a project id safe for use as one key segment.
func scopeSegment(scope string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, scope)
}
