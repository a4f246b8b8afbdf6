package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProjectStore is the load-all / save-all contract the core persists through.
// SaveAll replaces every stored record with the supplied collection.
type ProjectStore interface {
	LoadAll(ctx context.Context) (*Collection, error)
	SaveAll(ctx context.Context, projects *Collection) error
	Driver() string
	Close() error
}

// RecordStoreName names the record store holding one entry per project.
const RecordStoreName = "projects"

// Record is the persisted shape of one project: {id, data}.
type Record struct {
	ID   string  `json:"id"`
	Data Project `json:"data"`
}

// Records flattens a collection into persisted records in insertion order.
func Records(c *Collection) []Record {
	projects := c.Projects()
	out := make([]Record, 0, len(projects))
	for _, p := range projects {
		out = append(out, Record{ID: p.ID, Data: p})
	}
	return out
}

// CollectionFromRecords rebuilds a collection from persisted records. The record
// id wins over any id embedded in the payload.
func CollectionFromRecords(records []Record) *Collection {
	c := NewCollection()
	for _, r := range records {
		p := r.Data
		p.ID = r.ID
		c.Put(p)
	}
	return c
}

// EncodeProject marshals a project payload for row-oriented stores.
func EncodeProject(p Project) ([]byte, error) {
	data, err := json.Marshal(p.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode project %s: %w", p.ID, err)
	}
	return data, nil
}

// DecodeProject unmarshals a row payload, forcing the row id onto the project.
func DecodeProject(id string, payload []byte) (Project, error) {
	var p Project
	if err := json.Unmarshal(payload, &p); err != nil {
		return Project{}, fmt.Errorf("decode project %s: %w", id, err)
	}
	p.ID = id
	normalizeProject(&p)
	return p, nil
}
