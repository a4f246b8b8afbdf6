package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Collection is the insertion-ordered set of projects keyed by project id.
// Values are stored and returned as deep copies; the zero value is empty and
// ready to use.
type Collection struct {
	m *orderedmap.OrderedMap[string, Project]
}

// NewCollection builds a collection holding the given projects in order. A
// later project with the same id replaces the earlier one in place.
func NewCollection(projects ...Project) *Collection {
	c := &Collection{m: orderedmap.New[string, Project]()}
	for _, p := range projects {
		c.Put(p)
	}
	return c
}

func (c *Collection) ensure() {
	if c.m == nil {
		c.m = orderedmap.New[string, Project]()
	}
}

// Len returns the number of projects.
func (c *Collection) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Has reports whether id is present.
func (c *Collection) Has(id string) bool {
	if c == nil || c.m == nil {
		return false
	}
	_, ok := c.m.Get(id)
	return ok
}

// Get returns a copy of the project stored under id.
func (c *Collection) Get(id string) (Project, bool) {
	if c == nil || c.m == nil {
		return Project{}, false
	}
	p, ok := c.m.Get(id)
	if !ok {
		return Project{}, false
	}
	return p.Clone(), true
}

// Put inserts p under p.ID, or replaces the existing entry keeping its position.
func (c *Collection) Put(p Project) {
	c.ensure()
	c.m.Set(p.ID, p.Clone())
}

// Delete removes id, reporting whether it existed.
func (c *Collection) Delete(id string) bool {
	if c == nil || c.m == nil {
		return false
	}
	_, ok := c.m.Delete(id)
	return ok
}

// Move re-keys the project stored under oldID to newID at the same position and
// updates the stored project's ID. Moving onto itself is allowed.
func (c *Collection) Move(oldID, newID string) error {
	if !c.Has(oldID) {
		return ErrNotFound{Entity: EntityProject, ID: oldID}
	}
	if oldID == newID {
		return nil
	}
	if c.Has(newID) {
		return ErrDuplicateID{Entity: EntityProject, ID: newID}
	}
	p, _ := c.m.Get(oldID)
	p.ID = newID
	c.m.Set(newID, p)
	if err := c.m.MoveAfter(newID, oldID); err != nil {
		return fmt.Errorf("reposition project %s: %w", newID, err)
	}
	c.m.Delete(oldID)
	return nil
}

// IDs returns the project ids in insertion order.
func (c *Collection) IDs() []string {
	if c == nil || c.m == nil {
		return nil
	}
	out := make([]string, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Projects returns copies of all projects in insertion order.
func (c *Collection) Projects() []Project {
	if c == nil || c.m == nil {
		return nil
	}
	out := make([]Project, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Clone())
	}
	return out
}

// First returns the id of the oldest project.
func (c *Collection) First() (string, bool) {
	if c == nil || c.m == nil {
		return "", false
	}
	pair := c.m.Oldest()
	if pair == nil {
		return "", false
	}
	return pair.Key, true
}

// Clone returns a deep copy sharing no mutable state with c.
func (c *Collection) Clone() *Collection {
	out := NewCollection()
	if c == nil || c.m == nil {
		return out
	}
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		out.m.Set(pair.Key, pair.Value.Clone())
	}
	return out
}

// MarshalJSON encodes the collection as an object keyed by project id, in order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	if c == nil || c.m == nil {
		return []byte("{}"), nil
	}
	return c.m.MarshalJSON()
}

// UnmarshalJSON decodes an object keyed by project id. The key is authoritative
// for each project's ID.
func (c *Collection) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, Project]()
	if trimmed := strings.TrimSpace(string(data)); trimmed != "null" {
		if err := json.Unmarshal(data, m); err != nil {
			return err
		}
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value
		p.ID = pair.Key
		normalizeProject(&p)
		pair.Value = p
	}
	c.m = m
	return nil
}

// normalizeProject replaces nil slices with empty ones so encoded records always
// carry arrays.
func normalizeProject(p *Project) {
	if p.DaisyChains == nil {
		p.DaisyChains = []DaisyChain{}
	}
	for i := range p.DaisyChains {
		if p.DaisyChains[i].TieIns == nil {
			p.DaisyChains[i].TieIns = []TieIn{}
		}
		for j := range p.DaisyChains[i].TieIns {
			if p.DaisyChains[i].TieIns[j].Connects == nil {
				p.DaisyChains[i].TieIns[j].Connects = []int{}
			}
		}
	}
}
