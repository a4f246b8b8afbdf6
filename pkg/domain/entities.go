// Package domain defines the project, daisy chain and tie-in entities tracked by
// tieintrack, their status vocabulary, and the persistence contract the core
// depends on.
package domain

import (
	"fmt"
	"strings"
)

// EntityType identifies the kind of record referenced by errors and log fields.
type EntityType string

// Entity types carried in ErrNotFound / ErrDuplicateID.
const (
	EntityProject EntityType = "project"
	EntityChain   EntityType = "daisy_chain"
	EntityTieIn   EntityType = "tie_in"
)

// Status is the progress stage of a tie-in. The wire value is the display name.
type Status string

// Canonical statuses in progression order.
const (
	StatusPendingVerification Status = "Pending Verification"
	StatusPendingLocates      Status = "Pending Locates"
	StatusNeedsConstruction   Status = "Needs Construction"
	StatusConstructionStarted Status = "Construction Started"
	StatusNeedsStingray       Status = "Needs Stingray"
	StatusNeedsSplicing       Status = "Needs Splicing"
	StatusComplete            Status = "Complete"
)

var statusOrder = []Status{
	StatusPendingVerification,
	StatusPendingLocates,
	StatusNeedsConstruction,
	StatusConstructionStarted,
	StatusNeedsStingray,
	StatusNeedsSplicing,
	StatusComplete,
}

var statusColors = map[Status]string{
	StatusPendingVerification: "#BDBDBD",
	StatusPendingLocates:      "#757575",
	StatusNeedsConstruction:   "#B71C1C",
	StatusConstructionStarted: "#D32F2F",
	StatusNeedsStingray:       "#E53935",
	StatusNeedsSplicing:       "#EF5350",
	StatusComplete:            "#212121",
}

// Statuses returns the closed status set in canonical progression order.
func Statuses() []Status {
	return append([]Status(nil), statusOrder...)
}

// String returns the display name.
func (s Status) String() string { return string(s) }

// IsValid reports whether s is one of the seven canonical statuses.
func (s Status) IsValid() bool {
	_, ok := statusColors[s]
	return ok
}

// Color returns the display color for s, or an empty string for unknown values.
func (s Status) Color() string { return statusColors[s] }

// Index returns the position of s in the progression, or -1.
func (s Status) Index() int {
	for i, candidate := range statusOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// NeedsAttention reports whether s is one of the "Needs ..." field-work stages.
func (s Status) NeedsAttention() bool {
	switch s {
	case StatusNeedsConstruction, StatusNeedsStingray, StatusNeedsSplicing:
		return true
	default:
		return false
	}
}

// ParseStatus resolves user input to a Status. Matching ignores case and treats
// '-' and '_' as spaces, so "needs-splicing" resolves to StatusNeedsSplicing.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.Join(strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(raw)), " ")
	for _, s := range statusOrder {
		if strings.EqualFold(string(s), normalized) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// TieIn is a splice point in a daisy chain. Connects holds directed "next" edges
// by tie-in id; targets are not required to exist.
type TieIn struct {
	ID       int    `json:"id"`
	Connects []int  `json:"connects"`
	Status   Status `json:"status"`
}

// Clone returns a deep copy of the tie-in.
func (t TieIn) Clone() TieIn {
	cp := t
	cp.Connects = append([]int{}, t.Connects...)
	return cp
}

// DaisyChain is an ordered group of tie-ins inside a project.
type DaisyChain struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	TieIns []TieIn `json:"tieIns"`
}

// Clone returns a deep copy of the chain.
func (c DaisyChain) Clone() DaisyChain {
	cp := c
	cp.TieIns = make([]TieIn, len(c.TieIns))
	for i, t := range c.TieIns {
		cp.TieIns[i] = t.Clone()
	}
	return cp
}

// FindTieIn returns the index of the tie-in with the given id, or -1.
func (c DaisyChain) FindTieIn(id int) int {
	for i, t := range c.TieIns {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Project is the top-level unit of work, keyed by its user-assigned id.
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	DaisyChains []DaisyChain `json:"daisyChains"`
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	cp := p
	cp.DaisyChains = make([]DaisyChain, len(p.DaisyChains))
	for i, c := range p.DaisyChains {
		cp.DaisyChains[i] = c.Clone()
	}
	return cp
}

// FindChain returns the index of the chain with the given id, or -1.
func (p Project) FindChain(id int) int {
	for i, c := range p.DaisyChains {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Chain returns a copy of the chain with the given id.
func (p Project) Chain(id int) (DaisyChain, bool) {
	idx := p.FindChain(id)
	if idx < 0 {
		return DaisyChain{}, false
	}
	return p.DaisyChains[idx].Clone(), true
}

// TieInCount returns the number of tie-ins across all chains.
func (p Project) TieInCount() int {
	total := 0
	for _, c := range p.DaisyChains {
		total += len(c.TieIns)
	}
	return total
}

// NextChainID returns max(existing chain ids)+1, or 1 for a project without chains.
func NextChainID(p Project) int {
	if len(p.DaisyChains) == 0 {
		return 1
	}
	highest := p.DaisyChains[0].ID
	for _, c := range p.DaisyChains[1:] {
		if c.ID > highest {
			highest = c.ID
		}
	}
	return highest + 1
}

// NextChainName returns the default display name for the next chain.
func NextChainName(p Project) string {
	return fmt.Sprintf("Chain %d", len(p.DaisyChains)+1)
}

// NextTieInID returns max(existing tie-in ids)+1, or 1 for an empty chain.
func NextTieInID(c DaisyChain) int {
	if len(c.TieIns) == 0 {
		return 1
	}
	highest := c.TieIns[0].ID
	for _, t := range c.TieIns[1:] {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest + 1
}
