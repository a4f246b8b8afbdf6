package core

import (
	"fmt"

	"tieintrack/pkg/domain"
)

// State is the full model snapshot the mutation engine operates on. Every
// operation returns a new State; the input is never modified.
type State struct {
	Projects  *domain.Collection
	Selection domain.Selection
}

// NewState wraps a loaded collection and selects its first project.
func NewState(projects *domain.Collection) State {
	if projects == nil {
		projects = domain.NewCollection()
	}
	return State{Projects: projects, Selection: domain.Selection{}.Reconcile(projects)}
}

func (s State) clone() State {
	return State{Projects: s.Projects.Clone(), Selection: s.Selection}
}

// SelectedProject returns the currently selected project.
func (s State) SelectedProject() (domain.Project, bool) {
	if !s.Selection.HasProject() {
		return domain.Project{}, false
	}
	return s.Projects.Get(s.Selection.ProjectID)
}

// CreateProject inserts an empty project and selects it.
func CreateProject(s State, id, name string) (State, error) {
	if id == "" {
		return s, fmt.Errorf("create project: %w", domain.ErrEmptyIdentifier)
	}
	if s.Projects.Has(id) {
		return s, domain.ErrDuplicateID{Entity: domain.EntityProject, ID: id}
	}
	next := s.clone()
	next.Projects.Put(domain.Project{ID: id, Name: name, DaisyChains: []domain.DaisyChain{}})
	next.Selection = next.Selection.WithProject(id)
	return next, nil
}

// RenameProject re-keys oldID to newID in place and updates the name. The chains
// travel with the project and the selection follows it.
func RenameProject(s State, oldID, newID, newName string) (State, error) {
	if newID == "" {
		return s, fmt.Errorf("rename project: %w", domain.ErrEmptyIdentifier)
	}
	if !s.Projects.Has(oldID) {
		return s, domain.ErrNotFound{Entity: domain.EntityProject, ID: oldID}
	}
	next := s.clone()
	if err := next.Projects.Move(oldID, newID); err != nil {
		return s, err
	}
	p, _ := next.Projects.Get(newID)
	p.Name = newName
	next.Projects.Put(p)
	next.Selection = next.Selection.WithProject(newID)
	return next, nil
}

// DeleteProject removes id. The selection falls back to the first remaining
// project, or nothing.
func DeleteProject(s State, id string) (State, error) {
	if !s.Projects.Has(id) {
		return s, domain.ErrNotFound{Entity: domain.EntityProject, ID: id}
	}
	next := s.clone()
	next.Projects.Delete(id)
	if first, ok := next.Projects.First(); ok {
		next.Selection = domain.Selection{}.WithProject(first)
	} else {
		next.Selection = domain.Selection{}
	}
	return next, nil
}

// CreateChain appends an empty chain to the project.
func CreateChain(s State, projectID string, chainID int, name string) (State, error) {
	p, ok := s.Projects.Get(projectID)
	if !ok {
		return s, domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
	}
	if p.FindChain(chainID) >= 0 {
		return s, domain.ErrDuplicateID{Entity: domain.EntityChain, ID: fmt.Sprintf("%s/%d", projectID, chainID)}
	}
	p.DaisyChains = append(p.DaisyChains, domain.DaisyChain{ID: chainID, Name: name, TieIns: []domain.TieIn{}})
	next := s.clone()
	next.Projects.Put(p)
	return next, nil
}

// RenameChain changes a chain's id and name in place. A selection pointing at
// the chain follows it to the new id.
func RenameChain(s State, projectID string, chainID, newID int, newName string) (State, error) {
	p, ok := s.Projects.Get(projectID)
	if !ok {
		return s, domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
	}
	idx := p.FindChain(chainID)
	if idx < 0 {
		return s, domain.ChainNotFound(projectID, chainID)
	}
	if newID != chainID && p.FindChain(newID) >= 0 {
		return s, domain.ErrDuplicateID{Entity: domain.EntityChain, ID: fmt.Sprintf("%s/%d", projectID, newID)}
	}
	p.DaisyChains[idx].ID = newID
	p.DaisyChains[idx].Name = newName
	next := s.clone()
	next.Projects.Put(p)
	if next.Selection.ProjectID == projectID && next.Selection.IsChain(chainID) {
		next.Selection = next.Selection.WithChain(newID)
	}
	return next, nil
}

// DeleteChain removes a chain; a missing chain is a no-op.
func DeleteChain(s State, projectID string, chainID int) State {
	p, ok := s.Projects.Get(projectID)
	if !ok {
		return s
	}
	idx := p.FindChain(chainID)
	if idx < 0 {
		return s
	}
	p.DaisyChains = append(p.DaisyChains[:idx], p.DaisyChains[idx+1:]...)
	next := s.clone()
	next.Projects.Put(p)
	if next.Selection.ProjectID == projectID && next.Selection.IsChain(chainID) {
		next.Selection = next.Selection.WithoutChain()
	}
	return next
}

// CreateTieIn appends a tie-in to a chain.
func CreateTieIn(s State, projectID string, chainID, tieInID int, connects []int, status domain.Status) (State, error) {
	if !status.IsValid() {
		return s, fmt.Errorf("create tie-in %d: %w: %q", tieInID, domain.ErrInvalidStatus, status)
	}
	p, ok := s.Projects.Get(projectID)
	if !ok {
		return s, domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
	}
	idx := p.FindChain(chainID)
	if idx < 0 {
		return s, domain.ChainNotFound(projectID, chainID)
	}
	chain := &p.DaisyChains[idx]
	if chain.FindTieIn(tieInID) >= 0 {
		return s, domain.ErrDuplicateID{Entity: domain.EntityTieIn, ID: fmt.Sprintf("%s/%d/%d", projectID, chainID, tieInID)}
	}
	chain.TieIns = append(chain.TieIns, domain.TieIn{ID: tieInID, Connects: copyConnects(connects), Status: status})
	next := s.clone()
	next.Projects.Put(p)
	return next, nil
}

// UpdateTieIn replaces a tie-in's connects and status. Missing targets are a
// no-op; an unknown status is rejected.
func UpdateTieIn(s State, projectID string, chainID, tieInID int, connects []int, status domain.Status) (State, error) {
	if !status.IsValid() {
		return s, fmt.Errorf("update tie-in %d: %w: %q", tieInID, domain.ErrInvalidStatus, status)
	}
	return updateTieIn(s, projectID, chainID, tieInID, func(t *domain.TieIn) {
		t.Connects = copyConnects(connects)
		t.Status = status
	}), nil
}

// UpdateTieInStatus changes only the status of a tie-in.
func UpdateTieInStatus(s State, projectID string, chainID, tieInID int, status domain.Status) (State, error) {
	if !status.IsValid() {
		return s, fmt.Errorf("update tie-in %d status: %w: %q", tieInID, domain.ErrInvalidStatus, status)
	}
	return updateTieIn(s, projectID, chainID, tieInID, func(t *domain.TieIn) {
		t.Status = status
	}), nil
}

func updateTieIn(s State, projectID string, chainID, tieInID int, mutate func(*domain.TieIn)) State {
	p, ok := s.Projects.Get(projectID)
	if !ok {
		return s
	}
	ci := p.FindChain(chainID)
	if ci < 0 {
		return s
	}
	ti := p.DaisyChains[ci].FindTieIn(tieInID)
	if ti < 0 {
		return s
	}
	mutate(&p.DaisyChains[ci].TieIns[ti])
	next := s.clone()
	next.Projects.Put(p)
	return next
}

// DeleteTieIn removes a tie-in. Other tie-ins keep any connects pointing at it.
func DeleteTieIn(s State, projectID string, chainID, tieInID int) State {
	p, ok := s.Projects.Get(projectID)
	if !ok {
		return s
	}
	ci := p.FindChain(chainID)
	if ci < 0 {
		return s
	}
	chain := &p.DaisyChains[ci]
	ti := chain.FindTieIn(tieInID)
	if ti < 0 {
		return s
	}
	chain.TieIns = append(chain.TieIns[:ti], chain.TieIns[ti+1:]...)
	next := s.clone()
	next.Projects.Put(p)
	return next
}

// SelectProject selects id and clears the chain selection.
func SelectProject(s State, id string) (State, error) {
	if !s.Projects.Has(id) {
		return s, domain.ErrNotFound{Entity: domain.EntityProject, ID: id}
	}
	s.Selection = s.Selection.WithProject(id)
	return s, nil
}

// SelectChain selects a chain inside the selected project.
func SelectChain(s State, chainID int) (State, error) {
	p, ok := s.SelectedProject()
	if !ok {
		return s, domain.ErrNotFound{Entity: domain.EntityProject, ID: s.Selection.ProjectID}
	}
	if p.FindChain(chainID) < 0 {
		return s, domain.ChainNotFound(p.ID, chainID)
	}
	s.Selection = s.Selection.WithChain(chainID)
	return s, nil
}

// ClearChainSelection returns to the project overview.
func ClearChainSelection(s State) State {
	s.Selection = s.Selection.WithoutChain()
	return s
}

func copyConnects(in []int) []int {
	return append([]int{}, in...)
}
