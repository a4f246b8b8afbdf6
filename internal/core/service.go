package core

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tieintrack/pkg/domain"
)

// Loader is the read half of domain.ProjectStore.
type Loader interface {
	LoadAll(ctx context.Context) (*domain.Collection, error)
}

// Saver receives collection snapshots after every mutation. The persistence
// package provides a debounced implementation.
type Saver interface {
	Schedule(*domain.Collection)
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier adds a notification target. It may be given more than once.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
}

// WithSaver routes snapshots to saver after each mutation.
func WithSaver(saver Saver) Option {
	return func(s *Service) { s.saver = saver }
}

// WithSeed supplies the collection used when the store is empty or unreadable.
func WithSeed(seed func() *domain.Collection) Option {
	return func(s *Service) { s.seed = seed }
}

// Service owns the working State. It applies mutations, raises notifications
// and hands snapshots to the saver.
type Service struct {
	mu        sync.Mutex
	state     State
	logger    *zap.Logger
	notifiers multiNotifier
	saver     Saver
	seed      func() *domain.Collection
}

// NewService wraps an already loaded state.
func NewService(state State, opts ...Option) *Service {
	s := &Service{
		state:  state,
		logger: zap.NewNop(),
		seed:   func() *domain.Collection { return domain.NewCollection() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state.Projects == nil {
		s.state = NewState(nil)
	}
	return s
}

// Open loads the collection through loader. A load failure falls back to the
// seed collection and raises an error notification; an empty store is seeded
// silently. Seeded data is scheduled for saving.
func Open(ctx context.Context, loader Loader, opts ...Option) *Service {
	s := NewService(State{}, opts...)
	projects, err := loader.LoadAll(ctx)
	switch {
	case err != nil:
		s.logger.Error("load projects", zap.Error(err))
		s.state = NewState(s.seed())
		s.notify(Notification{Level: LevelError, Message: "Error loading projects from database. Using default data."})
		s.schedule()
	case projects.Len() == 0:
		s.logger.Info("store empty, using seed data")
		s.state = NewState(s.seed())
		s.schedule()
	default:
		s.state = NewState(projects)
		s.logger.Debug("projects loaded", zap.Int("count", projects.Len()))
	}
	return s
}

// State returns the current snapshot. The collection must not be modified.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Projects returns a copy of the project collection.
func (s *Service) Projects() *domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Projects.Clone()
}

// Selection returns the current view selection.
func (s *Service) Selection() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Selection
}

// Project returns a copy of project id.
func (s *Service) Project(id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.Projects.Get(id)
	if !ok {
		return domain.Project{}, domain.ErrNotFound{Entity: domain.EntityProject, ID: id}
	}
	return p, nil
}

// SelectedProject returns the project the selection points at.
func (s *Service) SelectedProject() (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedProject()
}

// CreateProject adds an empty project and selects it.
func (s *Service) CreateProject(id, name string) error {
	return s.apply(func(st State) (State, error) { return CreateProject(st, id, name) },
		Notification{Level: LevelSuccess, Message: fmt.Sprintf("Project %q created successfully", id)})
}

// RenameProject re-keys and renames a project.
func (s *Service) RenameProject(oldID, newID, newName string) error {
	return s.apply(func(st State) (State, error) { return RenameProject(st, oldID, newID, newName) },
		Notification{Level: LevelSuccess, Message: fmt.Sprintf("Project %q updated successfully", newID)})
}

// DeleteProject removes a project.
func (s *Service) DeleteProject(id string) error {
	return s.apply(func(st State) (State, error) { return DeleteProject(st, id) },
		Notification{Level: LevelInfo, Message: fmt.Sprintf("Project %q deleted", id)})
}

// CreateChain appends a chain. A zero chainID takes the next free id and an
// empty name takes the default "Chain N". The assigned id is returned.
func (s *Service) CreateChain(projectID string, chainID int, name string) (int, error) {
	assigned := chainID
	err := s.apply(func(st State) (State, error) {
		p, ok := st.Projects.Get(projectID)
		if !ok {
			return st, domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
		}
		if assigned == 0 {
			assigned = domain.NextChainID(p)
		}
		if name == "" {
			name = domain.NextChainName(p)
		}
		return CreateChain(st, projectID, assigned, name)
	}, Notification{})
	return assigned, err
}

// RenameChain changes a chain's id and name.
func (s *Service) RenameChain(projectID string, chainID, newID int, newName string) error {
	return s.apply(func(st State) (State, error) { return RenameChain(st, projectID, chainID, newID, newName) },
		Notification{})
}

// DeleteChain removes a chain. Missing chains are ignored.
func (s *Service) DeleteChain(projectID string, chainID int) error {
	return s.apply(func(st State) (State, error) { return DeleteChain(st, projectID, chainID), nil },
		Notification{Level: LevelInfo, Message: "Chain deleted successfully"})
}

// CreateTieIn adds a tie-in. A zero tieInID takes the next free id, which is returned.
func (s *Service) CreateTieIn(projectID string, chainID, tieInID int, connects []int, status domain.Status) (int, error) {
	assigned := tieInID
	err := s.apply(func(st State) (State, error) {
		if assigned == 0 {
			p, ok := st.Projects.Get(projectID)
			if !ok {
				return st, domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
			}
			c, ok := p.Chain(chainID)
			if !ok {
				return st, domain.ChainNotFound(projectID, chainID)
			}
			assigned = domain.NextTieInID(c)
		}
		return CreateTieIn(st, projectID, chainID, assigned, connects, status)
	}, Notification{})
	return assigned, err
}

// UpdateTieIn replaces a tie-in's connects and status.
func (s *Service) UpdateTieIn(projectID string, chainID, tieInID int, connects []int, status domain.Status) error {
	return s.apply(func(st State) (State, error) { return UpdateTieIn(st, projectID, chainID, tieInID, connects, status) },
		Notification{})
}

// UpdateTieInStatus changes a tie-in's status.
func (s *Service) UpdateTieInStatus(projectID string, chainID, tieInID int, status domain.Status) error {
	return s.apply(func(st State) (State, error) { return UpdateTieInStatus(st, projectID, chainID, tieInID, status) },
		Notification{})
}

// DeleteTieIn removes a tie-in. Missing tie-ins are ignored.
func (s *Service) DeleteTieIn(projectID string, chainID, tieInID int) error {
	return s.apply(func(st State) (State, error) { return DeleteTieIn(st, projectID, chainID, tieInID), nil },
		Notification{Level: LevelInfo, Message: fmt.Sprintf("Tie-in %d deleted", tieInID)})
}

// SelectProject changes the selected project. Selection is view state and is
// not persisted.
func (s *Service) SelectProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := SelectProject(s.state, id)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// SelectChain selects a chain inside the selected project.
func (s *Service) SelectChain(chainID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := SelectChain(s.state, chainID)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// ClearChainSelection returns to the project overview.
func (s *Service) ClearChainSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ClearChainSelection(s.state)
}

// RestoreSelection applies a previously saved selection, dropping parts that no
// longer exist.
func (s *Service) RestoreSelection(sel domain.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selection = sel.Reconcile(s.state.Projects)
}

// ReplaceAll swaps the whole collection, e.g. to reload the sample data.
func (s *Service) ReplaceAll(projects *domain.Collection) error {
	return s.apply(func(State) (State, error) { return NewState(projects.Clone()), nil },
		Notification{Level: LevelSuccess, Message: fmt.Sprintf("Loaded %d projects", projects.Len())})
}

// ReportSaveError turns a background save failure into an error notification.
// It is meant to be passed as the saver's error callback.
func (s *Service) ReportSaveError(err error) {
	s.logger.Error("save projects", zap.Error(err))
	s.notify(Notification{Level: LevelError, Message: "Error saving to database. Changes may not persist."})
}

// Flush writes any pending snapshot now.
func (s *Service) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Flush(ctx)
}

// Close flushes pending work and stops the saver.
func (s *Service) Close(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Close(ctx)
}

func (s *Service) apply(op func(State) (State, error), success Notification) error {
	s.mu.Lock()
	next, err := op(s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.schedule()
	s.mu.Unlock()

	if success.Message != "" {
		s.notify(success)
	}
	return nil
}

// schedule hands the current collection to the saver. Callers hold s.mu or
// have exclusive access. The collection is never mutated after being replaced,
// so the saver can keep the pointer.
func (s *Service) schedule() {
	if s.saver == nil {
		return
	}
	s.saver.Schedule(s.state.Projects)
}

func (s *Service) notify(n Notification) {
	s.notifiers.Notify(n)
}
