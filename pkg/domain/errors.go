package domain

import (
	"errors"
	"fmt"
)

// Sentinel kinds matched with errors.Is against the typed errors below.
var (
	ErrNotFoundKind    = errors.New("not found")
	ErrDuplicateKind   = errors.New("duplicate id")
	ErrStorageKind     = errors.New("storage unavailable")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrEmptyIdentifier = errors.New("empty identifier")
)

// ErrNotFound is returned when a referenced project, chain or tie-in is missing.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is lets errors.Is(err, ErrNotFoundKind) match any ErrNotFound.
func (e ErrNotFound) Is(target error) bool { return target == ErrNotFoundKind }

// ErrDuplicateID is returned when a create or re-key collides with an existing id.
type ErrDuplicateID struct {
	Entity EntityType
	ID     string
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.ID)
}

// Is lets errors.Is(err, ErrDuplicateKind) match any ErrDuplicateID.
func (e ErrDuplicateID) Is(target error) bool { return target == ErrDuplicateKind }

// ErrStorageUnavailable reports that no configured store could serve Op.
type ErrStorageUnavailable struct {
	Op  string
	Err error
}

func (e ErrStorageUnavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage unavailable: %s", e.Op)
	}
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying backend error.
func (e ErrStorageUnavailable) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorageKind) match any ErrStorageUnavailable.
func (e ErrStorageUnavailable) Is(target error) bool { return target == ErrStorageKind }

func chainKey(id int) string { return fmt.Sprintf("%d", id) }

// ChainNotFound builds the NotFound error for a chain inside a project.
func ChainNotFound(projectID string, chainID int) ErrNotFound {
	return ErrNotFound{Entity: EntityChain, ID: projectID + "/" + chainKey(chainID)}
}

// TieInNotFound builds the NotFound error for a tie-in inside a chain.
func TieInNotFound(projectID string, chainID, tieInID int) ErrNotFound {
	return ErrNotFound{Entity: EntityTieIn, ID: projectID + "/" + chainKey(chainID) + "/" + chainKey(tieInID)}
}
