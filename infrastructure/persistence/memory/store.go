// Package memory is an in-process Persistence used by the replay CLI and by
// tests. Failures can be injected per operation.
package memory

import (
	"context"
	"sync"

	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// Operation names a store call that can be made to fail
type Operation string

const (
	OpSaveAction  Operation = "saveAction"
	OpSaveProject Operation = "saveProject"
	OpLoadProject Operation = "loadProject"
)

// Store keeps projects and actions in memory
type Store struct {
	mu       sync.RWMutex
	projects map[string]aggregates.GraphSnapshot
	actions  []events.Action
	saves    int
	failures map[Operation]error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		projects: make(map[string]aggregates.GraphSnapshot),
		failures: make(map[Operation]error),
	}
}

// SaveAction records one action
func (s *Store) SaveAction(ctx context.Context, action events.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpSaveAction); err != nil {
		return err
	}
	s.actions = append(s.actions, action)
	return nil
}

// SaveProject stores a snapshot under its ID unless a newer revision is
// already stored
func (s *Store) SaveProject(ctx context.Context, project aggregates.GraphSnapshot, quiet bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpSaveProject); err != nil {
		return err
	}
	if stored, ok := s.projects[project.ID]; ok && stored.Revision > project.Revision {
		return pkgerrors.NewConflictError("a newer save of this project already exists").
			WithDetail("storedRevision", stored.Revision).
			WithDetail("revision", project.Revision)
	}
	s.projects[project.ID] = cloneSnapshot(project)
	s.saves++
	return nil
}

// LoadProject returns a previously saved snapshot
func (s *Store) LoadProject(ctx context.Context, projectID string) (aggregates.GraphSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure(OpLoadProject); err != nil {
		return aggregates.GraphSnapshot{}, err
	}
	snap, ok := s.projects[projectID]
	if !ok {
		return aggregates.GraphSnapshot{}, pkgerrors.NewNotFoundError("project " + projectID)
	}
	return cloneSnapshot(snap), nil
}

// Fail makes every call of op return err until cleared with a nil err
func (s *Store) Fail(op Operation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Actions returns a copy of the recorded actions
func (s *Store) Actions() []events.Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]events.Action(nil), s.actions...)
}

// Saves returns how many project saves succeeded
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// failure must be called with the lock held
func (s *Store) failure(op Operation) error {
	if err, ok := s.failures[op]; ok {
		return pkgerrors.NewPersistenceError(string(op), err)
	}
	return nil
}

func cloneSnapshot(snap aggregates.GraphSnapshot) aggregates.GraphSnapshot {
	out := snap
	out.Nodes = make([]aggregates.NodeSnapshot, len(snap.Nodes))
	for i, n := range snap.Nodes {
		n.Properties = append([]aggregates.PropertySnapshot(nil), n.Properties...)
		out.Nodes[i] = n
	}
	out.Links = append([]aggregates.LinkSnapshot(nil), snap.Links...)
	if snap.Viewport != nil {
		v := *snap.Viewport
		out.Viewport = &v
	}
	return out
}
