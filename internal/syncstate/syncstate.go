// Package syncstate remembers which remote activity each local activity
// was downloaded from or uploaded to, per sync service.
package syncstate

import (
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// Entries maps an activity id to the remote id it has on each service.
type Entries map[uuid.UUID]map[string]string

// Clone returns a deep copy of e.
func (e Entries) Clone() Entries {
	out := make(Entries, len(e))
	for id, services := range e {
		out[id] = maps.Clone(services)
	}
	return out
}

// Store persists the sync state.
type Store interface {
	LoadSyncState() (Entries, error)
	SaveSyncState(entries Entries) error
}

// State is the sync state of one activity list. It is loaded lazily and
// written back only on Commit. It is safe for concurrent use.
type State struct {
	mu      sync.Mutex
	store   Store
	entries Entries
	dirty   bool
}

// New returns an unloaded State backed by store. A nil store keeps the
// state in memory only.
func New(store Store) *State {
	return &State{store: store}
}

// EnsureLoaded reads the state from the store if it has not been read yet.
func (s *State) EnsureLoaded() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoaded()
}

func (s *State) ensureLoaded() error {
	if s.entries != nil {
		return nil
	}
	if s.store == nil {
		s.entries = make(Entries)
		return nil
	}
	entries, err := s.store.LoadSyncState()
	if err != nil {
		return fmt.Errorf("load sync state: %w", err)
	}
	if entries == nil {
		entries = make(Entries)
	}
	s.entries = entries
	return nil
}

// Add records that activity id is remoteID on service. Other services'
// ids for the same activity are kept.
func (s *State) Add(service string, id uuid.UUID, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if s.entries[id] == nil {
		s.entries[id] = make(map[string]string)
	}
	s.entries[id][service] = remoteID
	s.dirty = true
	return nil
}

// Get returns the remote id of activity id on service.
func (s *State) Get(service string, id uuid.UUID) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return "", false, err
	}
	remote, ok := s.entries[id][service]
	return remote, ok, nil
}

// Forget drops every entry of activity id.
func (s *State) Forget(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if _, ok := s.entries[id]; ok {
		delete(s.entries, id)
		s.dirty = true
	}
	return nil
}

// Commit writes the state back if it changed since it was loaded or last
// committed.
func (s *State) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.store == nil {
		s.dirty = false
		return nil
	}
	if err := s.store.SaveSyncState(s.entries.Clone()); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	s.dirty = false
	return nil
}
