package core

import "sync"

// StateStore owns the single process-wide connection state. Every
// mutation is a whole-state swap: read current, derive next, install
// next under the lock. The store serializes individual swaps only;
// concurrent connect/disconnect invocations on the same manager must
// be serialized by the caller (single-writer discipline).
type StateStore struct {
	mu    sync.Mutex
	state State
}

func NewStateStore(initial State) *StateStore {
	if initial.Status == "" {
		initial.Status = StatusDisconnected
	}
	if initial.Connections == nil {
		initial.Connections = map[string]Connection{}
	}
	return &StateStore{state: initial}
}

// Snapshot returns a deep copy of the current state.
func (s *StateStore) Snapshot() State {
	if s == nil {
		return NewState(0)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Swap atomically replaces the state with fn's derivation of it and
// returns the installed state. fn receives a private copy and may
// mutate it freely.
func (s *StateStore) Swap(fn func(State) State) State {
	if s == nil || fn == nil {
		return NewState(0)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.state.Clone())
	if next.Connections == nil {
		next.Connections = map[string]Connection{}
	}
	s.state = next
	return next.Clone()
}
