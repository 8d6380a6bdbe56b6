package delegation

import "sync"

// Store is the process-wide cache of the current user's delegation state,
// one snapshot per scope key. Every status surface reads from it; only the
// Coordinator (same package) writes mutation results into it. Snapshots
// returned by accessors are copies.
type Store struct {
	mu        sync.RWMutex
	snapshots map[Key]Snapshot
}

func NewStore() *Store {
	return &Store{snapshots: make(map[Key]Snapshot)}
}

// Snapshot returns the stored snapshot for a key, and whether one exists.
func (s *Store) Snapshot(k Key) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[k]
	if !ok {
		return Snapshot{Key: k}, false
	}
	return snap.clone(), true
}

// All returns a copy of every stored snapshot.
func (s *Store) All() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap.clone())
	}
	return out
}

// Hydrate replaces the stored state with server-provided snapshots. Used on
// the first successful fetch of GET /delegations/me.
func (s *Store) Hydrate(snaps []Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[Key]Snapshot, len(snaps))
	for _, snap := range snaps {
		s.snapshots[snap.Key] = snap.clone()
	}
}

// put installs a snapshot for its key. Creating a new delegation for a key
// that already holds one supersedes it; the map keyed by scope enforces the
// single-active-per-key invariant.
func (s *Store) put(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Key] = snap.clone()
}

// restore reinstates the exact pre-mutation state for a key, including its
// absence.
func (s *Store) restore(k Key, prior Snapshot, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !existed {
		delete(s.snapshots, k)
		return
	}
	s.snapshots[k] = prior.clone()
}
