package geodata

import (
	"slices"
	"sync"
)

// Store is the in-memory source of truth for merged features. The keyed maps
// own the data; the flat views are derived from them after every merge, under
// the same lock, so a reader never observes a view that disagrees with the
// maps. Views iterate ids in ascending order to keep downstream matching
// deterministic across runs.
type Store struct {
	mu        sync.RWMutex
	buildings map[int64]Building
	streets   map[int64]Street

	// Derived views, rebuilt from scratch on every merge.
	buildingView []Building
	nameView     []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		buildings: make(map[int64]Building),
		streets:   make(map[int64]Street),
	}
}

// MergeBuildings upserts buildings by id, last write wins, and rebuilds the
// derived views.
func (s *Store) MergeBuildings(features []Building) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range features {
		s.buildings[b.ID] = b
	}
	s.rebuildLocked()
}

// MergeStreets upserts streets by id, last write wins, and rebuilds the
// derived views.
func (s *Store) MergeStreets(features []Street) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range features {
		s.streets[st.ID] = st
	}
	s.rebuildLocked()
}

// Buildings returns the flat building view. The returned slice is shared and
// must not be mutated by callers.
func (s *Store) Buildings() []Building {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildingView
}

// StreetNames returns the flat street-name view in id order. Duplicate names
// are retained; the matcher collapses them itself.
func (s *Store) StreetNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameView
}

// Counts returns the number of distinct buildings and streets held.
func (s *Store) Counts() (buildings, streets int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buildings), len(s.streets)
}

// rebuildLocked regenerates both flat views from the keyed maps. Callers must
// hold the write lock. A full rebuild rather than an incremental patch keeps
// the views trivially consistent with the maps.
func (s *Store) rebuildLocked() {
	bids := make([]int64, 0, len(s.buildings))
	for id := range s.buildings {
		bids = append(bids, id)
	}
	slices.Sort(bids)

	bview := make([]Building, 0, len(bids))
	for _, id := range bids {
		bview = append(bview, s.buildings[id])
	}
	s.buildingView = bview

	sids := make([]int64, 0, len(s.streets))
	for id := range s.streets {
		sids = append(sids, id)
	}
	slices.Sort(sids)

	names := make([]string, 0, len(sids))
	for _, id := range sids {
		names = append(names, s.streets[id].Name())
	}
	s.nameView = names
}
