package zone

import (
	"sync"

	"github.com/google/uuid"
)

// Store owns the live zone list. All mutation happens through its entry
// points (replace-all, reconcile-merge, per-field update) under one lock;
// readers get deep-copied snapshots, never live references.
type Store struct {
	mu    sync.RWMutex
	zones []Zone
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceAll swaps in a freshly built zone list, assigning a stable uid to
// every zone that lacks one. Prior zones and their history are discarded by
// the caller (tracker reset, evidence reset); the store only swaps the list.
func (s *Store) ReplaceAll(zones []Zone) {
	fresh := make([]Zone, 0, len(zones))
	for _, z := range zones {
		c := z.clone()
		if c.UID == uuid.Nil {
			c.UID = uuid.New()
		}
		fresh = append(fresh, c)
	}

	s.mu.Lock()
	s.zones = fresh
	s.mu.Unlock()
}

// ReconcileWith merges fresh candidates into the current list (drift drop +
// centroid dedup) and swaps the result in atomically. Newly added zones get
// a uid; retained zones keep theirs.
func (s *Store) ReconcileWith(candidates []Zone, sampler ColorSampler) ReconcileResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, res := Reconcile(s.zones, candidates, sampler)
	for i := range merged {
		if merged[i].UID == uuid.Nil {
			merged[i].UID = uuid.New()
		}
	}
	s.zones = merged
	return res
}

// Snapshot returns a deep copy of the zone list.
func (s *Store) Snapshot() []Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z.clone())
	}
	return out
}

// Len returns the current zone count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones)
}

// At returns a copy of the zone at idx. The second return is false when idx
// is out of bounds (a concurrent rebuild may have shrunk the list).
func (s *Store) At(idx int) (Zone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx < 0 || idx >= len(s.zones) {
		return Zone{}, false
	}
	return s.zones[idx].clone(), true
}

// SetCropPath records the saved crop file for the zone at idx. Out-of-range
// indices are ignored.
func (s *Store) SetCropPath(idx int, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.zones) {
		return
	}
	s.zones[idx].CropPath = path
}

// ApplySearchResults merges price-lookup results into zones by product
// label. Zones sharing a label share results. Labels absent from the map are
// left untouched, so a failed lookup never clears previous results.
func (s *Store) ApplySearchResults(byLabel map[string][]SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.zones {
		results, ok := byLabel[s.zones[i].Label]
		if !ok {
			continue
		}
		copied := make([]SearchResult, len(results))
		copy(copied, results)
		s.zones[i].SearchResults = copied
	}
}
