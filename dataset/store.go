package dataset

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Store is the in-memory mapping from dataset id to dataset.
//
// Reads are lock-free against an immutable snapshot. Writers serialize on a
// mutex, copy the snapshot, apply their change and publish the copy, so a
// query that already holds a *Dataset keeps a consistent view while the
// dataset is removed or replaced.
type Store struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[map[string]*Dataset]
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	empty := make(map[string]*Dataset)
	s.snapshot.Store(&empty)
	return s
}

func (s *Store) current() map[string]*Dataset {
	return *s.snapshot.Load()
}

// Lookup returns the dataset with the given id.
func (s *Store) Lookup(id string) (*Dataset, error) {
	ds, ok := s.current()[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return ds, nil
}

// Has reports whether id is in the store.
func (s *Store) Has(id string) bool {
	_, ok := s.current()[id]
	return ok
}

// Add publishes ds. It fails if the id is already taken.
func (s *Store) Add(ds *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current()
	if _, ok := cur[ds.ID]; ok {
		return fmt.Errorf("%w: %q", ErrExists, ds.ID)
	}
	s.publish(cur, func(next map[string]*Dataset) { next[ds.ID] = ds })
	return nil
}

// Remove unpublishes the dataset with the given id and returns it.
func (s *Store) Remove(id string) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current()
	ds, ok := cur[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	s.publish(cur, func(next map[string]*Dataset) { delete(next, id) })
	return ds, nil
}

// publish copies cur, applies mutate and swaps the copy in. Callers hold mu.
func (s *Store) publish(cur map[string]*Dataset, mutate func(map[string]*Dataset)) {
	next := make(map[string]*Dataset, len(cur)+1)
	for id, ds := range cur {
		next[id] = ds
	}
	mutate(next)
	s.snapshot.Store(&next)
}

// IDs returns the ids of all datasets, sorted.
func (s *Store) IDs() []string {
	cur := s.current()
	ids := make([]string, 0, len(cur))
	for id := range cur {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns a summary of every dataset, sorted by id.
func (s *Store) List() []Info {
	cur := s.current()
	infos := make([]Info, 0, len(cur))
	for _, ds := range cur {
		infos = append(infos, ds.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Len returns the number of datasets.
func (s *Store) Len() int {
	return len(s.current())
}
