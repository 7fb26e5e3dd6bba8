package importer

import (
	"sync"
	"time"

	"github.com/yairfalse/apidrift/pkg/types"
)

// Registry is the locally known list of collections. It holds at most one
// entry per collection id.
type Registry struct {
	mu    sync.RWMutex
	items []types.Collection
	index map[string]int
	now   func() time.Time
}

// NewRegistry creates a registry seeded with initial collections
func NewRegistry(initial ...types.Collection) *Registry {
	r := &Registry{
		index: make(map[string]int),
		now:   time.Now,
	}
	for _, c := range initial {
		r.Upsert(c)
	}
	return r
}

// Upsert adds c, or updates the existing entry with the same id in place.
// It reports whether a new entry was created.
func (r *Registry) Upsert(c types.Collection) bool {
	if c.ID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c.LastSeen.IsZero() {
		c.LastSeen = types.NewTimestamp(r.now().UTC())
	}

	if i, ok := r.index[c.ID]; ok {
		existing := &r.items[i]
		if c.Name != "" {
			existing.Name = c.Name
		}
		if c.UserID != "" {
			existing.UserID = c.UserID
		}
		if existing.FirstSeen.IsZero() {
			existing.FirstSeen = c.FirstSeen
		}
		existing.LastSeen = c.LastSeen
		return false
	}

	if c.FirstSeen.IsZero() {
		c.FirstSeen = c.LastSeen
	}
	r.index[c.ID] = len(r.items)
	r.items = append(r.items, c)
	return true
}

// Get returns the collection with id
func (r *Registry) Get(id string) (types.Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return types.Collection{}, false
	}
	return r.items[i], true
}

// List returns the collections in insertion order
func (r *Registry) List() []types.Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.Collection(nil), r.items...)
}

// Len returns the number of known collections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
