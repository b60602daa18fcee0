// Package subscription holds the set of chats that receive broadcasts.
package subscription

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"BistSentinel/internal/metrics"
)

// ErrPersistence is returned when the subscriber set could not be written.
var ErrPersistence = errors.New("subscriber store write failed")

// Registry is a mutex-guarded subscriber set backed by a Store.
// The in-memory set only changes after the store accepted the new set.
type Registry struct {
	mu      sync.Mutex
	ids     map[int64]struct{}
	store   Store
	metrics *metrics.Metrics
}

// NewRegistry loads the current set from store. m may be nil.
func NewRegistry(store Store, m *metrics.Metrics) (*Registry, error) {
	ids, err := store.Load()
	if err != nil {
		return nil, err
	}
	r := &Registry{ids: make(map[int64]struct{}, len(ids)), store: store, metrics: m}
	for _, id := range ids {
		r.ids[id] = struct{}{}
	}
	m.SetSubscribers(len(r.ids))
	log.Printf("[INFO] loaded %d subscribers", len(r.ids))
	return r, nil
}

// Subscribe adds id. It reports false if id was already present.
func (r *Registry) Subscribe(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[id]; ok {
		return false, nil
	}
	candidate := append(r.snapshot(), id)
	if err := r.store.Save(candidate); err != nil {
		return false, fmt.Errorf("%w: subscribe %d: %v", ErrPersistence, id, err)
	}
	r.ids[id] = struct{}{}
	r.metrics.SetSubscribers(len(r.ids))
	return true, nil
}

// Unsubscribe removes id. It reports false if id was not present.
func (r *Registry) Unsubscribe(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[id]; !ok {
		return false, nil
	}
	candidate := make([]int64, 0, len(r.ids)-1)
	for other := range r.ids {
		if other != id {
			candidate = append(candidate, other)
		}
	}
	if err := r.store.Save(candidate); err != nil {
		return false, fmt.Errorf("%w: unsubscribe %d: %v", ErrPersistence, id, err)
	}
	delete(r.ids, id)
	r.metrics.SetSubscribers(len(r.ids))
	return true, nil
}

// List returns the subscribers in ascending order.
func (r *Registry) List() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// Contains reports whether id is subscribed.
func (r *Registry) Contains(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

func (r *Registry) snapshot() []int64 {
	out := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	return out
}
