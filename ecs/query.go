package ecs

import "iter"

// Query wraps a View and caches the pools it matches. The cache is rebuilt
// whenever the registry has created new pools since the last iteration.
type Query[T any] struct {
	view          *View[T]
	registry      *Registry
	cachedPools   []*Pool
	lastPoolCount int
}

// NewQuery creates a new Query with pool-level caching.
func NewQuery[T any](registry *Registry) *Query[T] {
	q := &Query[T]{}
	q.Init(registry)
	return q
}

// Init initializes or re-initializes the Query with a registry.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(registry *Registry) {
	q.view = NewView[T](registry)
	q.registry = registry
	q.cachedPools = nil
	q.lastPoolCount = -1
}

func (q *Query[T]) refresh() {
	if len(q.registry.pools) == q.lastPoolCount {
		return
	}
	q.cachedPools = q.cachedPools[:0]
	for _, p := range q.registry.pools {
		if q.view.matchesPool(p) {
			q.cachedPools = append(q.cachedPools, p)
		}
	}
	q.lastPoolCount = len(q.registry.pools)
}

// Pools returns the pools currently matched by the query.
func (q *Query[T]) Pools() []*Pool {
	q.refresh()
	return q.cachedPools
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	n := 0
	for _, p := range q.Pools() {
		n += p.size
	}
	return n
}

// Get returns a populated view struct for h, or nil.
func (q *Query[T]) Get(h *Handle) *T {
	return q.view.Get(h)
}

// Iter yields every matching entity and its components.
func (q *Query[T]) Iter() iter.Seq2[Handle, T] {
	q.refresh()
	return q.view.iterPools(q.cachedPools)
}

// Values is Iter without the handles.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range q.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}
