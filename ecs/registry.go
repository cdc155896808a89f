package ecs

import (
	"github.com/kamstrup/intmap"
)

// Registry owns every pool, the generation counter, and the remapping table
// that lets stale handles find their entity after it was relocated.
//
// A Registry is not safe for concurrent use. Structural changes (creating or
// removing entities, adding or removing components) are fatal while one of
// the iteration methods is running; queue them on a Commands buffer instead.
type Registry struct {
	universe  *Universe
	pools     []*Pool
	poolIndex *intmap.Map[ArchetypeKey, int]
	// remaps holds the latest known handle of every entity that was ever
	// relocated, keyed by generation. Entries are overwritten, never deleted.
	remaps         *intmap.Map[uint64, Handle]
	nextGeneration uint64
	iterating      bool
	reserve        int
	log            Logger
}

// NewRegistry creates a store for the components registered in u and seals u.
func NewRegistry(u *Universe, opts ...Option) *Registry {
	u.sealed = true

	r := &Registry{
		universe:       u,
		poolIndex:      intmap.New[ArchetypeKey, int](64),
		remaps:         intmap.New[uint64, Handle](256),
		nextGeneration: 1, // the zero Handle never names a live entity
		log:            defaultLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Universe returns the component universe the registry was built from.
func (r *Registry) Universe() *Universe {
	return r.universe
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	n := 0
	for _, p := range r.pools {
		n += p.size
	}
	return n
}

// PoolCount returns the number of pools created so far, empty ones included.
func (r *Registry) PoolCount() int {
	return len(r.pools)
}

func (r *Registry) lookupPool(key ArchetypeKey) *Pool {
	idx, ok := r.poolIndex.Get(key)
	if !ok {
		return nil
	}
	return r.pools[idx]
}

// poolFor returns the pool for an archetype, creating it if needed.
func (r *Registry) poolFor(key ArchetypeKey, mask Mask, typeHashes []uint64) *Pool {
	if p := r.lookupPool(key); p != nil {
		if p.mask != mask {
			fatalf(r.log, ErrInvariantViolation, "archetype key %#x maps to two component sets", uint64(key))
		}
		return p
	}

	p := newPool(r.universe, key, mask, typeHashes, r.reserve, r.log)
	r.poolIndex.Put(key, len(r.pools))
	r.pools = append(r.pools, p)
	r.log.Debug("created pool", "key", uint64(key), "components", mask.Count())
	return p
}

// archetypeOf validates ids and returns their mask, hashes, and key.
func (r *Registry) archetypeOf(ids []ComponentID) (Mask, []uint64, ArchetypeKey) {
	var mask Mask
	for _, id := range ids {
		if !r.universe.valid(id) {
			fatalf(r.log, ErrInvalidComponent, "component id %d is not registered", id)
		}
		mask.set(id)
	}
	hashes := r.universe.hashesOf(mask)
	return mask, hashes, combineTypeHashes(hashes)
}

func (r *Registry) allocateGeneration() uint64 {
	g := r.nextGeneration
	r.nextGeneration++
	return g
}

func (r *Registry) assertNotIterating(op string) {
	if r.iterating {
		fatalf(r.log, ErrMutationDuringIteration, "%s called during iteration", op)
	}
}

// beginIteration sets the reentrancy guard and returns the function that
// restores it. Use as defer r.beginIteration()().
func (r *Registry) beginIteration() func() {
	prev := r.iterating
	r.iterating = true
	return func() {
		r.iterating = prev
	}
}

// Iterating reports whether an iteration is in progress.
func (r *Registry) Iterating() bool {
	return r.iterating
}

// CreateEntity creates an entity whose components are zero values.
func (r *Registry) CreateEntity(ids ...ComponentID) Handle {
	r.assertNotIterating("CreateEntity")

	mask, hashes, key := r.archetypeOf(ids)
	p := r.poolFor(key, mask, hashes)

	h := Handle{
		Slot:       uint32(p.size),
		Generation: r.allocateGeneration(),
		Archetype:  key,
	}
	p.createEntityFromMask(h)
	return h
}

// CreateEntityWith creates an entity from component values. Values may be
// given as T or *T, in any order, but each type at most once.
func (r *Registry) CreateEntityWith(values ...any) Handle {
	r.assertNotIterating("CreateEntityWith")

	ids := make([]ComponentID, len(values))
	var seen Mask
	for i, v := range values {
		id, ok := r.universe.idOfValue(v)
		if !ok {
			fatalf(r.log, ErrInvalidComponent, "component type %T is not registered", v)
		}
		if seen.Has(id) {
			fatalf(r.log, ErrInvalidComponent, "component type %T given twice", v)
		}
		seen.set(id)
		ids[i] = id
	}

	mask, hashes, key := r.archetypeOf(ids)
	p := r.poolFor(key, mask, hashes)

	h := Handle{
		Slot:       uint32(p.size),
		Generation: r.allocateGeneration(),
		Archetype:  key,
	}
	p.createEntity(h, ids, values)
	return h
}

// RemoveEntity removes h's entity and marks h dead. Removing a dead or
// unknown entity does nothing.
func (r *Registry) RemoveEntity(h *Handle) {
	r.assertNotIterating("RemoveEntity")

	p, ok := r.resolve(h)
	if !ok {
		return
	}

	out := p.removeEntity(*h)
	if out.Success {
		h.Dead = true
	}
	r.recordRemoval(out, p.key)
}

// recordRemoval remaps the entity a pool moved to fill a freed slot.
func (r *Registry) recordRemoval(out RemovalOutcome, key ArchetypeKey) {
	if !out.Success || !out.WasSwapped {
		return
	}
	r.remaps.Put(out.SwappedGeneration, Handle{
		Slot:       out.SwappedSlot,
		Generation: out.SwappedGeneration,
		Archetype:  key,
	})
}

// Alive reports whether h refers to a live entity, refreshing h if needed.
func (r *Registry) Alive(h *Handle) bool {
	_, ok := r.resolve(h)
	return ok
}

// HasComponent reports whether h's entity currently carries id.
func (r *Registry) HasComponent(h *Handle, id ComponentID) bool {
	p, ok := r.resolve(h)
	return ok && p.mask.Has(id)
}

// GetComponent returns a pointer to h's component id, or nil.
func (r *Registry) GetComponent(h *Handle, id ComponentID) any {
	p, ok := r.resolve(h)
	if !ok {
		return nil
	}
	return p.Get(*h, id)
}

// AddComponent adds value to h's entity, moving it to the matching pool. If
// the entity already has a component of that type it is overwritten.
func (r *Registry) AddComponent(h *Handle, value any) {
	id, ok := r.universe.idOfValue(value)
	if !ok {
		fatalf(r.log, ErrInvalidComponent, "component type %T is not registered", value)
	}

	p, ok := r.attach(h, id)
	if !ok {
		return
	}
	if !p.columns[id].set(int(h.Slot), value) {
		fatalf(r.log, ErrInvariantViolation, "value %T does not belong in column %s", value, r.universe.Name(id))
	}
}

// RemoveComponent removes component id from h's entity. It does nothing if
// the entity is dead or lacks the component.
func (r *Registry) RemoveComponent(h *Handle, id ComponentID) {
	r.detach(h, id)
}

// GetPool returns the pool whose archetype is exactly ids, or nil if that
// archetype was never used. Its Len counts only entities of that exact
// archetype.
func (r *Registry) GetPool(ids ...ComponentID) *Pool {
	mask, _, key := r.archetypeOf(ids)
	p := r.lookupPool(key)
	if p == nil || p.mask != mask {
		return nil
	}
	return p
}

// Get returns a pointer to h's component, or nil if the entity is dead or
// lacks it.
func (c Component[T]) Get(r *Registry, h *Handle) *T {
	p, ok := r.resolve(h)
	if !ok {
		return nil
	}
	return c.InPool(p, *h)
}

// Set overwrites h's component. It does nothing if the entity is dead or
// lacks the component.
func (c Component[T]) Set(r *Registry, h *Handle, value T) {
	if ptr := c.Get(r, h); ptr != nil {
		*ptr = value
	}
}

// Has reports whether h's entity carries the component.
func (c Component[T]) Has(r *Registry, h *Handle) bool {
	return r.HasComponent(h, c.id)
}

// Add sets the component on h's entity, moving it to a new pool if it did
// not have the component yet.
func (c Component[T]) Add(r *Registry, h *Handle, value T) {
	p, ok := r.attach(h, c.id)
	if !ok {
		return
	}
	typedColumnOf[T](p, c.id).values[h.Slot] = value
}

// Remove removes the component from h's entity.
func (c Component[T]) Remove(r *Registry, h *Handle) {
	r.detach(h, c.id)
}
