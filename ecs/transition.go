package ecs

// attach makes sure h's entity carries component id and returns the pool it
// ends up in. h is refreshed to the entity's new location.
func (r *Registry) attach(h *Handle, id ComponentID) (*Pool, bool) {
	r.assertNotIterating("AddComponent")

	if !r.universe.valid(id) {
		fatalf(r.log, ErrInvalidComponent, "component id %d is not registered", id)
	}
	src, ok := r.resolve(h)
	if !ok {
		return nil, false
	}
	if src.mask.Has(id) {
		return src, true
	}

	mask := src.mask
	mask.set(id)
	hashes := withHash(src.typeHashes, r.universe.infos[id].typeHash)
	dst := r.poolFor(combineTypeHashes(hashes), mask, hashes)

	r.transition(h, src, dst, id)
	return dst, true
}

// detach removes component id from h's entity if it has it.
func (r *Registry) detach(h *Handle, id ComponentID) {
	r.assertNotIterating("RemoveComponent")

	if !r.universe.valid(id) {
		return
	}
	src, ok := r.resolve(h)
	if !ok || !src.mask.Has(id) {
		return
	}

	mask := src.mask
	mask.unset(id)
	hashes := withoutHash(src.typeHashes, r.universe.infos[id].typeHash)
	dst := r.poolFor(combineTypeHashes(hashes), mask, hashes)

	r.transition(h, src, dst, id)
}

// transition moves h's entity from src to dst. Every component dst shares
// with src is copied; changed is left at its zero value in dst (when it is
// being added) or dropped (when it is being removed). Both the moved entity
// and any entity src swapped into the vacated slot get remap entries, and h
// is replaced by the entity's new handle.
func (r *Registry) transition(h *Handle, src, dst *Pool, changed ComponentID) {
	moved := Handle{
		Slot:       uint32(dst.size),
		Generation: h.Generation,
		Archetype:  dst.key,
	}
	dst.createEntityFromMask(moved)
	if dst.generations[moved.Slot] != moved.Generation {
		fatalf(r.log, ErrInvariantViolation, "new slot %d does not hold generation %d", moved.Slot, moved.Generation)
	}

	for _, id := range dst.ids {
		if id == changed {
			continue
		}
		if !dst.columns[id].copyFrom(src.columns[id], int(h.Slot), int(moved.Slot)) {
			fatalf(r.log, ErrInvariantViolation, "column %s differs between pools", r.universe.Name(id))
		}
	}

	out := src.removeEntity(*h)
	if !out.Success {
		fatalf(r.log, ErrInvariantViolation, "resolved entity %d could not be removed from its pool", h.Generation)
	}
	r.recordRemoval(out, src.key)
	r.remaps.Put(moved.Generation, moved)

	*h = moved
}
