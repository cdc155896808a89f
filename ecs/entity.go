package ecs

// Handle is a copyable reference to an entity.
//
// Generation is the entity's identity: it is assigned once at creation, never
// reused, and survives every move between pools. Slot and Archetype only cache
// where the entity lived when the handle was last refreshed and go stale when
// the entity or a neighbour is relocated. Registry operations take a *Handle
// so they can refresh a stale cache in place. Dead is set once the handle is
// known to refer to a removed entity and is never cleared.
type Handle struct {
	Slot       uint32
	Generation uint64
	Archetype  ArchetypeKey
	Dead       bool
}

// Equal reports whether both handles refer to the same entity.
func (h Handle) Equal(other Handle) bool {
	return h.Generation == other.Generation
}

// identical compares the cached location as well as the generation, ignoring
// Dead.
func (h Handle) identical(other Handle) bool {
	return h.Slot == other.Slot &&
		h.Generation == other.Generation &&
		h.Archetype == other.Archetype
}
