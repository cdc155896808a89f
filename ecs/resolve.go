package ecs

// resolve finds the pool holding h's entity and refreshes h in place.
//
// The cached slot and archetype are tried first. When they no longer hold the
// entity the remapping table is consulted by generation; an entry that equals
// h itself means the entity was relocated and later removed from that slot,
// so both h and the entry are marked dead. Any other entry replaces h and the
// lookup repeats, which ends after at most one hop because the replaced h is
// then identical to its own table entry.
func (r *Registry) resolve(h *Handle) (*Pool, bool) {
	for {
		if h.Dead {
			return nil, false
		}

		if p := r.lookupPool(h.Archetype); p != nil && p.IsValid(*h) {
			return p, true
		}

		next, ok := r.remaps.Get(h.Generation)
		if !ok {
			return nil, false
		}

		if next.identical(*h) {
			h.Dead = true
			if !next.Dead {
				next.Dead = true
				r.remaps.Put(h.Generation, next)
				r.log.Debug("handle refers to a removed entity", "generation", h.Generation)
			}
			return nil, false
		}

		*h = next
	}
}
