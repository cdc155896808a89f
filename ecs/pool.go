package ecs

// Pool is the dense, columnar storage for every entity of one archetype.
//
// Slots 0..Len()-1 are all occupied; removal moves the last entity into the
// freed slot, so slot indices are not stable. A pool is created the first
// time its archetype is needed and lives as long as its Registry.
type Pool struct {
	key         ArchetypeKey
	mask        Mask
	ids         []ComponentID // live components, ascending
	typeHashes  []uint64
	columns     []column // indexed by ComponentID, nil when not in the archetype
	generations []uint64
	size        int
	universe    *Universe
	log         Logger
}

// RemovalOutcome reports what a pool removal did. SwappedGeneration and
// SwappedSlot are only meaningful when WasSwapped is true: they name the entity
// that moved into the freed slot and that slot.
type RemovalOutcome struct {
	Success           bool
	WasSwapped        bool
	SwappedGeneration uint64
	SwappedSlot       uint32
}

func newPool(u *Universe, key ArchetypeKey, mask Mask, typeHashes []uint64, reserve int, log Logger) *Pool {
	p := &Pool{
		key:        key,
		mask:       mask,
		ids:        mask.IDs(),
		typeHashes: typeHashes,
		columns:    make([]column, u.Len()),
		universe:   u,
		log:        log,
	}

	for _, id := range p.ids {
		p.columns[id] = u.infos[id].newColumn()
		if reserve > 0 {
			p.columns[id].reserve(reserve)
		}
	}
	if reserve > 0 {
		p.generations = make([]uint64, 0, reserve)
	}

	return p
}

// Key returns the pool's archetype key.
func (p *Pool) Key() ArchetypeKey {
	return p.key
}

// Mask returns the pool's archetype.
func (p *Pool) Mask() Mask {
	return p.mask
}

// ComponentIDs returns the ids of the pool's components in ascending order.
func (p *Pool) ComponentIDs() []ComponentID {
	return p.ids
}

// Len returns the number of live entities in the pool.
func (p *Pool) Len() int {
	return p.size
}

// HasComponent reports whether the archetype includes id.
func (p *Pool) HasComponent(id ComponentID) bool {
	return p.mask.Has(id)
}

// HasComponents reports whether the archetype includes all of ids.
func (p *Pool) HasComponents(ids ...ComponentID) bool {
	return p.mask.Contains(MaskOf(ids...))
}

// IsValid reports whether h's cached slot currently holds h's entity.
func (p *Pool) IsValid(h Handle) bool {
	if h.Dead {
		return false
	}
	if int(h.Slot) >= p.size {
		return false
	}
	return p.generations[h.Slot] == h.Generation
}

// HandleAt returns a fresh handle for the entity in slot.
func (p *Pool) HandleAt(slot int) Handle {
	return Handle{
		Slot:       uint32(slot),
		Generation: p.generations[slot],
		Archetype:  p.key,
	}
}

// ForEach calls fn with a handle for every entity in slot order.
func (p *Pool) ForEach(fn func(Handle)) {
	for i := 0; i < p.size; i++ {
		fn(p.HandleAt(i))
	}
}

// Get returns a pointer to component id of h's entity, or nil.
func (p *Pool) Get(h Handle, id ComponentID) any {
	if !p.mask.Has(id) || !p.IsValid(h) {
		return nil
	}
	return p.columns[id].get(int(h.Slot))
}

func (p *Pool) checkAppend(expected Handle) {
	if int(expected.Slot) != p.size {
		fatalf(p.log, ErrInvariantViolation, "unexpected entity slot %d, pool size is %d", expected.Slot, p.size)
	}
	if len(p.generations) != p.size {
		fatalf(p.log, ErrInvariantViolation, "generation column has %d entries, pool size is %d", len(p.generations), p.size)
	}
}

// createEntity appends one entity whose component values are given in the
// same order as ids. ids must be exactly the pool's archetype.
func (p *Pool) createEntity(expected Handle, ids []ComponentID, values []any) {
	p.checkAppend(expected)
	if len(ids) != len(p.ids) {
		fatalf(p.log, ErrInvariantViolation, "pool needs %d components, got %d", len(p.ids), len(ids))
	}

	for i, id := range ids {
		if p.columns[id] == nil || !p.columns[id].appendValue(values[i]) {
			fatalf(p.log, ErrInvariantViolation, "value %T does not belong in column %s", values[i], p.universe.Name(id))
		}
	}
	p.generations = append(p.generations, expected.Generation)
	p.size++
}

// createEntityFromMask appends one entity with zero-valued components.
func (p *Pool) createEntityFromMask(expected Handle) {
	p.checkAppend(expected)

	for _, id := range p.ids {
		p.columns[id].appendZero()
	}
	p.generations = append(p.generations, expected.Generation)
	p.size++
}

// removeEntity swap-removes h's entity. When another entity is moved into the
// freed slot the outcome says which one, so its handles can be remapped. Only
// the Registry calls it, after the guard check and before writing the remap.
func (p *Pool) removeEntity(h Handle) RemovalOutcome {
	var out RemovalOutcome
	if p.size == 0 || !p.IsValid(h) {
		return out
	}

	slot := int(h.Slot)
	last := p.size - 1

	out.Success = true
	if slot < last {
		out.WasSwapped = true
		out.SwappedGeneration = p.generations[last]
		out.SwappedSlot = h.Slot
	}

	for _, id := range p.ids {
		p.columns[id].swapRemove(slot)
	}
	p.generations[slot] = p.generations[last]
	p.generations = p.generations[:last]
	p.size--

	return out
}

// typedColumnOf returns the column for id as a *typedColumn[T]. A mismatch
// means the id was routed to the wrong column.
func typedColumnOf[T any](p *Pool, id ComponentID) *typedColumn[T] {
	col, ok := p.columns[id].(*typedColumn[T])
	if !ok {
		fatalf(p.log, ErrInvariantViolation, "column %s is not of the requested type", p.universe.Name(id))
	}
	return col
}

// InPool returns a pointer to h's component in p, or nil if the archetype
// lacks the component or h is not valid in p.
func (c Component[T]) InPool(p *Pool, h Handle) *T {
	if !p.mask.Has(c.id) || !p.IsValid(h) {
		return nil
	}
	return &typedColumnOf[T](p, c.id).values[h.Slot]
}
