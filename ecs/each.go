package ecs

// Pool-level iteration. These visit p's entities in slot order and do nothing
// if p lacks one of the requested components. They do not touch the registry's
// iteration guard; use the Registry-level ForEach functions for that.

// PoolEach1 calls fn for every entity in p.
func PoolEach1[A any](p *Pool, a Component[A], fn func(Handle, *A)) {
	if !p.HasComponents(a.id) {
		return
	}
	ca := typedColumnOf[A](p, a.id)
	for i := 0; i < p.size; i++ {
		fn(p.HandleAt(i), &ca.values[i])
	}
}

// PoolEach2 calls fn for every entity in p.
func PoolEach2[A, B any](p *Pool, a Component[A], b Component[B], fn func(Handle, *A, *B)) {
	if !p.HasComponents(a.id, b.id) {
		return
	}
	ca := typedColumnOf[A](p, a.id)
	cb := typedColumnOf[B](p, b.id)
	for i := 0; i < p.size; i++ {
		fn(p.HandleAt(i), &ca.values[i], &cb.values[i])
	}
}

// PoolEach3 calls fn for every entity in p.
func PoolEach3[A, B, C any](p *Pool, a Component[A], b Component[B], c Component[C], fn func(Handle, *A, *B, *C)) {
	if !p.HasComponents(a.id, b.id, c.id) {
		return
	}
	ca := typedColumnOf[A](p, a.id)
	cb := typedColumnOf[B](p, b.id)
	cc := typedColumnOf[C](p, c.id)
	for i := 0; i < p.size; i++ {
		fn(p.HandleAt(i), &ca.values[i], &cb.values[i], &cc.values[i])
	}
}

// PoolEachUntil1 is PoolEach1 that stops at the first fn returning true and
// reports whether it stopped.
func PoolEachUntil1[A any](p *Pool, a Component[A], fn func(Handle, *A) bool) bool {
	if !p.HasComponents(a.id) {
		return false
	}
	ca := typedColumnOf[A](p, a.id)
	for i := 0; i < p.size; i++ {
		if fn(p.HandleAt(i), &ca.values[i]) {
			return true
		}
	}
	return false
}

// PoolEachUntil2 is the two-component PoolEachUntil1.
func PoolEachUntil2[A, B any](p *Pool, a Component[A], b Component[B], fn func(Handle, *A, *B) bool) bool {
	if !p.HasComponents(a.id, b.id) {
		return false
	}
	ca := typedColumnOf[A](p, a.id)
	cb := typedColumnOf[B](p, b.id)
	for i := 0; i < p.size; i++ {
		if fn(p.HandleAt(i), &ca.values[i], &cb.values[i]) {
			return true
		}
	}
	return false
}

// PoolEachUntil3 is the three-component PoolEachUntil1.
func PoolEachUntil3[A, B, C any](p *Pool, a Component[A], b Component[B], c Component[C], fn func(Handle, *A, *B, *C) bool) bool {
	if !p.HasComponents(a.id, b.id, c.id) {
		return false
	}
	ca := typedColumnOf[A](p, a.id)
	cb := typedColumnOf[B](p, b.id)
	cc := typedColumnOf[C](p, c.id)
	for i := 0; i < p.size; i++ {
		if fn(p.HandleAt(i), &ca.values[i], &cb.values[i], &cc.values[i]) {
			return true
		}
	}
	return false
}

// ForEach1 calls fn for every entity carrying A, pool by pool. Structural
// changes are fatal until it returns; Get and Set are fine.
func ForEach1[A any](r *Registry, a Component[A], fn func(Handle, *A)) {
	defer r.beginIteration()()
	want := MaskOf(a.id)
	for _, p := range r.pools {
		if p.mask.Contains(want) {
			PoolEach1(p, a, fn)
		}
	}
}

// ForEach2 calls fn for every entity carrying A and B.
func ForEach2[A, B any](r *Registry, a Component[A], b Component[B], fn func(Handle, *A, *B)) {
	defer r.beginIteration()()
	want := MaskOf(a.id, b.id)
	for _, p := range r.pools {
		if p.mask.Contains(want) {
			PoolEach2(p, a, b, fn)
		}
	}
}

// ForEach3 calls fn for every entity carrying A, B and C.
func ForEach3[A, B, C any](r *Registry, a Component[A], b Component[B], c Component[C], fn func(Handle, *A, *B, *C)) {
	defer r.beginIteration()()
	want := MaskOf(a.id, b.id, c.id)
	for _, p := range r.pools {
		if p.mask.Contains(want) {
			PoolEach3(p, a, b, c, fn)
		}
	}
}

// ForEachUntil1 is ForEach1 that stops at the first fn returning true. It
// reports whether it stopped early.
func ForEachUntil1[A any](r *Registry, a Component[A], fn func(Handle, *A) bool) bool {
	defer r.beginIteration()()
	want := MaskOf(a.id)
	for _, p := range r.pools {
		if p.mask.Contains(want) && PoolEachUntil1(p, a, fn) {
			return true
		}
	}
	return false
}

// ForEachUntil2 is the two-component ForEachUntil1.
func ForEachUntil2[A, B any](r *Registry, a Component[A], b Component[B], fn func(Handle, *A, *B) bool) bool {
	defer r.beginIteration()()
	want := MaskOf(a.id, b.id)
	for _, p := range r.pools {
		if p.mask.Contains(want) && PoolEachUntil2(p, a, b, fn) {
			return true
		}
	}
	return false
}

// ForEachUntil3 is the three-component ForEachUntil1.
func ForEachUntil3[A, B, C any](r *Registry, a Component[A], b Component[B], c Component[C], fn func(Handle, *A, *B, *C) bool) bool {
	defer r.beginIteration()()
	want := MaskOf(a.id, b.id, c.id)
	for _, p := range r.pools {
		if p.mask.Contains(want) && PoolEachUntil3(p, a, b, c, fn) {
			return true
		}
	}
	return false
}

// ForEachEntity calls fn with a handle for every live entity.
func (r *Registry) ForEachEntity(fn func(Handle)) {
	defer r.beginIteration()()
	for _, p := range r.pools {
		p.ForEach(fn)
	}
}

// ForEachPool calls fn for every non-empty pool.
func (r *Registry) ForEachPool(fn func(*Pool)) {
	defer r.beginIteration()()
	for _, p := range r.pools {
		if p.size == 0 {
			continue
		}
		fn(p)
	}
}
