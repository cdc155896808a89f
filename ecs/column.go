package ecs

// column is a type-erased, densely packed slice of one component type. A pool
// keeps one column per live component, indexed by ComponentID.
type column interface {
	len() int
	reserve(n int)
	appendZero()
	appendValue(item any) bool
	// copyFrom overwrites slot to with src's slot from. It reports false if
	// src holds a different component type.
	copyFrom(src column, from, to int) bool
	// swapRemove moves the last value into slot i and shrinks by one.
	swapRemove(i int)
	get(i int) any
	set(i int, item any) bool
}

// typedColumn is the column implementation for components of type T.
type typedColumn[T any] struct {
	values []T
}

func newColumn[T any]() column {
	return &typedColumn[T]{}
}

func (c *typedColumn[T]) len() int {
	return len(c.values)
}

func (c *typedColumn[T]) reserve(n int) {
	if cap(c.values)-len(c.values) >= n {
		return
	}
	grown := make([]T, len(c.values), len(c.values)+n)
	copy(grown, c.values)
	c.values = grown
}

func (c *typedColumn[T]) appendZero() {
	var zero T
	c.values = append(c.values, zero)
}

// appendValue accepts either T or *T.
func (c *typedColumn[T]) appendValue(item any) bool {
	switch v := item.(type) {
	case T:
		c.values = append(c.values, v)
	case *T:
		c.values = append(c.values, *v)
	default:
		return false
	}
	return true
}

func (c *typedColumn[T]) copyFrom(src column, from, to int) bool {
	s, ok := src.(*typedColumn[T])
	if !ok {
		return false
	}
	c.values[to] = s.values[from]
	return true
}

func (c *typedColumn[T]) swapRemove(i int) {
	last := len(c.values) - 1
	if i < last {
		c.values[i] = c.values[last]
	}
	var zero T
	c.values[last] = zero // release references held by the popped slot
	c.values = c.values[:last]
}

// get returns a *T to the value in slot i.
func (c *typedColumn[T]) get(i int) any {
	return &c.values[i]
}

func (c *typedColumn[T]) set(i int, item any) bool {
	switch v := item.(type) {
	case T:
		c.values[i] = v
	case *T:
		c.values[i] = *v
	default:
		return false
	}
	return true
}
