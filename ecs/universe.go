package ecs

import (
	"reflect"
)

type componentInfo struct {
	id        ComponentID
	typ       reflect.Type
	typeHash  uint64
	newColumn func() column
}

// Universe is the closed, ordered set of component types a Registry can hold.
// Types are registered once, up front; creating a Registry seals the
// universe and any later registration is fatal.
type Universe struct {
	infos  []componentInfo
	byType map[reflect.Type]ComponentID
	sealed bool
}

// NewUniverse creates an empty component universe.
func NewUniverse() *Universe {
	return &Universe{
		byType: make(map[reflect.Type]ComponentID),
	}
}

// Component is the typed accessor for one registered component type. It is
// obtained from RegisterComponent and carries the type's index, so typed
// access never needs to look the type up.
type Component[T any] struct {
	id ComponentID
}

// ID returns the component's index in its universe.
func (c Component[T]) ID() ComponentID {
	return c.id
}

// RegisterComponent adds T to the universe and returns its accessor.
// Registering the same type twice returns the existing accessor.
func RegisterComponent[T any](u *Universe) Component[T] {
	t := reflect.TypeFor[T]()
	if u.sealed {
		fatalf(defaultLogger, ErrUniverseSealed, "cannot register %s after a registry was created", t)
	}
	if id, ok := u.byType[t]; ok {
		return Component[T]{id: id}
	}

	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		fatalf(defaultLogger, ErrInvalidComponent, "components cannot be pointers, maps, channels, or functions: %s", t)
	}
	if len(u.infos) >= MaxComponentTypes {
		fatalf(defaultLogger, ErrInvalidComponent, "universe is full (%d types), cannot register %s", MaxComponentTypes, t)
	}

	id := ComponentID(len(u.infos))
	u.infos = append(u.infos, componentInfo{
		id:        id,
		typ:       t,
		typeHash:  typeId(t),
		newColumn: newColumn[T],
	})
	u.byType[t] = id
	return Component[T]{id: id}
}

// Len returns the number of registered component types.
func (u *Universe) Len() int {
	return len(u.infos)
}

// IDOf returns the index of a registered type.
func (u *Universe) IDOf(t reflect.Type) (ComponentID, bool) {
	id, ok := u.byType[t]
	return id, ok
}

// TypeOf returns the type registered at id, or nil.
func (u *Universe) TypeOf(id ComponentID) reflect.Type {
	if int(id) >= len(u.infos) {
		return nil
	}
	return u.infos[id].typ
}

// Name returns the type name registered at id.
func (u *Universe) Name(id ComponentID) string {
	if t := u.TypeOf(id); t != nil {
		return t.String()
	}
	return ""
}

// ComponentFor returns the accessor for T if it was registered.
func ComponentFor[T any](u *Universe) (Component[T], bool) {
	id, ok := u.byType[reflect.TypeFor[T]()]
	return Component[T]{id: id}, ok
}

func (u *Universe) valid(id ComponentID) bool {
	return int(id) < len(u.infos)
}

// idOfValue resolves the component id of a value, dereferencing pointers.
func (u *Universe) idOfValue(value any) (ComponentID, bool) {
	t := reflect.TypeOf(value)
	if t == nil {
		return 0, false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	id, ok := u.byType[t]
	return id, ok
}

// hashesOf returns the type hashes of the ids in m, in id order.
func (u *Universe) hashesOf(m Mask) []uint64 {
	ids := m.IDs()
	hashes := make([]uint64, len(ids))
	for i, id := range ids {
		hashes[i] = u.infos[id].typeHash
	}
	return hashes
}
