package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View reads entities through a struct of component pointers.
// The type T should be a struct whose fields are pointers to registered
// component types. Embedded fields are always required; named fields can be
// marked optional with the `ecs:"optional"` struct tag.
type View[T any] struct {
	registry    *Registry
	ids         []ComponentID
	optional    []bool
	fieldOffset []uintptr
	required    Mask
}

// NewView creates a new view for the given struct type.
func NewView[T any](registry *Registry) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		fatalf(registry.log, ErrInvalidComponent, "view type parameter must be a struct, got %s", structType)
	}

	v := &View[T]{
		registry:    registry,
		ids:         make([]ComponentID, 0, structType.NumField()),
		optional:    make([]bool, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			fatalf(registry.log, ErrInvalidComponent, "view field %s must be a pointer", field.Name)
		}

		id, ok := registry.universe.IDOf(field.Type.Elem())
		if !ok {
			fatalf(registry.log, ErrInvalidComponent, "view field %s: %s is not registered", field.Name, field.Type.Elem())
		}

		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				fatalf(registry.log, ErrInvalidComponent, "invalid ecs tag value %q (only \"optional\" is supported)", tag)
			}
		}

		v.ids = append(v.ids, id)
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		if !isOptional {
			v.required.set(id)
		}
	}

	return v
}

// matchesPool reports whether p carries every required component.
func (v *View[T]) matchesPool(p *Pool) bool {
	return p.mask.Contains(v.required)
}

// populate points the fields of *resultPtr at slot's components in p.
func (v *View[T]) populate(resultPtr unsafe.Pointer, p *Pool, slot int) bool {
	for i, id := range v.ids {
		fieldPtr := unsafe.Add(resultPtr, v.fieldOffset[i])

		if !p.mask.Has(id) {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		*(*unsafe.Pointer)(fieldPtr) = dataPointer(p.columns[id].get(slot))
	}
	return true
}

// Fill populates ptr with h's components, refreshing h. It returns false if
// the entity is dead or lacks a required component.
func (v *View[T]) Fill(h *Handle, ptr *T) bool {
	p, ok := v.registry.resolve(h)
	if !ok {
		return false
	}
	return v.populate(unsafe.Pointer(ptr), p, int(h.Slot))
}

// Get returns a populated view struct for h, or nil.
func (v *View[T]) Get(h *Handle) *T {
	var result T
	if !v.Fill(h, &result) {
		return nil
	}
	return &result
}

func (v *View[T]) iterPools(pools []*Pool) iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		defer v.registry.beginIteration()()

		var result T
		resultPtr := unsafe.Pointer(&result)

		for _, p := range pools {
			if !v.matchesPool(p) {
				continue
			}
			for slot := 0; slot < p.size; slot++ {
				v.populate(resultPtr, p, slot)
				if !yield(p.HandleAt(slot), result) {
					return
				}
			}
		}
	}
}

// Iter yields every entity that carries the view's required components.
// The registry's iteration guard is held while the loop body runs.
func (v *View[T]) Iter() iter.Seq2[Handle, T] {
	return v.iterPools(v.registry.pools)
}

// Values is Iter without the handles.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Create makes a new entity from the non-nil fields of data.
func (v *View[T]) Create(data T) Handle {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.ids))
	for i, id := range v.ids {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				fatalf(v.registry.log, ErrInvalidComponent, "required component %s is nil", v.registry.universe.Name(id))
			}
			continue
		}
		componentType := v.registry.universe.TypeOf(id)
		components = append(components, reflect.NewAt(componentType, componentPtr).Elem().Interface())
	}

	return v.registry.CreateEntityWith(components...)
}
