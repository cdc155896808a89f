package ecs

import "github.com/kamstrup/intmap"

// Commands buffers structural changes so they can be requested while the
// registry is being iterated and applied once iteration is over.
type Commands struct {
	creates  [][]any
	removes  []Handle
	adds     []addComponentCommand
	detaches []removeComponentCommand
	defers   []func()
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{}
}

type addComponentCommand struct {
	entity    Handle
	component any
}

type removeComponentCommand struct {
	entity Handle
	id     ComponentID
}

// Defer queues a function to run at the end of Flush.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// CreateEntity queues the creation of an entity with the given components.
func (c *Commands) CreateEntity(components ...any) {
	c.creates = append(c.creates, components)
}

// RemoveEntity queues the removal of an entity.
func (c *Commands) RemoveEntity(entity Handle) {
	c.removes = append(c.removes, entity)
}

// AddComponent queues adding (or overwriting) a component.
func (c *Commands) AddComponent(entity Handle, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues removing a component.
func (c *Commands) RemoveComponent(entity Handle, id ComponentID) {
	c.detaches = append(c.detaches, removeComponentCommand{
		entity: entity,
		id:     id,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.creates) + len(c.removes) + len(c.adds) + len(c.detaches) + len(c.defers)
}

// Flush applies the queued operations to r and resets the buffer. Entity
// removals run first; component changes aimed at an entity removed in the
// same flush are skipped. Returns the handles of the created entities.
func (c *Commands) Flush(r *Registry) []Handle {
	removed := intmap.NewSet[uint64](len(c.removes))

	for _, h := range c.removes {
		r.RemoveEntity(&h)
		removed.Add(h.Generation)
	}

	for _, cmd := range c.detaches {
		if !removed.Has(cmd.entity.Generation) {
			r.RemoveComponent(&cmd.entity, cmd.id)
		}
	}

	for _, cmd := range c.adds {
		if !removed.Has(cmd.entity.Generation) {
			r.AddComponent(&cmd.entity, cmd.component)
		}
	}

	var created []Handle
	if len(c.creates) > 0 {
		created = make([]Handle, 0, len(c.creates))
	}
	for _, components := range c.creates {
		created = append(created, r.CreateEntityWith(components...))
	}

	for _, fn := range c.defers {
		fn()
	}

	c.reset()
	return created
}

func (c *Commands) reset() {
	c.creates = c.creates[:0]
	c.removes = c.removes[:0]
	c.adds = c.adds[:0]
	c.detaches = c.detaches[:0]
	c.defers = c.defers[:0]
}
