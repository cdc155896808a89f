package ecs_test

import (
	"testing"

	"github.com/plus3/archstore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntityWith(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(&Position{X: 3, Y: 4}, Name{Value: "Test Entity"})

	pos := c.Position.Get(registry, &h)
	require.NotNil(t, pos)
	assert.Equal(t, float32(3), pos.X)
	assert.Equal(t, float32(4), pos.Y)

	name := c.Name.Get(registry, &h)
	require.NotNil(t, name)
	assert.Equal(t, "Test Entity", name.Value)

	assert.Nil(t, c.Velocity.Get(registry, &h))
}

func TestCreateEntityDefaults(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntity(c.Position.ID(), c.Health.ID())

	assert.Equal(t, &Position{}, c.Position.Get(registry, &h))
	assert.Equal(t, &Health{}, c.Health.Get(registry, &h))
	assert.Nil(t, c.Velocity.Get(registry, &h))
}

func TestArchetypeKeyIgnoresOrder(t *testing.T) {
	registry, c := newTestRegistry()

	h1 := registry.CreateEntityWith(Position{}, Velocity{})
	h2 := registry.CreateEntityWith(Velocity{}, Position{})
	h3 := registry.CreateEntity(c.Velocity.ID(), c.Position.ID())

	assert.Equal(t, h1.Archetype, h2.Archetype)
	assert.Equal(t, h1.Archetype, h3.Archetype)
	assert.Equal(t, 1, registry.PoolCount())
	assert.Equal(t, 3, registry.GetPool(c.Position.ID(), c.Velocity.ID()).Len())
}

func TestGenerationsAreUnique(t *testing.T) {
	registry, c := newTestRegistry()

	seen := make(map[uint64]bool)
	for i := 0; i < 50; i++ {
		h := registry.CreateEntityWith(Position{X: float32(i)})
		assert.False(t, seen[h.Generation], "generation %d reused", h.Generation)
		seen[h.Generation] = true

		if i%3 == 0 {
			registry.RemoveEntity(&h)
		}
		if i%5 == 0 {
			other := registry.CreateEntity(c.Health.ID())
			assert.False(t, seen[other.Generation])
			seen[other.Generation] = true
		}
	}
}

func TestHandleEquality(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1})
	stale := h
	other := registry.CreateEntityWith(Position{X: 2})

	c.Velocity.Add(registry, &h, Velocity{DX: 1})

	assert.NotEqual(t, stale.Archetype, h.Archetype)
	assert.True(t, stale.Equal(h))
	assert.False(t, h.Equal(other))
}

func TestSwapRemoveRemapsMovedEntity(t *testing.T) {
	registry, c := newTestRegistry()

	h1 := registry.CreateEntityWith(Position{X: 1}, Velocity{DX: 0.1})
	h2 := registry.CreateEntityWith(Position{X: 2}, Velocity{DX: 0.2})
	h3 := registry.CreateEntityWith(Position{X: 3}, Velocity{DX: 0.3})
	staleH3 := h3

	registry.RemoveEntity(&h1)
	assert.True(t, h1.Dead)

	// h3 was the last entity and now lives in h1's old slot.
	pos := c.Position.Get(registry, &h3)
	require.NotNil(t, pos)
	assert.Equal(t, float32(3), pos.X)
	assert.Equal(t, uint32(0), h3.Slot)
	assert.True(t, staleH3.Equal(h3))

	vel := c.Velocity.Get(registry, &h2)
	require.NotNil(t, vel)
	assert.Equal(t, float32(0.2), vel.DX)
	assert.Equal(t, uint32(1), h2.Slot)

	assert.Equal(t, 1, registry.CollectStats().RemapCount)
}

func TestRemoveLastEntityDoesNotRemap(t *testing.T) {
	registry, c := newTestRegistry()

	h1 := registry.CreateEntityWith(Position{X: 1})
	h2 := registry.CreateEntityWith(Position{X: 2})

	registry.RemoveEntity(&h2)
	assert.Equal(t, 0, registry.CollectStats().RemapCount)

	registry.RemoveEntity(&h1)
	assert.Equal(t, 0, registry.CollectStats().RemapCount)
	assert.Equal(t, 0, registry.GetPool(c.Position.ID()).Len())
}

func TestRemovedEntityAccess(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1}, Health{Current: 10})
	keep := registry.CreateEntityWith(Position{X: 2}, Health{Current: 20})
	copyOfH := h

	registry.RemoveEntity(&h)
	assert.True(t, h.Dead)

	assert.Nil(t, c.Position.Get(registry, &h))
	assert.Nil(t, c.Position.Get(registry, &copyOfH))
	assert.False(t, registry.Alive(&copyOfH))

	// Removing again, through either copy, does nothing.
	registry.RemoveEntity(&h)
	registry.RemoveEntity(&copyOfH)
	assert.Equal(t, 1, registry.Len())

	c.Position.Set(registry, &copyOfH, Position{X: 99})
	assert.Equal(t, float32(2), c.Position.Get(registry, &keep).X)
}

func TestRelocatedThenRemovedEntityIsDead(t *testing.T) {
	registry, c := newTestRegistry()

	a := registry.CreateEntityWith(Position{X: 1})
	b := registry.CreateEntityWith(Position{X: 2})
	staleB := b

	// b moves into slot 0 and gets a remap entry.
	registry.RemoveEntity(&a)
	require.NotNil(t, c.Position.Get(registry, &b))

	// b is now the only entity, so removing it writes no new remap entry
	// and the next entity reuses its slot.
	registry.RemoveEntity(&b)
	other := registry.CreateEntityWith(Position{X: 3})

	assert.Nil(t, c.Position.Get(registry, &staleB))
	assert.True(t, staleB.Dead)
	assert.Equal(t, float32(3), c.Position.Get(registry, &other).X)
}

func TestUnknownHandle(t *testing.T) {
	registry, c := newTestRegistry()
	registry.CreateEntityWith(Position{X: 1})

	var zero ecs.Handle
	assert.Nil(t, c.Position.Get(registry, &zero))
	assert.False(t, registry.Alive(&zero))

	garbage := ecs.Handle{Slot: 7, Generation: 12345, Archetype: 42}
	registry.RemoveEntity(&garbage)
	assert.Nil(t, registry.GetComponent(&garbage, c.Position.ID()))
	assert.Equal(t, 1, registry.Len())
}

func TestAddComponentPreservesOthers(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1, Y: 2}, Name{Value: "bob"}, Inventory{Items: []string{"sword"}})
	before := h

	c.Health.Add(registry, &h, Health{Current: 5, Max: 10})

	assert.NotEqual(t, before.Archetype, h.Archetype)
	assert.Equal(t, before.Generation, h.Generation)
	assert.Equal(t, &Position{X: 1, Y: 2}, c.Position.Get(registry, &h))
	assert.Equal(t, &Name{Value: "bob"}, c.Name.Get(registry, &h))
	assert.Equal(t, []string{"sword"}, c.Inventory.Get(registry, &h).Items)
	assert.Equal(t, &Health{Current: 5, Max: 10}, c.Health.Get(registry, &h))

	assert.Equal(t, 0, registry.GetPool(c.Position.ID(), c.Name.ID(), c.Inventory.ID()).Len())
}

func TestRemoveComponentPreservesOthers(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1, Y: 2}, Velocity{DX: 3}, Score(7))
	c.Velocity.Remove(registry, &h)

	assert.False(t, c.Velocity.Has(registry, &h))
	assert.Nil(t, c.Velocity.Get(registry, &h))
	assert.Equal(t, &Position{X: 1, Y: 2}, c.Position.Get(registry, &h))
	assert.Equal(t, Score(7), *c.Score.Get(registry, &h))

	assert.Equal(t, 1, registry.GetPool(c.Position.ID(), c.Score.ID()).Len())
}

func TestRemoveAbsentComponentIsNoop(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1})
	before := h
	pools := registry.PoolCount()

	c.Velocity.Remove(registry, &h)

	assert.Equal(t, before, h)
	assert.Equal(t, pools, registry.PoolCount())
}

func TestRemoveLastComponentLeavesEmptyArchetype(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1})
	c.Position.Remove(registry, &h)

	assert.True(t, registry.Alive(&h))
	assert.Nil(t, c.Position.Get(registry, &h))
	assert.Equal(t, 1, registry.GetPool().Len())

	c.Position.Add(registry, &h, Position{X: 4})
	assert.Equal(t, float32(4), c.Position.Get(registry, &h).X)
}

func TestAddExistingComponentOverwritesInPlace(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1}, Velocity{DX: 1})
	before := h
	pools := registry.PoolCount()

	c.Position.Add(registry, &h, Position{X: 42})

	assert.Equal(t, before, h)
	assert.Equal(t, pools, registry.PoolCount())
	assert.Equal(t, float32(42), c.Position.Get(registry, &h).X)
	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, 0, registry.CollectStats().RemapCount)
}

func TestUntypedAddComponent(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1})
	registry.AddComponent(&h, &Velocity{DX: 2, DY: 3})

	assert.True(t, registry.HasComponent(&h, c.Velocity.ID()))
	vel, ok := registry.GetComponent(&h, c.Velocity.ID()).(*Velocity)
	require.True(t, ok)
	assert.Equal(t, Velocity{DX: 2, DY: 3}, *vel)

	registry.RemoveComponent(&h, c.Velocity.ID())
	assert.False(t, registry.HasComponent(&h, c.Velocity.ID()))
}

func TestTransitionRemapsSwappedNeighbour(t *testing.T) {
	registry, c := newTestRegistry()

	mover := registry.CreateEntityWith(Position{X: 1})
	neighbour := registry.CreateEntityWith(Position{X: 2})
	staleNeighbour := neighbour
	staleMover := mover

	c.Velocity.Add(registry, &mover, Velocity{DX: 9})

	assert.Equal(t, float32(2), c.Position.Get(registry, &staleNeighbour).X)
	assert.Equal(t, uint32(0), staleNeighbour.Slot)

	assert.Equal(t, float32(1), c.Position.Get(registry, &staleMover).X)
	assert.Equal(t, float32(9), c.Velocity.Get(registry, &staleMover).DX)
	assert.Equal(t, mover, staleMover)
}

func TestManyTransitionsKeepHandlesResolvable(t *testing.T) {
	registry, c := newTestRegistry()

	handles := make([]ecs.Handle, 100)
	for i := range handles {
		handles[i] = registry.CreateEntityWith(Position{X: float32(i)})
	}
	originals := append([]ecs.Handle(nil), handles...)

	for i := range handles {
		if i%2 == 0 {
			c.Velocity.Add(registry, &handles[i], Velocity{DX: float32(i)})
		}
		if i%3 == 0 {
			c.Health.Add(registry, &handles[i], Health{Current: i})
		}
	}
	for i := range handles {
		if i%4 == 0 {
			c.Velocity.Remove(registry, &handles[i])
		}
	}

	for i := range originals {
		h := originals[i]
		pos := c.Position.Get(registry, &h)
		require.NotNil(t, pos, "entity %d lost", i)
		assert.Equal(t, float32(i), pos.X)
		assert.Equal(t, i%2 == 0 && i%4 != 0, c.Velocity.Has(registry, &h))
		if i%3 == 0 {
			assert.Equal(t, i, c.Health.Get(registry, &h).Current)
		}
	}
}

func TestPositionVelocityScenario(t *testing.T) {
	registry, c := newTestRegistry()

	e1 := registry.CreateEntityWith(Position{X: 1, Y: 1}, Velocity{DX: 1})
	e2 := registry.CreateEntityWith(Position{X: 5, Y: 6})
	e2Copy := e2

	c.Velocity.Add(registry, &e2, Velocity{DX: 2, DY: 2})
	assert.Equal(t, e1.Archetype, e2.Archetype)
	assert.Equal(t, 2, registry.GetPool(c.Position.ID(), c.Velocity.ID()).Len())

	pos := c.Position.Get(registry, &e2Copy)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 5, Y: 6}, *pos)

	registry.RemoveEntity(&e1)
	pos = c.Position.Get(registry, &e2)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 5, Y: 6}, *pos)
	assert.Equal(t, Velocity{DX: 2, DY: 2}, *c.Velocity.Get(registry, &e2Copy))
}

func TestSoleOccupantRemovalReportsNoSwap(t *testing.T) {
	registry, c := newTestRegistry()

	e1 := registry.CreateEntityWith(Position{X: 1}, Velocity{DX: 1})
	e2 := registry.CreateEntityWith(Position{X: 2})
	c.Score.Add(registry, &e1, Score(1))

	pool := registry.GetPool(c.Position.ID(), c.Velocity.ID(), c.Score.ID())
	require.NotNil(t, pool)
	require.Equal(t, 1, pool.Len())
	remaps := registry.CollectStats().RemapCount

	registry.RemoveEntity(&e1)
	assert.True(t, e1.Dead)
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, remaps, registry.CollectStats().RemapCount)

	assert.Equal(t, float32(2), c.Position.Get(registry, &e2).X)
	assert.Equal(t, 1, registry.Len())
}

func TestRemoveFromVisitedPoolIsFatal(t *testing.T) {
	registry, c := newTestRegistry()

	e1 := registry.CreateEntityWith(Position{X: 1})
	e2 := registry.CreateEntityWith(Position{X: 2})

	assertFatal(t, ecs.ErrMutationDuringIteration, func() {
		registry.ForEachPool(func(*ecs.Pool) {
			registry.RemoveEntity(&e1)
		})
	})

	assert.False(t, registry.Iterating())
	assert.Equal(t, 2, registry.Len())
	assert.True(t, registry.Alive(&e1))
	require.NotNil(t, c.Position.Get(registry, &e2))
	assert.Equal(t, float32(2), c.Position.Get(registry, &e2).X)
}

func TestAddForeignComponentIsFatal(t *testing.T) {
	registry, c := newTestRegistry()
	h := registry.CreateEntityWith(Position{})

	type Marker struct{}
	other, _ := newTestUniverse()
	foreign := ecs.RegisterComponent[Marker](other)
	require.GreaterOrEqual(t, int(foreign.ID()), registry.Universe().Len())

	assertFatal(t, ecs.ErrInvalidComponent, func() {
		foreign.Add(registry, &h, Marker{})
	})
	assert.False(t, foreign.Has(registry, &h))
	assert.Nil(t, foreign.Get(registry, &h))
	assert.True(t, c.Position.Has(registry, &h))
}

func TestGetPoolExactArchetype(t *testing.T) {
	registry, c := newTestRegistry()

	registry.CreateEntityWith(Position{}, Velocity{})
	registry.CreateEntityWith(Position{}, Velocity{}, Health{})

	pool := registry.GetPool(c.Velocity.ID(), c.Position.ID())
	require.NotNil(t, pool)
	assert.Equal(t, 1, pool.Len())
	assert.True(t, pool.HasComponents(c.Position.ID(), c.Velocity.ID()))
	assert.False(t, pool.HasComponent(c.Health.ID()))

	assert.Nil(t, registry.GetPool(c.Name.ID()))
}

func TestSetOnMissingComponentIsNoop(t *testing.T) {
	registry, c := newTestRegistry()

	h := registry.CreateEntityWith(Position{X: 1})
	c.Velocity.Set(registry, &h, Velocity{DX: 1})

	assert.False(t, c.Velocity.Has(registry, &h))
	assert.Equal(t, 1, registry.PoolCount())
}

func TestWithReserve(t *testing.T) {
	registry, c := newTestRegistry(ecs.WithReserve(128))

	for i := 0; i < 200; i++ {
		registry.CreateEntityWith(Position{X: float32(i)})
	}
	assert.Equal(t, 200, registry.GetPool(c.Position.ID()).Len())
}

func TestCreateEntityUnregisteredType(t *testing.T) {
	registry, _ := newTestRegistry()

	type unregistered struct{}
	assertFatal(t, ecs.ErrInvalidComponent, func() {
		registry.CreateEntityWith(unregistered{})
	})
}

func TestCreateEntityDuplicateType(t *testing.T) {
	registry, _ := newTestRegistry()

	assertFatal(t, ecs.ErrInvalidComponent, func() {
		registry.CreateEntityWith(Position{}, &Position{})
	})
}

func TestRegisterAfterSeal(t *testing.T) {
	u, _ := newTestUniverse()
	ecs.NewRegistry(u)

	type late struct{}
	assertFatal(t, ecs.ErrUniverseSealed, func() {
		ecs.RegisterComponent[late](u)
	})
}

func TestRegisterInvalidKind(t *testing.T) {
	u := ecs.NewUniverse()

	assertFatal(t, ecs.ErrInvalidComponent, func() {
		ecs.RegisterComponent[*Position](u)
	})
}

func TestRegisterTwiceReturnsSameComponent(t *testing.T) {
	u := ecs.NewUniverse()

	a := ecs.RegisterComponent[Position](u)
	b := ecs.RegisterComponent[Position](u)
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, 1, u.Len())

	found, ok := ecs.ComponentFor[Position](u)
	assert.True(t, ok)
	assert.Equal(t, a, found)

	_, ok = ecs.ComponentFor[Velocity](u)
	assert.False(t, ok)
}
