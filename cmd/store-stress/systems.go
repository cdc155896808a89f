package main

import (
	"math/rand"

	"github.com/plus3/archstore/ecs"
)

type MovementSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
		Boost *Boost `ecs:"optional"`
	}]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	for _, m := range s.Movers.Iter() {
		speed := 1.0
		if m.Boost != nil {
			speed = m.Boost.Factor
		}
		m.Position.X += m.Velocity.DX * speed * frame.DeltaTime
		m.Position.Y += m.Velocity.DY * speed * frame.DeltaTime
	}
}

// AgingSystem despawns entities older than MaxAge.
type AgingSystem struct {
	Aging  ecs.Query[struct{ *Age }]
	MaxAge float64

	despawned int
}

func (s *AgingSystem) Execute(frame *ecs.UpdateFrame) {
	for h, v := range s.Aging.Iter() {
		v.Age.Seconds += frame.DeltaTime
		if v.Age.Seconds > s.MaxAge {
			frame.Commands.RemoveEntity(h)
			s.despawned++
		}
	}
}

// BoostSystem attaches boosts to moving entities at random and detaches them
// once they run out.
type BoostSystem struct {
	Moving  ecs.Query[struct{ *Velocity }]
	Boosted ecs.Query[struct{ *Boost }]

	boost  ecs.Component[Boost]
	chance float64
	rng    *rand.Rand

	added, removed int
}

func (s *BoostSystem) Execute(frame *ecs.UpdateFrame) {
	for h, v := range s.Boosted.Iter() {
		v.Boost.Remaining -= frame.DeltaTime
		if v.Boost.Remaining <= 0 {
			frame.Commands.RemoveComponent(h, s.boost.ID())
			s.removed++
		}
	}

	for _, pool := range s.Moving.Pools() {
		if pool.HasComponent(s.boost.ID()) {
			continue
		}
		pool.ForEach(func(h ecs.Handle) {
			if s.rng.Float64() < s.chance {
				frame.Commands.AddComponent(h, Boost{Factor: 2 + s.rng.Float64()*2, Remaining: 1})
				s.added++
			}
		})
	}
}

// SpawnSystem replaces despawned entities with new random ones.
type SpawnSystem struct {
	PerFrame int
	rng      *rand.Rand

	spawned int
}

func (s *SpawnSystem) Execute(frame *ecs.UpdateFrame) {
	for i := 0; i < s.PerFrame; i++ {
		frame.Commands.CreateEntity(randomComponents(s.rng)...)
	}
	s.spawned += s.PerFrame
}
