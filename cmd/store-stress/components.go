package main

import (
	"math/rand"

	"github.com/plus3/archstore/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

// Age counts how long an entity has been alive.
type Age struct {
	Seconds float64
}

type Health struct {
	Current, Max int
}

// Boost temporarily multiplies an entity's speed. It is added and removed
// at runtime, so entities keep moving between archetypes.
type Boost struct {
	Factor    float64
	Remaining float64
}

type components struct {
	Position ecs.Component[Position]
	Velocity ecs.Component[Velocity]
	Age      ecs.Component[Age]
	Health   ecs.Component[Health]
	Boost    ecs.Component[Boost]
}

func registerComponents(u *ecs.Universe) components {
	return components{
		Position: ecs.RegisterComponent[Position](u),
		Velocity: ecs.RegisterComponent[Velocity](u),
		Age:      ecs.RegisterComponent[Age](u),
		Health:   ecs.RegisterComponent[Health](u),
		Boost:    ecs.RegisterComponent[Boost](u),
	}
}

// randomComponents builds an Age plus a random subset of the other
// components. Every entity ages so that every entity is eventually despawned.
func randomComponents(rng *rand.Rand) []any {
	values := []any{Age{}}
	if rng.Intn(4) != 0 {
		values = append(values, Position{X: rng.Float64() * 100, Y: rng.Float64() * 100})
	}
	if rng.Intn(2) == 0 {
		values = append(values, Velocity{DX: rng.Float64()*2 - 1, DY: rng.Float64()*2 - 1})
	}
	if rng.Intn(3) == 0 {
		hp := rng.Intn(100) + 1
		values = append(values, Health{Current: hp, Max: hp})
	}
	return values
}
