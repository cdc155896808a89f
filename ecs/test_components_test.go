package ecs_test

import (
	"testing"

	"github.com/plus3/archstore/ecs"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Inventory struct {
	Items []string
}

// Custom primitive types for testing non-struct components
type Score int32
type Temperature float64

type testComponents struct {
	Position    ecs.Component[Position]
	Velocity    ecs.Component[Velocity]
	Name        ecs.Component[Name]
	Health      ecs.Component[Health]
	Inventory   ecs.Component[Inventory]
	Score       ecs.Component[Score]
	Temperature ecs.Component[Temperature]
}

func newTestUniverse() (*ecs.Universe, testComponents) {
	u := ecs.NewUniverse()
	c := testComponents{
		Position:    ecs.RegisterComponent[Position](u),
		Velocity:    ecs.RegisterComponent[Velocity](u),
		Name:        ecs.RegisterComponent[Name](u),
		Health:      ecs.RegisterComponent[Health](u),
		Inventory:   ecs.RegisterComponent[Inventory](u),
		Score:       ecs.RegisterComponent[Score](u),
		Temperature: ecs.RegisterComponent[Temperature](u),
	}
	return u, c
}

func newTestRegistry(opts ...ecs.Option) (*ecs.Registry, testComponents) {
	u, c := newTestUniverse()
	return ecs.NewRegistry(u, opts...), c
}

// assertFatal checks that fn panics with an error rooted in cause.
func assertFatal(t *testing.T, cause error, fn func()) {
	t.Helper()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		fn()
	}()

	require.NotNil(t, recovered, "expected a panic")
	err, ok := recovered.(error)
	require.True(t, ok, "panic value should be an error, got %T", recovered)
	assert.True(t, eris.Is(err, cause), "expected %v, got %v", cause, err)
}
