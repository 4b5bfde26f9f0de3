package motion

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/orbviz/vmath"
)

var ErrRoomBounds = errors.New("room bounds must be finite with max > min on every axis")

// Room is the axis-aligned box destinations are drawn from
type Room struct {
	Min vmath.Vec3F
	Max vmath.Vec3F
}

// DefaultRoom is a 20x10x20 box centered on the origin
func DefaultRoom() Room {
	return Room{
		Min: vmath.V3F(-10, -5, -10),
		Max: vmath.V3F(10, 5, 10),
	}
}

// Validate rejects non-finite bounds and zero-size or inverted axes
func (r Room) Validate() error {
	if !vmath.V3FIsFinite(r.Min) || !vmath.V3FIsFinite(r.Max) {
		return fmt.Errorf("%w: non-finite bounds %v..%v", ErrRoomBounds, r.Min, r.Max)
	}
	axes := [3]struct {
		name     string
		min, max float64
	}{
		{"x", r.Min.X, r.Max.X},
		{"y", r.Min.Y, r.Max.Y},
		{"z", r.Min.Z, r.Max.Z},
	}
	for _, a := range axes {
		if !(a.max > a.min) {
			return fmt.Errorf("%w: %s axis [%g, %g]", ErrRoomBounds, a.name, a.min, a.max)
		}
	}
	return nil
}

// Range returns max - min per axis
func (r Room) Range() vmath.Vec3F {
	return vmath.V3FSub(r.Max, r.Min)
}

// Center returns the midpoint of the box
func (r Room) Center() vmath.Vec3F {
	return vmath.V3FScale(vmath.V3FAdd(r.Min, r.Max), 0.5)
}

// Contains reports whether p lies inside the closed box
func (r Room) Contains(p vmath.Vec3F) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// Uniform is a source of uniform floats in [0, 1)
// *rand.Rand satisfies it
type Uniform interface {
	Float64() float64
}

// RandomPoint draws each axis independently as center + uniform(-range/2, +range/2)
func (r Room) RandomPoint(rng Uniform) vmath.Vec3F {
	c := r.Center()
	rg := r.Range()
	return vmath.Vec3F{
		X: c.X + rng.Float64()*rg.X - rg.X/2,
		Y: c.Y + rng.Float64()*rg.Y - rg.Y/2,
		Z: c.Z + rng.Float64()*rg.Z - rg.Z/2,
	}
}
