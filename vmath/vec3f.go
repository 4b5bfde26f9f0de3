package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector used for orb motion and particle positions
type Vec3F struct {
	X, Y, Z float64
}

// V3F builds a vector from components
func V3F(x, y, z float64) Vec3F {
	return Vec3F{X: x, Y: y, Z: z}
}

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

// V3FMul multiplies componentwise
func V3FMul(a, b Vec3F) Vec3F {
	return Vec3F{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

// V3FNormalize returns the unit vector of v
// Zero vector maps to zero vector, never NaN
func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FDist returns the euclidean distance between a and b
func V3FDist(a, b Vec3F) float64 {
	return V3FMag(V3FSub(a, b))
}

// V3FLerp interpolates componentwise, t is not clamped
func V3FLerp(a, b Vec3F, t float64) Vec3F {
	return Vec3F{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// V3FIsFinite reports whether no component is NaN or Inf
func V3FIsFinite(v Vec3F) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
