package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a pinhole looking down -Z from (0, 0, Distance)
type Camera struct {
	Distance float64 `mapstructure:"distance"`
	Focal    float64 `mapstructure:"focal"`
	// Scale is screen rows per projected unit as a fraction of view height
	Scale float64 `mapstructure:"scale"`
	Near  float64 `mapstructure:"near"`
}

// DefaultCamera frames the default room with some margin
func DefaultCamera() Camera {
	return Camera{
		Distance: 30,
		Focal:    14,
		Scale:    0.13,
		Near:     0.5,
	}
}

// Point is a projected cell with its distance from the camera
type Point struct {
	X, Y  int
	Depth float64
}

// Project maps p onto a w x h cell grid; false when behind the near plane or off screen
func (c Camera) Project(p r3.Vec, w, h int) (Point, bool) {
	depth := c.Distance - p.Z
	if depth < c.Near {
		return Point{}, false
	}
	inv := c.Focal / depth
	scale := float64(h) * c.Scale

	// 2x horizontal for terminal cell aspect 1:2
	x := math.Floor(float64(w)/2 + p.X*inv*scale*2)
	y := math.Floor(float64(h)/2 - p.Y*inv*scale)
	if x < 0 || y < 0 || x >= float64(w) || y >= float64(h) {
		return Point{}, false
	}
	return Point{X: int(x), Y: int(y), Depth: depth}, true
}

// Glyph picks a dot size from depth relative to the camera distance
func (c Camera) Glyph(depth float64) rune {
	switch {
	case depth < c.Distance-5:
		return '●'
	case depth < c.Distance+5:
		return '•'
	default:
		return '·'
	}
}
