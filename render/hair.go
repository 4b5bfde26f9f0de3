package render

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrHair = errors.New("invalid hair layout")

// HairConfig sets how many rotated copies of a trail are drawn
// Slices turn about Y; hairs within a slice turn about Z
type HairConfig struct {
	Slices int `mapstructure:"slices"`
	Hairs  int `mapstructure:"hairs"`
}

// DefaultHairConfig is sized for a terminal; a GPU scene would use 48 x 15
func DefaultHairConfig() HairConfig {
	return HairConfig{Slices: 6, Hairs: 4}
}

func (c HairConfig) Validate() error {
	if c.Slices < 1 || c.Hairs < 1 {
		return fmt.Errorf("%w: %d slices x %d hairs", ErrHair, c.Slices, c.Hairs)
	}
	return nil
}

// Count returns the number of copies
func (c HairConfig) Count() int {
	return c.Slices * c.Hairs
}

// hair is the local orientation of one copy, applied z then y
type hair struct {
	y, z r3.Rotation
}

func (h hair) apply(v r3.Vec) r3.Vec {
	return h.y.Rotate(h.z.Rotate(v))
}

func (c HairConfig) layout() []hair {
	out := make([]hair, 0, c.Count())
	for i := range c.Slices {
		yRot := 2 * math.Pi * float64(i) / float64(c.Slices)
		for j := range c.Hairs {
			zRot := 2 * math.Pi * float64(j) / float64(c.Hairs)
			out = append(out, hair{
				y: r3.NewRotation(yRot, r3.Vec{Y: 1}),
				z: r3.NewRotation(zRot, r3.Vec{Z: 1}),
			})
		}
	}
	return out
}

// euler composes an XYZ group rotation, applied z then y then x
type euler struct {
	x, y, z r3.Rotation
}

func newEuler(x, y, z float64) euler {
	return euler{
		x: r3.NewRotation(x, r3.Vec{X: 1}),
		y: r3.NewRotation(y, r3.Vec{Y: 1}),
		z: r3.NewRotation(z, r3.Vec{Z: 1}),
	}
}

func (e euler) apply(v r3.Vec) r3.Vec {
	return e.x.Rotate(e.y.Rotate(e.z.Rotate(v)))
}
