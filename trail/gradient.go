package trail

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/orbviz/vmath"
)

// Gradient is an immutable start/end color pair
type Gradient struct {
	Start colorful.Color
	End   colorful.Color
}

// ParseGradient builds a gradient from two hex strings ("#rrggbb")
func ParseGradient(start, end string) (Gradient, error) {
	s, err := colorful.Hex(start)
	if err != nil {
		return Gradient{}, fmt.Errorf("gradient start %q: %w", start, err)
	}
	e, err := colorful.Hex(end)
	if err != nil {
		return Gradient{}, fmt.Errorf("gradient end %q: %w", end, err)
	}
	return Gradient{Start: s, End: e}, nil
}

// At interpolates linearly in RGB, t is clamped to [0, 1]
func (g Gradient) At(t float64) colorful.Color {
	return g.Start.BlendRgb(g.End, vmath.Clamp01(t))
}

// Magnitude returns the summed channel intensity of c
func Magnitude(c colorful.Color) float64 {
	return c.R + c.G + c.B
}
