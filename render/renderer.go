package render

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lixenwraith/orbviz/trail"
)

// Config holds scene settings
type Config struct {
	Camera Camera     `mapstructure:"camera"`
	Hair   HairConfig `mapstructure:"hair"`
	// MinMagnitude skips particles whose R+G+B falls below it
	MinMagnitude float64 `mapstructure:"minMagnitude"`
	HUD          bool    `mapstructure:"hud"`
}

// DefaultConfig returns the terminal scene defaults
func DefaultConfig() Config {
	return Config{
		Camera:       DefaultCamera(),
		Hair:         DefaultHairConfig(),
		MinMagnitude: 0.05,
		HUD:          true,
	}
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Hair.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Camera.Focal <= 0 || c.Camera.Scale <= 0 {
		errs = append(errs, fmt.Errorf("camera focal %g, scale %g must be positive", c.Camera.Focal, c.Camera.Scale))
	}
	return errors.Join(errs...)
}

// cellPoint is one particle copy ready to paint
type cellPoint struct {
	Point
	glyph rune
	color tcell.Color
}

// Renderer paints orb layers onto a tcell screen
// Painter's order: far to near, HUD rows reserved at the bottom
type Renderer struct {
	screen tcell.Screen
	cfg    Config
	hairs  []hair

	points []cellPoint // Reused across frames
}

// NewRenderer draws onto screen; the screen must already be initialized
func NewRenderer(screen tcell.Screen, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		screen: screen,
		cfg:    cfg,
		hairs:  cfg.Hair.layout(),
	}, nil
}

// Draw paints one frame and returns the number of particle cells written
func (r *Renderer) Draw(layers []*Layer, hud ...string) int {
	w, h := r.screen.Size()
	hudRows := 0
	if r.cfg.HUD {
		hudRows = min(len(hud), h)
	}
	viewH := h - hudRows

	r.screen.Clear()
	r.points = r.points[:0]
	for _, l := range layers {
		r.collect(l, w, viewH)
	}

	slices.SortStableFunc(r.points, func(a, b cellPoint) int {
		return cmp.Compare(b.Depth, a.Depth)
	})
	for _, p := range r.points {
		r.screen.SetContent(p.X, p.Y, p.glyph, nil, tcell.StyleDefault.Foreground(p.color))
	}

	for i := range hudRows {
		style := tcell.StyleDefault.Foreground(colorHUD)
		if i == hudRows-1 {
			style = tcell.StyleDefault.Foreground(colorHUDDim)
		}
		writeStr(r.screen, 1, viewH+i, hud[i], style)
	}

	r.screen.Show()
	return len(r.points)
}

// collect projects every hair copy of every visible particle in l
func (r *Renderer) collect(l *Layer, w, h int) {
	t, tr := l.snapshot()
	if tr == nil {
		return
	}

	group := newEuler(t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
	origin := r3.Vec{X: t.Position.X, Y: t.Position.Y, Z: t.Position.Z}

	for i := range tr.Len() {
		c := tr.Color(i)
		if trail.Magnitude(c) < r.cfg.MinMagnitude {
			continue
		}
		color := TermColor(c)
		p := tr.Position(i)
		v := r3.Vec{X: p.X, Y: p.Y, Z: p.Z}

		for _, hr := range r.hairs {
			u := r3.Add(group.apply(hr.apply(v)), origin)
			pt, ok := r.cfg.Camera.Project(u, w, h)
			if !ok {
				continue
			}
			r.points = append(r.points, cellPoint{
				Point: pt,
				glyph: r.cfg.Camera.Glyph(pt.Depth),
				color: color,
			})
		}
	}
}

func writeStr(s tcell.Screen, x, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	for _, r := range str {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
