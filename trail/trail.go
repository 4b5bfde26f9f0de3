// Package trail implements the fixed-size particle ribbon trailing an orb
//
// Every Update ages all particles (drift along +x, exponential color fade) and
// then rewrites the slot under the ring write pointer from spectral bands.
// With ring capacity N each slot is rewritten once every N updates.
package trail

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/orbviz/ring"
	"github.com/lixenwraith/orbviz/spectrum"
	"github.com/lixenwraith/orbviz/vmath"
)

const (
	DefaultCount   = 100
	DefaultSpacing = 0.025
	DefaultDecay   = 0.995
)

var (
	ErrCount         = errors.New("particle count must be >= 1")
	ErrDecay         = errors.New("decay factor must be in (0, 1)")
	ErrRingCapacity  = errors.New("ring capacity must be in [1, particle count]")
	ErrDirection     = errors.New("ring direction must be forward or backward")
	ErrNonFiniteTune = errors.New("tuning constants must be finite")
)

// DefaultPositionScale maps a full-scale band (1.0) to 1.275 units, 0.005 per raw magnitude step
func DefaultPositionScale() vmath.Vec3F {
	s := 0.005 * spectrum.MaxMagnitude
	return vmath.V3F(s, s, s)
}

// Config parameterizes a Trail
type Config struct {
	Count int
	// Spacing seeds slot i at x = i*Spacing
	Spacing float64
	// Drift is added to every x each update
	Drift float64
	// Decay multiplies every color channel each update
	// Values >= 1 would stop fading and are rejected
	Decay float64
	// Spread multiplies y and z each update, zero components mean 1
	Spread vmath.Vec3F

	Gradient  Gradient
	SeedColor colorful.Color

	// PositionScale maps normalized low/mid/high to x/y/z of a fresh particle
	PositionScale vmath.Vec3F
	// ColorScale maps normalized low to the gradient parameter
	ColorScale float64

	// RingCapacity of zero means Count
	RingCapacity  int
	RingStart     int
	RingDirection ring.Direction
}

// DefaultConfig returns the reference tuning for count particles
func DefaultConfig(count int, g Gradient) Config {
	return Config{
		Count:         count,
		Spacing:       DefaultSpacing,
		Drift:         DefaultSpacing,
		Decay:         DefaultDecay,
		Gradient:      g,
		SeedColor:     g.Start,
		PositionScale: DefaultPositionScale(),
		ColorScale:    1,
		RingDirection: ring.Backward,
	}
}

// Validate reports all configuration errors at once
func (c Config) Validate() error {
	var errs []error
	if c.Count < 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrCount, c.Count))
	}
	if !(c.Decay > 0 && c.Decay < 1) {
		errs = append(errs, fmt.Errorf("%w: %g", ErrDecay, c.Decay))
	}
	capacity := c.ringCapacity()
	if capacity < 1 || (c.Count >= 1 && capacity > c.Count) {
		errs = append(errs, fmt.Errorf("%w: %d", ErrRingCapacity, capacity))
	}
	if !c.RingDirection.Valid() {
		errs = append(errs, fmt.Errorf("%w: %s", ErrDirection, c.RingDirection))
	}
	for _, f := range []float64{c.Spacing, c.Drift, c.ColorScale} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, ErrNonFiniteTune)
			break
		}
	}
	if !vmath.V3FIsFinite(c.PositionScale) || !vmath.V3FIsFinite(c.Spread) {
		errs = append(errs, ErrNonFiniteTune)
	}
	return errors.Join(errs...)
}

func (c Config) ringCapacity() int {
	if c.RingCapacity == 0 {
		return c.Count
	}
	return c.RingCapacity
}

// Trail holds parallel position/color arrays and the write pointer
// Arrays are allocated once and never resized
type Trail struct {
	positions []vmath.Vec3F
	colors    []colorful.Color
	head      *ring.Index
	cfg       Config

	spreadY, spreadZ float64
	lastWritten      int
	updates          uint64
}

// New allocates the arrays with seed values: linear spread along x, uniform seed color
func New(cfg Config) (*Trail, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	head, err := ring.New(cfg.RingStart, cfg.ringCapacity())
	if err != nil {
		return nil, err
	}

	t := &Trail{
		positions:   make([]vmath.Vec3F, cfg.Count),
		colors:      make([]colorful.Color, cfg.Count),
		head:        head,
		cfg:         cfg,
		spreadY:     orOne(cfg.Spread.Y),
		spreadZ:     orOne(cfg.Spread.Z),
		lastWritten: -1,
	}
	for i := range t.positions {
		t.positions[i] = vmath.V3F(float64(i)*cfg.Spacing, 0, 0)
		t.colors[i] = cfg.SeedColor
	}
	return t, nil
}

func orOne(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// Update ages every slot, regenerates the head slot from bands and advances the pointer
// Returns the regenerated slot index
func (t *Trail) Update(b spectrum.Bands) int {
	t.age()
	slot := t.head.Current()
	t.regenerate(slot, b)
	t.head.Advance(t.cfg.RingDirection)
	t.lastWritten = slot
	t.updates++
	return slot
}

// age applies drift, spread and decay unconditionally to all slots
func (t *Trail) age() {
	d := t.cfg.Decay
	for i := range t.positions {
		p := &t.positions[i]
		p.X += t.cfg.Drift
		p.Y *= t.spreadY
		p.Z *= t.spreadZ

		c := &t.colors[i]
		c.R *= d
		c.G *= d
		c.B *= d
	}
}

func (t *Trail) regenerate(slot int, b spectrum.Bands) {
	s := t.cfg.PositionScale
	t.positions[slot] = vmath.V3F(b.Low*s.X, b.Mid*s.Y, b.High*s.Z)
	t.colors[slot] = t.cfg.Gradient.At(b.Low * t.cfg.ColorScale)
}

// Len returns the particle count
func (t *Trail) Len() int {
	return len(t.positions)
}

// Positions exposes the position array for upload, callers must not modify it
func (t *Trail) Positions() []vmath.Vec3F {
	return t.positions
}

// Colors exposes the color array for upload, callers must not modify it
func (t *Trail) Colors() []colorful.Color {
	return t.colors
}

// Position returns slot i
func (t *Trail) Position(i int) vmath.Vec3F {
	return t.positions[i]
}

// Color returns slot i
func (t *Trail) Color(i int) colorful.Color {
	return t.colors[i]
}

// Head returns the most recently regenerated slot, -1 before the first update
func (t *Trail) Head() int {
	return t.lastWritten
}

// Next returns the slot the next update regenerates
func (t *Trail) Next() int {
	return t.head.Current()
}

// Updates returns the number of completed updates
func (t *Trail) Updates() uint64 {
	return t.updates
}

// Config returns the construction parameters
func (t *Trail) Config() Config {
	return t.cfg
}

// AppendFloat32 appends interleaved xyz positions and rgb colors for a point-cloud upload
func (t *Trail) AppendFloat32(pos, col []float32) ([]float32, []float32) {
	for i := range t.positions {
		p := t.positions[i]
		c := t.colors[i]
		pos = append(pos, float32(p.X), float32(p.Y), float32(p.Z))
		col = append(col, float32(c.R), float32(c.G), float32(c.B))
	}
	return pos, col
}
