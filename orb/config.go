package orb

import (
	"errors"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/orbviz/motion"
	"github.com/lixenwraith/orbviz/spatial"
	"github.com/lixenwraith/orbviz/spectrum"
	"github.com/lixenwraith/orbviz/trail"
	"github.com/lixenwraith/orbviz/vmath"
)

// DefaultFFTSize matches the analyser resolution the default bins are tuned for
const DefaultFFTSize = 256

var (
	ErrConfig   = errors.New("invalid orb configuration")
	ErrTick     = errors.New("orb tick rejected")
	ErrNoSource = errors.New("orb has no spectrum source")
)

// DefaultGradient runs from deep blue to warm orange
func DefaultGradient() trail.Gradient {
	return trail.Gradient{
		Start: colorful.Color{R: 0.15, G: 0.35, B: 1.0},
		End:   colorful.Color{R: 1.0, G: 0.45, B: 0.1},
	}
}

// Config holds every construction parameter of an orb
type Config struct {
	Name string

	// Motion
	Position         vmath.Vec3F
	Room             motion.Room
	Speed            float64
	ArrivalThreshold float64

	Trail trail.Config

	// Spectrum
	Bins spectrum.Bins
	// FrameLen is the analyser bin count; bins must fit below it
	// Zero sizes frames to the highest bin
	FrameLen int

	Spatial spatial.Config
}

// DefaultConfig reproduces the reference orb: 100 particles, speed 0.1, bins 0/20/60
func DefaultConfig() Config {
	return Config{
		Name:             "orb",
		Room:             motion.DefaultRoom(),
		Speed:            motion.DefaultSpeed,
		ArrivalThreshold: motion.DefaultArrivalThreshold,
		Trail:            trail.DefaultConfig(trail.DefaultCount, DefaultGradient()),
		Bins:             spectrum.DefaultBins(),
		FrameLen:         spectrum.BinCount(DefaultFFTSize),
		Spatial:          spatial.DefaultConfig(),
	}
}

func (c Config) seekConfig(rng motion.Uniform) motion.SeekConfig {
	return motion.SeekConfig{
		Position:         c.Position,
		Room:             c.Room,
		Speed:            c.Speed,
		ArrivalThreshold: c.ArrivalThreshold,
		Rand:             rng,
	}
}

// Validate collects every configuration error
func (c Config) Validate() error {
	return errors.Join(
		c.Trail.Validate(),
		c.seekConfig(nil).Validate(),
		c.Bins.Validate(c.FrameLen),
	)
}

func (c Config) frameLen() int {
	if c.FrameLen > 0 {
		return c.FrameLen
	}
	return c.Bins.MinFrameLen()
}
