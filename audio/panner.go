package audio

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/orbviz/vmath"
)

// Distance attenuation models
const (
	DistanceInverse     = "inverse"
	DistanceLinear      = "linear"
	DistanceExponential = "exponential"
)

// PannerConfig describes positional attenuation around a listener at the origin facing -Z
type PannerConfig struct {
	PanningModel  string      `mapstructure:"panningModel"`
	DistanceModel string      `mapstructure:"distanceModel"`
	RefDistance   float64     `mapstructure:"refDistance"`
	MaxDistance   float64     `mapstructure:"maxDistance"`
	Rolloff       float64     `mapstructure:"rolloff"`
	Orientation   vmath.Vec3F `mapstructure:"orientation"`
}

// DefaultPannerConfig returns exponential falloff from 1 to 100 units with rolloff 1.5
func DefaultPannerConfig() PannerConfig {
	return PannerConfig{
		PanningModel:  "HRTF",
		DistanceModel: DistanceExponential,
		RefDistance:   1,
		MaxDistance:   100,
		Rolloff:       1.5,
		Orientation:   vmath.V3F(0, 0, -1),
	}
}

// Validate checks distance parameters
func (c PannerConfig) Validate() error {
	var errs []error
	switch strings.ToLower(c.DistanceModel) {
	case DistanceInverse, DistanceLinear, DistanceExponential:
	default:
		errs = append(errs, fmt.Errorf("distance model %q", c.DistanceModel))
	}
	if c.RefDistance <= 0 {
		errs = append(errs, fmt.Errorf("ref distance %g must be positive", c.RefDistance))
	}
	if c.MaxDistance <= c.RefDistance {
		errs = append(errs, fmt.Errorf("max distance %g must exceed ref distance %g", c.MaxDistance, c.RefDistance))
	}
	if c.Rolloff < 0 {
		errs = append(errs, fmt.Errorf("rolloff %g", c.Rolloff))
	}
	return errors.Join(errs...)
}

// DistanceGain returns the attenuation factor at distance d
func (c PannerConfig) DistanceGain(d float64) float64 {
	ref := c.RefDistance
	switch strings.ToLower(c.DistanceModel) {
	case DistanceInverse:
		d = math.Max(d, ref)
		return ref / (ref + c.Rolloff*(d-ref))
	case DistanceLinear:
		d = vmath.Clamp(d, ref, c.MaxDistance)
		return vmath.Clamp01(1 - c.Rolloff*(d-ref)/(c.MaxDistance-ref))
	default:
		d = math.Max(d, ref)
		return math.Pow(d/ref, -c.Rolloff)
	}
}

// PanFor returns the stereo balance in [-1, 1] of a point relative to the listener
// Equal-power approximation of azimuth; height does not pan
func PanFor(p vmath.Vec3F) float64 {
	h := math.Hypot(p.X, p.Z)
	if h == 0 {
		return 0
	}
	return vmath.Clamp(p.X/h, -1, 1)
}

// Panner positions a stream in the stereo field
// Implements spatial.PositionSink and beep.Streamer
type Panner struct {
	mu     sync.Mutex
	cfg    PannerConfig
	master float64
	pan    *effects.Pan
	vol    *effects.Volume

	position vmath.Vec3F
	gain     float64
}

// NewPanner wraps s with pan and volume stages at the origin
func NewPanner(s beep.Streamer, cfg PannerConfig, master float64) *Panner {
	pan := &effects.Pan{Streamer: s}
	p := &Panner{
		cfg:    cfg,
		master: master,
		pan:    pan,
		vol:    &effects.Volume{Streamer: pan, Base: 2},
	}
	p.SetPosition(vmath.Vec3F{})
	return p
}

// SetPosition updates balance and distance gain
func (p *Panner) SetPosition(pos vmath.Vec3F) {
	gain := p.master * p.cfg.DistanceGain(vmath.V3FMag(pos))
	bal := PanFor(pos)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
	p.gain = gain
	p.pan.Pan = bal
	if gain <= 0 {
		p.vol.Silent = true
		return
	}
	p.vol.Silent = false
	p.vol.Volume = math.Log2(gain)
}

// Stream implements beep.Streamer
func (p *Panner) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vol.Stream(samples)
}

// Err implements beep.Streamer
func (p *Panner) Err() error {
	return p.vol.Err()
}

// Position returns the last pushed position
func (p *Panner) Position() vmath.Vec3F {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Gain returns the linear gain currently applied
func (p *Panner) Gain() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gain
}

// Balance returns the current stereo balance
func (p *Panner) Balance() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pan.Pan
}
