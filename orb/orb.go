// Package orb composes motion, particle trail and spatial sync into one frame-driven entity
//
// An Orb is not safe for concurrent use: the driver must keep at most one Tick
// in flight per orb. Distinct orbs share no mutable state and may tick in parallel.
package orb

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/orbviz/motion"
	"github.com/lixenwraith/orbviz/spatial"
	"github.com/lixenwraith/orbviz/spectrum"
	"github.com/lixenwraith/orbviz/status"
	"github.com/lixenwraith/orbviz/trail"
	"github.com/lixenwraith/orbviz/vmath"
)

// Orb owns one motion state, one trail and one spatial binding
type Orb struct {
	id   uuid.UUID
	name string

	seek    *motion.Seek
	sampler *spectrum.Sampler
	trail   *trail.Trail
	sync    *spatial.Sync

	rng        motion.Uniform
	source     spectrum.Source
	audioSink  spatial.PositionSink
	renderSink spatial.TransformSink

	frame  spectrum.Frame
	levels spectrum.Levels
	ticks  uint64

	logger   zerolog.Logger
	registry *status.Registry
	metrics  metrics
}

type metrics struct {
	ticks, regenerations, redraws, tickErrors *atomic.Int64
	x, y, z                                   *status.AtomicFloat
}

// New validates cfg and builds the orb; configuration errors wrap ErrConfig
func New(cfg Config, opts ...Option) (*Orb, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	o := &Orb{
		name:   cfg.Name,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}

	seek, err := motion.NewSeek(cfg.seekConfig(o.rng))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	sampler, err := spectrum.NewSampler(cfg.Bins)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	tr, err := trail.New(cfg.Trail)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	o.seek = seek
	o.sampler = sampler
	o.trail = tr
	o.sync = spatial.NewSync(cfg.Spatial, seek.Position())
	o.frame = make(spectrum.Frame, cfg.frameLen())
	o.logger = o.logger.With().Str("orb", o.name).Str("id", o.id.String()).Logger()
	o.bindMetrics()

	o.logger.Debug().
		Int("particles", tr.Len()).
		Interface("destination", seek.Destination()).
		Msg("orb created")
	return o, nil
}

func (o *Orb) bindMetrics() {
	if o.registry == nil {
		return
	}
	scope := "orb." + o.name
	o.metrics = metrics{
		ticks:         o.registry.Counters.Get(status.Key(scope, "ticks")),
		regenerations: o.registry.Counters.Get(status.Key(scope, "regenerations")),
		redraws:       o.registry.Counters.Get(status.Key(scope, "redraws")),
		tickErrors:    o.registry.Counters.Get(status.Key(scope, "tick_errors")),
		x:             o.registry.Gauges.Get(status.Key(scope, "pos.x")),
		y:             o.registry.Gauges.Get(status.Key(scope, "pos.y")),
		z:             o.registry.Gauges.Get(status.Key(scope, "pos.z")),
	}
	o.registry.Labels.Get(status.Key(scope, "id")).Store(o.id.String())
}

// Tick advances the orb by one frame using the given spectrum
// The frame is validated before any state changes, a rejected tick leaves the orb untouched
func (o *Orb) Tick(frame spectrum.Frame) error {
	levels, err := o.sampler.Sample(frame)
	if err != nil {
		if o.metrics.tickErrors != nil {
			o.metrics.tickErrors.Add(1)
		}
		o.logger.Warn().Err(err).Int("len", len(frame)).Msg("tick rejected")
		return fmt.Errorf("%w: %w", ErrTick, err)
	}

	step := o.seek.Advance()
	if step.Arrived {
		if o.metrics.redraws != nil {
			o.metrics.redraws.Add(1)
		}
		o.logger.Debug().
			Interface("destination", o.seek.Destination()).
			Float64("distance", step.Distance).
			Msg("destination redrawn")
	}

	o.levels = levels
	o.trail.Update(levels.Normalize())

	pos := o.seek.Position()
	o.sync.Refresh(pos)
	o.sync.Push(o.audioSink, o.renderSink)
	o.ticks++

	if o.metrics.ticks != nil {
		o.metrics.ticks.Add(1)
		o.metrics.regenerations.Add(1)
		o.metrics.x.Set(pos.X)
		o.metrics.y.Set(pos.Y)
		o.metrics.z.Set(pos.Z)
	}
	return nil
}

// Step pulls the current spectrum from the attached source and ticks
func (o *Orb) Step() error {
	if o.source == nil {
		return ErrNoSource
	}
	clear(o.frame)
	o.source.ByteFrequencyData(o.frame)
	return o.Tick(o.frame)
}

func (o *Orb) ID() uuid.UUID { return o.id }
func (o *Orb) Name() string  { return o.name }

// Ticks returns the number of accepted ticks
func (o *Orb) Ticks() uint64 { return o.ticks }

func (o *Orb) Position() vmath.Vec3F    { return o.seek.Position() }
func (o *Orb) Destination() vmath.Vec3F { return o.seek.Destination() }

// Levels returns the band magnitudes sampled on the last accepted tick
func (o *Orb) Levels() spectrum.Levels { return o.levels }

// Trail exposes the particle arrays for a renderer
func (o *Orb) Trail() *trail.Trail { return o.trail }

func (o *Orb) Positions() []vmath.Vec3F      { return o.trail.Positions() }
func (o *Orb) Colors() []colorful.Color      { return o.trail.Colors() }
func (o *Orb) PositionForAudio() vmath.Vec3F { return o.sync.PositionForAudio() }
func (o *Orb) Transform() spatial.Transform  { return o.sync.TransformForRender() }

// Room returns the bounds destinations are drawn from
func (o *Orb) Room() motion.Room { return o.seek.Room() }
