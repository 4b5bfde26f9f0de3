package orb

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/orbviz/motion"
	"github.com/lixenwraith/orbviz/spatial"
	"github.com/lixenwraith/orbviz/spectrum"
	"github.com/lixenwraith/orbviz/status"
)

// Option configures collaborators injected at construction
type Option func(*Orb)

// WithRand supplies the destination generator, tests pass a seeded source
func WithRand(rng motion.Uniform) Option {
	return func(o *Orb) { o.rng = rng }
}

// WithSource attaches the live spectrum used by Step
func WithSource(src spectrum.Source) Option {
	return func(o *Orb) { o.source = src }
}

// WithPositionSink attaches the spatial-audio collaborator
func WithPositionSink(sink spatial.PositionSink) Option {
	return func(o *Orb) { o.audioSink = sink }
}

// WithTransformSink attaches the render collaborator
func WithTransformSink(sink spatial.TransformSink) Option {
	return func(o *Orb) { o.renderSink = sink }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orb) { o.logger = l }
}

// WithStatus publishes per-orb counters and gauges
func WithStatus(r *status.Registry) Option {
	return func(o *Orb) { o.registry = r }
}

func WithID(id uuid.UUID) Option {
	return func(o *Orb) { o.id = id }
}
