package main

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/orbviz/audio"
	"github.com/lixenwraith/orbviz/config"
	"github.com/lixenwraith/orbviz/orb"
	"github.com/lixenwraith/orbviz/render"
	"github.com/lixenwraith/orbviz/status"
)

// scene wires each orb to its audio channel and render layer
type scene struct {
	orbs     []*orb.Orb
	layers   []*render.Layer
	channels []*audio.Channel
	registry *status.Registry
}

// newScene opens every orb source, registers a channel per orb and builds the orbs
func newScene(cfg *config.Config, engine *audio.AudioEngine, reg *status.Registry, logger zerolog.Logger) (*scene, error) {
	sr := beep.SampleRate(cfg.Audio.SampleRate)
	s := &scene{registry: reg}

	for _, e := range cfg.Orbs {
		oc, err := cfg.OrbConfig(e)
		if err != nil {
			return nil, fmt.Errorf("orb %s: %w", e.Name, err)
		}
		src, err := e.Source.Open(sr)
		if err != nil {
			return nil, fmt.Errorf("orb %s: %w", e.Name, err)
		}

		ch := engine.AddChannel(e.Name, src)
		layer := render.NewLayer(e.Name)

		opts := []orb.Option{
			orb.WithSource(ch.Analyser),
			orb.WithPositionSink(ch.Panner),
			orb.WithTransformSink(layer),
			orb.WithLogger(logger),
			orb.WithStatus(reg),
		}
		if rng := e.Rand(); rng != nil {
			opts = append(opts, orb.WithRand(rng))
		}
		o, err := orb.New(oc, opts...)
		if err != nil {
			return nil, err
		}

		layer.Bind(o.Trail())
		layer.SetTransform(o.Transform())
		ch.Panner.SetPosition(o.PositionForAudio())

		s.orbs = append(s.orbs, o)
		s.layers = append(s.layers, layer)
		s.channels = append(s.channels, ch)
	}
	return s, nil
}

// step advances every orb by one frame
func (s *scene) step() error {
	var errs []error
	for _, o := range s.orbs {
		if err := o.Step(); err != nil {
			errs = append(errs, fmt.Errorf("orb %s: %w", o.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// hud formats one line per orb plus a control line
func (s *scene) hud(engine *audio.AudioEngine) []string {
	lines := make([]string, 0, len(s.orbs)+1)
	for i, o := range s.orbs {
		p := o.Position()
		l := o.Levels()
		lines = append(lines, fmt.Sprintf("%-8s pos %+6.2f %+6.2f %+6.2f  L%3d M%3d H%3d  gain %.3f",
			o.Name(), p.X, p.Y, p.Z, l.Low, l.Mid, l.High, s.channels[i].Panner.Gain()))
	}

	state := "audio"
	switch {
	case engine.IsSilent():
		state = "silent"
	case engine.IsMuted():
		state = "muted"
	}
	lines = append(lines, fmt.Sprintf("[%s] m:mute  q:quit", state))
	return lines
}
