package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/orbviz/audio"
	"github.com/lixenwraith/orbviz/config"
	"github.com/lixenwraith/orbviz/status"
)

func silentConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("ORBVIZ_AUDIO_BACKEND", "none")
	t.Setenv("ORBVIZ_FRAME_HEADLESS", "true")
	t.Setenv("ORBVIZ_FRAME_FPS", "200")
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestSceneStepsOrbsFromAnalyser(t *testing.T) {
	cfg := silentConfig(t)
	engine, err := audio.NewAudioEngine(&cfg.Audio, zerolog.Nop())
	require.NoError(t, err)

	reg := status.NewRegistry()
	s, err := newScene(cfg, engine, reg, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, s.orbs, 1)
	require.Len(t, engine.Channels(), 1)

	// Pull audio so the tap holds a full analysis window
	engine.Stream(make([][2]float64, 1024))

	start := s.orbs[0].Position()
	for range 5 {
		require.NoError(t, s.step())
	}
	o := s.orbs[0]
	assert.Equal(t, uint64(5), o.Ticks())
	assert.NotEqual(t, start, o.Position())

	// Default source lights the low and mid bins
	assert.Greater(t, o.Levels().Low, uint8(0))
	assert.Greater(t, o.Levels().Mid, uint8(0))

	// Sinks saw the latest state
	assert.Equal(t, o.Transform(), s.layers[0].Transform())
	assert.Equal(t, o.PositionForAudio(), s.channels[0].Panner.Position())

	counters, _ := reg.Snapshot()
	assert.Equal(t, int64(5), counters["orb.orb.ticks"])

	hud := s.hud(engine)
	require.Len(t, hud, 2)
	assert.Contains(t, hud[0], "orb")
	assert.Contains(t, hud[1], "q:quit")
}

func TestSceneRejectsBadSource(t *testing.T) {
	cfg := silentConfig(t)
	cfg.Orbs[0].Source = audio.SourceConfig{File: "clip.flac"}
	engine, err := audio.NewAudioEngine(&cfg.Audio, zerolog.Nop())
	require.NoError(t, err)

	_, err = newScene(cfg, engine, status.NewRegistry(), zerolog.Nop())
	assert.Error(t, err)
}

func TestRunHeadlessFrames(t *testing.T) {
	cfg := silentConfig(t)
	cfg.Frame.Frames = 5
	require.NoError(t, run(cfg, zerolog.Nop()))
}
