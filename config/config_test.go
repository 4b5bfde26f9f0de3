package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/orbviz/audio"
	"github.com/lixenwraith/orbviz/motion"
	"github.com/lixenwraith/orbviz/spatial"
	"github.com/lixenwraith/orbviz/spectrum"
	"github.com/lixenwraith/orbviz/trail"
	"github.com/lixenwraith/orbviz/vmath"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orbviz.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Debug)
	assert.Equal(t, 60, cfg.Frame.FPS)
	assert.Equal(t, 256, cfg.Audio.FFTSize)
	assert.Equal(t, 0.8, cfg.Audio.Smoothing)
	assert.Equal(t, 20*time.Millisecond, cfg.Audio.BufferDuration)
	assert.Equal(t, "auto", cfg.Audio.Backend)
	assert.Equal(t, audio.DefaultPannerConfig(), cfg.Audio.Panner)
	assert.Equal(t, motion.DefaultRoom(), cfg.Room)
	assert.Equal(t, 6, cfg.Render.Hair.Slices)

	require.Len(t, cfg.Orbs, 1)
	ocs, err := cfg.OrbConfigs()
	require.NoError(t, err)
	oc := ocs[0]
	assert.Equal(t, "orb", oc.Name)
	assert.Equal(t, motion.DefaultSpeed, oc.Speed)
	assert.Equal(t, motion.DefaultArrivalThreshold, oc.ArrivalThreshold)
	assert.Equal(t, trail.DefaultCount, oc.Trail.Count)
	assert.Equal(t, trail.DefaultSpacing, oc.Trail.Spacing)
	assert.Equal(t, spectrum.DefaultBins(), oc.Bins)
	assert.Equal(t, 128, oc.FrameLen)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[frame]
fps = 30
frames = 120
headless = true

[audio]
backend = "none"
bufferDuration = "10ms"

[panner]
distanceModel = "linear"
rolloff = 1

[room.min]
x = -4
y = -2
z = -4

[room.max]
x = 4
y = 2
z = 4

[[orbs]]
name = "left"
position = { x = -2, y = 0, z = 0 }
startColor = "#00ff00"
endColor = "#ff00ff"
speed = 0.0
particles = 12
decay = 0.5
syncMode = "x"
seed = 7
source = { tones = [440.0] }
bins = { low = 1, mid = 2, high = 3 }

[[orbs]]
name = "right"
source = { file = "music.mp3" }
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, FrameConfig{FPS: 30, Frames: 120, Headless: true}, cfg.Frame)
	assert.Equal(t, "none", cfg.Audio.Backend)
	assert.Equal(t, 10*time.Millisecond, cfg.Audio.BufferDuration)
	assert.Equal(t, audio.DistanceLinear, cfg.Audio.Panner.DistanceModel)
	assert.Equal(t, 1.0, cfg.Audio.Panner.Rolloff)
	assert.Equal(t, 100.0, cfg.Audio.Panner.MaxDistance)
	assert.Equal(t, vmath.V3F(4, 2, 4), cfg.Room.Max)

	require.Len(t, cfg.Orbs, 2)
	left := cfg.Orbs[0]
	assert.Equal(t, []float64{440}, left.Source.Tones)
	assert.Equal(t, "music.mp3", cfg.Orbs[1].Source.File)
	assert.NotNil(t, left.Rand())
	assert.Nil(t, cfg.Orbs[1].Rand())

	ocs, err := cfg.OrbConfigs()
	require.NoError(t, err)
	oc := ocs[0]
	assert.Equal(t, vmath.V3F(-2, 0, 0), oc.Position)
	assert.Zero(t, oc.Speed)
	assert.Equal(t, 12, oc.Trail.Count)
	assert.Equal(t, 0.5, oc.Trail.Decay)
	assert.Equal(t, spatial.SyncX, oc.Spatial.Mode)
	assert.Equal(t, spectrum.Bins{Low: 1, Mid: 2, High: 3}, oc.Bins)
	assert.Equal(t, cfg.Room, oc.Room)
	assert.Equal(t, "#00ff00", oc.Trail.Gradient.Start.Hex())
	assert.Equal(t, oc.Trail.Gradient.Start, oc.Trail.SeedColor)

	// Unset fields fall back
	assert.Equal(t, motion.DefaultSpeed, ocs[1].Speed)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ORBVIZ_AUDIO_BACKEND", "none")
	t.Setenv("ORBVIZ_FRAME_FPS", "15")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Audio.Backend)
	assert.Equal(t, 15, cfg.Frame.FPS)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/orbviz.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_InvalidOrb(t *testing.T) {
	path := writeConfig(t, `
[[orbs]]
name = "bad"
decay = 1.5
bins = { low = 0, mid = 20, high = 200 }

[[orbs]]
name = "bad"
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, trail.ErrDecay)
	assert.ErrorIs(t, err, spectrum.ErrInvalidBin)
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestLoad_InvalidSections(t *testing.T) {
	path := writeConfig(t, `
[frame]
fps = 0

[audio]
fftSize = 100

[room.max]
x = -20
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, audio.ErrConfig)
	assert.ErrorIs(t, err, motion.ErrRoomBounds)
	assert.Contains(t, err.Error(), "frame.fps")
}

func TestOrbConfig_BadColorAndSync(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	_, err = cfg.OrbConfig(OrbEntry{Name: "c", StartColor: "not-a-color"})
	assert.Error(t, err)

	_, err = cfg.OrbConfig(OrbEntry{Name: "s", SyncMode: "diagonal"})
	assert.Error(t, err)

	oc, err := cfg.OrbConfig(OrbEntry{Name: "e", EndColor: "#ffffff"})
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", oc.Trail.Gradient.End.Hex())
}
