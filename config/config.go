package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/viper"

	"github.com/lixenwraith/orbviz/audio"
	"github.com/lixenwraith/orbviz/motion"
	"github.com/lixenwraith/orbviz/orb"
	"github.com/lixenwraith/orbviz/render"
	"github.com/lixenwraith/orbviz/spatial"
	"github.com/lixenwraith/orbviz/spectrum"
	"github.com/lixenwraith/orbviz/trail"
	"github.com/lixenwraith/orbviz/vmath"
)

// EnvPrefix namespaces environment overrides: ORBVIZ_AUDIO_BACKEND=none
const EnvPrefix = "ORBVIZ"

var ErrInvalid = errors.New("invalid configuration")

// LogConfig selects log verbosity
type LogConfig struct {
	Level string `mapstructure:"level"`
	Debug bool   `mapstructure:"debug"`
	Dir   string `mapstructure:"dir"`
}

// FrameConfig drives the frame loop
type FrameConfig struct {
	FPS int `mapstructure:"fps"`
	// Frames stops after this many frames, zero runs until quit
	Frames   int  `mapstructure:"frames"`
	Headless bool `mapstructure:"headless"`
}

// OrbEntry is one [[orbs]] table; unset fields fall back to orb defaults
type OrbEntry struct {
	Name     string             `mapstructure:"name"`
	Source   audio.SourceConfig `mapstructure:"source"`
	Position vmath.Vec3F        `mapstructure:"position"`

	StartColor string `mapstructure:"startColor"`
	EndColor   string `mapstructure:"endColor"`

	Speed   *float64 `mapstructure:"speed"`
	Arrival *float64 `mapstructure:"arrival"`

	Particles     int          `mapstructure:"particles"`
	Spacing       *float64     `mapstructure:"spacing"`
	Drift         *float64     `mapstructure:"drift"`
	Decay         *float64     `mapstructure:"decay"`
	Spread        vmath.Vec3F  `mapstructure:"spread"`
	PositionScale *vmath.Vec3F `mapstructure:"positionScale"`
	ColorScale    *float64     `mapstructure:"colorScale"`
	RingCapacity  int          `mapstructure:"ringCapacity"`

	Bins     *spectrum.Bins `mapstructure:"bins"`
	SyncMode string         `mapstructure:"syncMode"`
	Rotation *vmath.Vec3F   `mapstructure:"rotation"`

	// Seed makes destination draws reproducible
	Seed *uint64 `mapstructure:"seed"`
}

// Config is the full application configuration
type Config struct {
	Log    LogConfig          `mapstructure:"log"`
	Frame  FrameConfig        `mapstructure:"frame"`
	Audio  audio.AudioConfig  `mapstructure:"audio"`
	Panner audio.PannerConfig `mapstructure:"panner"`
	Render render.Config      `mapstructure:"render"`
	Room   motion.Room        `mapstructure:"room"`
	Orbs   []OrbEntry         `mapstructure:"orbs"`
}

// DefaultOrb listens to a two-tone source that lights the low and mid bins
func DefaultOrb() OrbEntry {
	return OrbEntry{
		Name:   "orb",
		Source: audio.SourceConfig{Tones: []float64{110, 3445.3125}},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.dir", "logs")

	v.SetDefault("frame.fps", 60)
	v.SetDefault("frame.frames", 0)
	v.SetDefault("frame.headless", false)

	a := audio.DefaultAudioConfig()
	v.SetDefault("audio.enabled", a.Enabled)
	v.SetDefault("audio.masterVolume", a.MasterVolume)
	v.SetDefault("audio.sampleRate", a.SampleRate)
	v.SetDefault("audio.backend", a.Backend)
	v.SetDefault("audio.bufferDuration", a.BufferDuration.String())
	v.SetDefault("audio.fftSize", a.FFTSize)
	v.SetDefault("audio.smoothing", a.Smoothing)
	v.SetDefault("audio.minDecibels", a.MinDecibels)
	v.SetDefault("audio.maxDecibels", a.MaxDecibels)

	p := audio.DefaultPannerConfig()
	v.SetDefault("panner.panningModel", p.PanningModel)
	v.SetDefault("panner.distanceModel", p.DistanceModel)
	v.SetDefault("panner.refDistance", p.RefDistance)
	v.SetDefault("panner.maxDistance", p.MaxDistance)
	v.SetDefault("panner.rolloff", p.Rolloff)
	v.SetDefault("panner.orientation", map[string]any{"x": p.Orientation.X, "y": p.Orientation.Y, "z": p.Orientation.Z})

	r := render.DefaultConfig()
	v.SetDefault("render.camera.distance", r.Camera.Distance)
	v.SetDefault("render.camera.focal", r.Camera.Focal)
	v.SetDefault("render.camera.scale", r.Camera.Scale)
	v.SetDefault("render.camera.near", r.Camera.Near)
	v.SetDefault("render.hair.slices", r.Hair.Slices)
	v.SetDefault("render.hair.hairs", r.Hair.Hairs)
	v.SetDefault("render.minMagnitude", r.MinMagnitude)
	v.SetDefault("render.hud", r.HUD)

	room := motion.DefaultRoom()
	v.SetDefault("room.min", map[string]any{"x": room.Min.X, "y": room.Min.Y, "z": room.Min.Z})
	v.SetDefault("room.max", map[string]any{"x": room.Max.X, "y": room.Max.Y, "z": room.Max.Z})
}

// Load reads a TOML file (empty path: defaults only) and applies ORBVIZ_ env overrides
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if len(cfg.Orbs) == 0 {
		cfg.Orbs = []OrbEntry{DefaultOrb()}
	}
	cfg.Audio.Panner = cfg.Panner

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and every orb entry
func (c *Config) Validate() error {
	var errs []error
	if c.Frame.FPS <= 0 {
		errs = append(errs, fmt.Errorf("frame.fps %d must be positive", c.Frame.FPS))
	}
	if c.Frame.Frames < 0 {
		errs = append(errs, fmt.Errorf("frame.frames %d", c.Frame.Frames))
	}
	if err := c.Audio.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Render.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Room.Validate(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]bool, len(c.Orbs))
	for i, e := range c.Orbs {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("orbs[%d]: missing name", i))
		} else if seen[e.Name] {
			errs = append(errs, fmt.Errorf("orbs[%d]: duplicate name %q", i, e.Name))
		}
		seen[e.Name] = true
		if _, err := c.OrbConfig(e); err != nil {
			errs = append(errs, fmt.Errorf("orbs[%d] %s: %w", i, e.Name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// OrbConfig resolves an entry against orb defaults, the room and the analyser bin count
func (c *Config) OrbConfig(e OrbEntry) (orb.Config, error) {
	oc := orb.DefaultConfig()
	oc.Name = e.Name
	oc.Position = e.Position
	oc.Room = c.Room
	oc.FrameLen = c.Audio.BinCount()

	if e.Speed != nil {
		oc.Speed = *e.Speed
	}
	if e.Arrival != nil {
		oc.ArrivalThreshold = *e.Arrival
	}

	g := orb.DefaultGradient()
	if e.StartColor != "" || e.EndColor != "" {
		start, end := e.StartColor, e.EndColor
		if start == "" {
			start = g.Start.Hex()
		}
		if end == "" {
			end = g.End.Hex()
		}
		parsed, err := trail.ParseGradient(start, end)
		if err != nil {
			return orb.Config{}, err
		}
		g = parsed
	}

	count := trail.DefaultCount
	if e.Particles != 0 {
		count = e.Particles
	}
	tc := trail.DefaultConfig(count, g)
	if e.Spacing != nil {
		tc.Spacing = *e.Spacing
		tc.Drift = *e.Spacing
	}
	if e.Drift != nil {
		tc.Drift = *e.Drift
	}
	if e.Decay != nil {
		tc.Decay = *e.Decay
	}
	tc.Spread = e.Spread
	if e.PositionScale != nil {
		tc.PositionScale = *e.PositionScale
	}
	if e.ColorScale != nil {
		tc.ColorScale = *e.ColorScale
	}
	tc.RingCapacity = e.RingCapacity
	oc.Trail = tc

	if e.Bins != nil {
		oc.Bins = *e.Bins
	}

	if e.SyncMode != "" {
		mode, err := spatial.ParseSyncMode(e.SyncMode)
		if err != nil {
			return orb.Config{}, err
		}
		oc.Spatial.Mode = mode
	}
	if e.Rotation != nil {
		oc.Spatial.RotationStep = *e.Rotation
	}

	if err := oc.Validate(); err != nil {
		return orb.Config{}, err
	}
	return oc, nil
}

// OrbConfigs resolves every entry in order
func (c *Config) OrbConfigs() ([]orb.Config, error) {
	out := make([]orb.Config, 0, len(c.Orbs))
	for _, e := range c.Orbs {
		oc, err := c.OrbConfig(e)
		if err != nil {
			return nil, fmt.Errorf("orb %s: %w", e.Name, err)
		}
		out = append(out, oc)
	}
	return out, nil
}

// Rand returns the entry's seeded source, nil to use the global one
func (e OrbEntry) Rand() motion.Uniform {
	if e.Seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(*e.Seed, *e.Seed^0x9e3779b97f4a7c15))
}
