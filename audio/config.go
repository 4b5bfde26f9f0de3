package audio

import (
	"errors"
	"fmt"
	"time"
)

// AudioConfig holds engine, analyser and panner settings
type AudioConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	MasterVolume float64 `mapstructure:"masterVolume"`
	SampleRate   int     `mapstructure:"sampleRate"`
	// Backend is "auto", "none", "speaker" or a pipe backend name (pacat, pw-cat, aplay, sox, ffplay, oss)
	Backend        string        `mapstructure:"backend"`
	BufferDuration time.Duration `mapstructure:"bufferDuration"`

	// Analyser
	FFTSize     int     `mapstructure:"fftSize"`
	Smoothing   float64 `mapstructure:"smoothing"`
	MinDecibels float64 `mapstructure:"minDecibels"`
	MaxDecibels float64 `mapstructure:"maxDecibels"`

	Panner PannerConfig `mapstructure:"panner"`
}

// DefaultAudioConfig mirrors a browser analyser: 256-point FFT, 0.8 smoothing, -100..-30 dB
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:        true,
		MasterVolume:   0.5,
		SampleRate:     44100,
		Backend:        "auto",
		BufferDuration: 20 * time.Millisecond,
		FFTSize:        256,
		Smoothing:      0.8,
		MinDecibels:    -100,
		MaxDecibels:    -30,
		Panner:         DefaultPannerConfig(),
	}
}

// Validate rejects settings the analyser or mixer cannot run with
func (c *AudioConfig) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate %d", c.SampleRate))
	}
	if c.FFTSize < 32 || c.FFTSize&(c.FFTSize-1) != 0 {
		errs = append(errs, fmt.Errorf("fft size %d must be a power of two >= 32", c.FFTSize))
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("smoothing %g must be in [0, 1)", c.Smoothing))
	}
	if c.MinDecibels >= c.MaxDecibels {
		errs = append(errs, fmt.Errorf("decibel range [%g, %g] is empty", c.MinDecibels, c.MaxDecibels))
	}
	if c.MasterVolume < 0 || c.MasterVolume > 1 {
		errs = append(errs, fmt.Errorf("master volume %g must be in [0, 1]", c.MasterVolume))
	}
	if c.BufferDuration <= 0 {
		errs = append(errs, fmt.Errorf("buffer duration %s", c.BufferDuration))
	}
	if err := c.Panner.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return nil
}

// BufferSamples returns frames per mixer tick
func (c *AudioConfig) BufferSamples() int {
	return int(int64(c.SampleRate) * int64(c.BufferDuration) / int64(time.Second))
}

// BinCount returns the analyser output length
func (c *AudioConfig) BinCount() int {
	return c.FFTSize / 2
}
