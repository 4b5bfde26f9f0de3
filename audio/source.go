package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// SourceConfig selects what an orb listens to
// File takes precedence over Tones; an empty config yields silence
type SourceConfig struct {
	File  string    `mapstructure:"file"`
	Tones []float64 `mapstructure:"tones"`
}

// Open resolves cfg into a looping stream at sr
func (c SourceConfig) Open(sr beep.SampleRate) (beep.Streamer, error) {
	switch {
	case c.File != "":
		return OpenFile(c.File, sr)
	case len(c.Tones) > 0:
		return Tone(sr, c.Tones...)
	default:
		return beep.Silence(-1), nil
	}
}

// OpenFile decodes a wav or mp3 file, loops it and resamples to sr
func OpenFile(path string, sr beep.SampleRate) (beep.Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	looped := beep.Loop(-1, s)
	if format.SampleRate == sr {
		return looped, nil
	}
	return beep.Resample(4, format.SampleRate, sr, looped), nil
}

// Tone mixes sine generators at equal level
func Tone(sr beep.SampleRate, freqs ...float64) (beep.Streamer, error) {
	if len(freqs) == 0 {
		return nil, fmt.Errorf("%w: no tone frequencies", ErrUnsupportedSource)
	}
	tones := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		t, err := generators.SineTone(sr, f)
		if err != nil {
			return nil, fmt.Errorf("%w: tone %g Hz: %v", ErrUnsupportedSource, f, err)
		}
		tones = append(tones, t)
	}
	if len(tones) == 1 {
		return tones[0], nil
	}
	// Volume is log2-scaled with Base 2
	return &effects.Volume{
		Streamer: beep.Mix(tones...),
		Base:     2,
		Volume:   -math.Log2(float64(len(tones))),
	}, nil
}
