// Package spectrum extracts coarse band amplitudes from a byte frequency spectrum
package spectrum

import (
	"errors"
	"fmt"
)

const (
	DefaultLowBin  = 0
	DefaultMidBin  = 20
	DefaultHighBin = 60

	// MaxMagnitude is the largest value a bin can hold
	MaxMagnitude = 255
)

var (
	ErrFrameTooShort = errors.New("spectral frame shorter than highest sampled bin")
	ErrInvalidBin    = errors.New("invalid frequency bin index")
)

// Frame is one analysis sample, one unsigned magnitude per frequency bin
type Frame []byte

// BinCount returns the number of frequency bins produced by an FFT of size fftSize
func BinCount(fftSize int) int {
	return fftSize / 2
}

// Source fills a frame with the current spectrum of a live stream
// Implementations copy min(len(dst), bins) values and leave the rest untouched
type Source interface {
	ByteFrequencyData(dst Frame)
}

// Bins selects the frequency bins sampled as low, mid and high bands
type Bins struct {
	Low  int `mapstructure:"low"`
	Mid  int `mapstructure:"mid"`
	High int `mapstructure:"high"`
}

// DefaultBins returns the 0/20/60 selection
func DefaultBins() Bins {
	return Bins{Low: DefaultLowBin, Mid: DefaultMidBin, High: DefaultHighBin}
}

// Max returns the largest configured bin index
func (b Bins) Max() int {
	return max(b.Low, b.Mid, b.High)
}

// MinFrameLen returns the shortest frame the bins can be sampled from
func (b Bins) MinFrameLen() int {
	return b.Max() + 1
}

// Validate rejects negative indices and indices beyond the available bin count
// binCount <= 0 skips the upper bound check
func (b Bins) Validate(binCount int) error {
	if b.Low < 0 || b.Mid < 0 || b.High < 0 {
		return fmt.Errorf("%w: negative index in %d/%d/%d", ErrInvalidBin, b.Low, b.Mid, b.High)
	}
	if binCount > 0 && b.Max() >= binCount {
		return fmt.Errorf("%w: bin %d not below bin count %d", ErrInvalidBin, b.Max(), binCount)
	}
	return nil
}

// Levels holds raw band magnitudes in [0, 255]
type Levels struct {
	Low, Mid, High uint8
}

// Bands holds band amplitudes normalized to [0, 1]
type Bands struct {
	Low, Mid, High float64
}

// Normalize divides each level by 255
func (l Levels) Normalize() Bands {
	return Bands{
		Low:  float64(l.Low) / MaxMagnitude,
		Mid:  float64(l.Mid) / MaxMagnitude,
		High: float64(l.High) / MaxMagnitude,
	}
}

// Sampler reads fixed bins out of frames
type Sampler struct {
	bins Bins
}

// NewSampler creates a sampler for the given bins
func NewSampler(bins Bins) (*Sampler, error) {
	if err := bins.Validate(0); err != nil {
		return nil, err
	}
	return &Sampler{bins: bins}, nil
}

// Bins returns the configured selection
func (s *Sampler) Bins() Bins {
	return s.bins
}

// Sample returns the three band levels of frame
// Frames too short for the highest bin are rejected, never clamped or interpolated
func (s *Sampler) Sample(frame Frame) (Levels, error) {
	if len(frame) < s.bins.MinFrameLen() {
		return Levels{}, fmt.Errorf("%w: len %d, need %d", ErrFrameTooShort, len(frame), s.bins.MinFrameLen())
	}
	return Levels{
		Low:  frame[s.bins.Low],
		Mid:  frame[s.bins.Mid],
		High: frame[s.bins.High],
	}, nil
}
