package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"

	"github.com/lixenwraith/orbviz/spectrum"
)

// SampleReader supplies the newest time-domain samples
type SampleReader interface {
	Latest(dst []float64)
}

// Analyser turns a sample history into a byte frequency spectrum
// Blackman window, magnitude/N, exponential smoothing over frames, dB mapped onto [0, 255]
type Analyser struct {
	mu     sync.Mutex
	reader SampleReader

	fftSize   int
	smoothing float64
	minDb     float64
	maxDb     float64

	window   []float64
	samples  []float64
	smoothed []float64
}

// NewAnalyser reads from r using the analyser settings of cfg
func NewAnalyser(r SampleReader, cfg *AudioConfig) *Analyser {
	n := cfg.FFTSize
	w := make([]float64, n)
	const a0, a1, a2 = 0.42, 0.5, 0.08
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return &Analyser{
		reader:    r,
		fftSize:   n,
		smoothing: cfg.Smoothing,
		minDb:     cfg.MinDecibels,
		maxDb:     cfg.MaxDecibels,
		window:    w,
		samples:   make([]float64, n),
		smoothed:  make([]float64, n/2),
	}
}

// BinCount returns the number of frequency bins
func (a *Analyser) BinCount() int {
	return a.fftSize / 2
}

// update runs one analysis frame over the newest samples
func (a *Analyser) update() {
	a.reader.Latest(a.samples)
	for i := range a.samples {
		a.samples[i] *= a.window[i]
	}

	out := fft.FFTReal(a.samples)
	scale := 1 / float64(a.fftSize)
	k := a.smoothing
	for i := range a.smoothed {
		mag := cmplx.Abs(out[i]) * scale
		a.smoothed[i] = k*a.smoothed[i] + (1-k)*mag
	}
}

// ByteFrequencyData analyses the current history and writes min(len(dst), bins) bytes
// Implements spectrum.Source
func (a *Analyser) ByteFrequencyData(dst spectrum.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.update()
	rng := a.maxDb - a.minDb
	n := min(len(dst), len(a.smoothed))
	for i := range n {
		v := a.smoothed[i]
		if v <= 0 {
			dst[i] = 0
			continue
		}
		db := 20 * math.Log10(v)
		scaled := math.Floor(spectrum.MaxMagnitude * (db - a.minDb) / rng)
		switch {
		case scaled <= 0:
			dst[i] = 0
		case scaled >= spectrum.MaxMagnitude:
			dst[i] = spectrum.MaxMagnitude
		default:
			dst[i] = byte(scaled)
		}
	}
}

// FloatFrequencyData analyses and writes smoothed magnitudes in dB
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.update()
	n := min(len(dst), len(a.smoothed))
	for i := range n {
		dst[i] = 20 * math.Log10(a.smoothed[i])
	}
}
