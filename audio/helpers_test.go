package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// constant streams a fixed stereo frame forever
func constant(l, r float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{l, r}
		}
		return len(samples), true
	})
}

// ramp streams 1, 2, 3... on both channels
func ramp() beep.Streamer {
	next := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			next++
			samples[i] = [2]float64{next, next}
		}
		return len(samples), true
	})
}

// binSine is a SampleReader holding a sine centred on one FFT bin
type binSine struct {
	bin int
}

func (b binSine) Latest(dst []float64) {
	n := float64(len(dst))
	for i := range dst {
		dst[i] = math.Sin(2 * math.Pi * float64(b.bin) * float64(i) / n)
	}
}

type silentReader struct{}

func (silentReader) Latest(dst []float64) { clear(dst) }
