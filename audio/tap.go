package audio

import (
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/orbviz/ring"
)

// Tap is a pass-through streamer that keeps the most recent mono samples
// It sits between the source and the panner so analysis sees the dry signal
type Tap struct {
	s   beep.Streamer
	mu  sync.Mutex
	buf []float64
	w   *ring.Index
}

// NewTap wraps s with a history of size samples
func NewTap(s beep.Streamer, size int) *Tap {
	if size < 1 {
		size = 1
	}
	w, _ := ring.New(0, size)
	return &Tap{
		s:   s,
		buf: make([]float64, size),
		w:   w,
	}
}

// Stream passes audio through while capturing a mono mix
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := range n {
		t.buf[t.w.Current()] = (samples[i][0] + samples[i][1]) / 2
		t.w.Increment()
	}
	t.mu.Unlock()
	return n, ok
}

// Err returns the underlying streamer's error
func (t *Tap) Err() error {
	return t.s.Err()
}

// Latest fills dst with the newest len(dst) samples in chronological order
// History shorter than dst is left-padded with whatever the ring held, zeros at start
func (t *Tap) Latest(dst []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := t.w.Capacity()
	n := min(len(dst), size)
	start := t.w.Peek(ring.Backward, n)
	for i := range n {
		dst[len(dst)-n+i] = t.buf[(start+i)%size]
	}
	for i := 0; i < len(dst)-n; i++ {
		dst[i] = 0
	}
}
