package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// Mixer pulls a stereo stream on a fixed cadence and writes s16le frames
type Mixer struct {
	output   io.Writer
	source   beep.Streamer
	interval time.Duration
	samples  int

	stopChan chan struct{}
	stopped  atomic.Bool
	done     chan struct{}

	// Stats
	ticks   atomic.Uint64
	written atomic.Uint64

	// Error signaling
	errChan chan error
}

// NewMixer creates a mixer reading source and writing to out
func NewMixer(out io.Writer, source beep.Streamer, cfg *AudioConfig) *Mixer {
	return &Mixer{
		output:   out,
		source:   source,
		interval: cfg.BufferDuration,
		samples:  max(cfg.BufferSamples(), 1),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		errChan:  make(chan error, 1),
	}
}

// Start begins the mixing loop
func (m *Mixer) Start() {
	go m.loop()
}

// Stop signals the mixer to halt without waiting
// A write blocked on a stalled backend only returns once the writer is closed
func (m *Mixer) Stop() {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stopChan)
	}
}

// Done is closed when the loop has exited
func (m *Mixer) Done() <-chan struct{} {
	return m.done
}

// Errors returns channel for pipe errors
func (m *Mixer) Errors() <-chan error {
	return m.errChan
}

// loop is the main mixing goroutine
// After a write error output falls back to io.Discard so the source keeps being pulled
func (m *Mixer) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	buf := make([][2]float64, m.samples)
	out := make([]byte, m.samples*bytesPerFrame)

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			if err := m.pump(buf, out); err != nil {
				select {
				case m.errChan <- err:
				default:
				}
				m.output = io.Discard
			}
		}
	}
}

// pump streams one buffer and writes it out
func (m *Mixer) pump(buf [][2]float64, out []byte) error {
	clear(buf)
	// Short reads leave the cleared tail as silence to keep the pipe fed
	m.source.Stream(buf)

	floatToBytes(buf, out)

	if _, err := m.output.Write(out); err != nil {
		return fmt.Errorf("%w: %v", ErrPipeClosed, err)
	}
	m.ticks.Add(1)
	m.written.Add(uint64(len(out)))
	return nil
}

// floatToBytes converts stereo float frames to interleaved int16 LE bytes
// Applies soft limiting before hard clip
func floatToBytes(in [][2]float64, out []byte) {
	for i, frame := range in {
		for c, v := range frame {
			// Soft limiter (tanh-style)
			if v > 0.8 {
				v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
			} else if v < -0.8 {
				v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
			}

			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}

			binary.LittleEndian.PutUint16(out[i*bytesPerFrame+c*2:], uint16(int16(v*32767)))
		}
	}
}

// GetStats returns mixer ticks and bytes written
func (m *Mixer) GetStats() (ticks, written uint64) {
	return m.ticks.Load(), m.written.Load()
}
