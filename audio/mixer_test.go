package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestFloatToBytes(t *testing.T) {
	in := [][2]float64{{0.25, -0.25}, {1.5, -1.5}, {0, 0}}
	out := make([]byte, len(in)*bytesPerFrame)
	floatToBytes(in, out)

	sample := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(out[i*2:]))
	}
	quarter, knee := 0.25, 0.8
	if got := sample(0); got != int16(quarter*32767) {
		t.Errorf("L = %d", got)
	}
	if got := sample(1); got != -int16(quarter*32767) {
		t.Errorf("R = %d", got)
	}
	// Soft limited, not clipped
	if got := sample(2); got <= int16(knee*32767) || got >= 32767 {
		t.Errorf("limited L = %d", got)
	}
	if sample(3) != -sample(2) {
		t.Errorf("limiter asymmetric: %d vs %d", sample(2), sample(3))
	}
	if sample(4) != 0 || sample(5) != 0 {
		t.Error("silence not zero")
	}
}

func TestMixerPump(t *testing.T) {
	cfg := DefaultAudioConfig()
	var out bytes.Buffer
	m := NewMixer(&out, constant(0.25, 0.25), cfg)

	buf := make([][2]float64, m.samples)
	raw := make([]byte, m.samples*bytesPerFrame)
	if err := m.pump(buf, raw); err != nil {
		t.Fatalf("pump: %v", err)
	}
	if out.Len() != cfg.BufferSamples()*bytesPerFrame {
		t.Fatalf("wrote %d bytes, want %d", out.Len(), cfg.BufferSamples()*bytesPerFrame)
	}
	ticks, written := m.GetStats()
	if ticks != 1 || written != uint64(out.Len()) {
		t.Errorf("stats = %d, %d", ticks, written)
	}
}

func TestMixerPumpPipeError(t *testing.T) {
	m := NewMixer(failWriter{}, constant(0, 0), DefaultAudioConfig())
	err := m.pump(make([][2]float64, m.samples), make([]byte, m.samples*bytesPerFrame))
	if !errors.Is(err, ErrPipeClosed) {
		t.Fatalf("err = %v, want ErrPipeClosed", err)
	}
}

func TestMixerLoopReportsError(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.BufferDuration = time.Millisecond
	m := NewMixer(failWriter{}, constant(0, 0), cfg)
	m.Start()
	defer m.Stop()

	select {
	case err := <-m.Errors():
		if !errors.Is(err, ErrPipeClosed) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no pipe error reported")
	}
}

// countingSource counts Stream calls
type countingSource struct {
	pulls atomic.Int64
}

func (c *countingSource) Stream(samples [][2]float64) (int, bool) {
	c.pulls.Add(1)
	clear(samples)
	return len(samples), true
}

func (c *countingSource) Err() error { return nil }

func TestMixerKeepsPullingAfterPipeError(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.BufferDuration = time.Millisecond
	src := &countingSource{}
	m := NewMixer(failWriter{}, src, cfg)
	m.Start()
	defer m.Stop()

	select {
	case <-m.Errors():
	case <-time.After(2 * time.Second):
		t.Fatal("no pipe error reported")
	}

	after := src.pulls.Load()
	deadline := time.Now().Add(2 * time.Second)
	for src.pulls.Load() < after+5 {
		if time.Now().After(deadline) {
			t.Fatalf("source pulls stuck at %d after pipe error", src.pulls.Load())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestMixerStopWithBlockedWriter(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.BufferDuration = time.Millisecond
	pr, pw := io.Pipe()
	m := NewMixer(pw, beep.Silence(-1), cfg)
	m.Start()
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a stalled writer")
	}

	// Closing the reader releases the pending write
	pr.Close()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after writer closed")
	}
}
