package audio

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/orbviz/spectrum"
	"github.com/lixenwraith/orbviz/vmath"
)

func silentConfig() *AudioConfig {
	cfg := DefaultAudioConfig()
	cfg.Backend = "none"
	cfg.BufferDuration = 2 * time.Millisecond
	return cfg
}

func TestNewAudioEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.FFTSize = 100
	if _, err := NewAudioEngine(cfg, zerolog.Nop()); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}

	ae, err := NewAudioEngine(nil, zerolog.Nop())
	if err != nil || ae.Config().FFTSize != 256 {
		t.Fatalf("nil config: %v", err)
	}
}

// TestAudioEngineSilentStartStop verifies engine lifecycle without a device
func TestAudioEngineSilentStartStop(t *testing.T) {
	ae, err := NewAudioEngine(silentConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := ae.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !ae.IsRunning() || !ae.IsSilent() {
		t.Fatal("expected running silent engine")
	}
	if ae.Backend().Type != BackendNone {
		t.Errorf("backend = %v", ae.Backend().Name)
	}
	if err := ae.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if ticks, _ := ae.GetStats(); ticks > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("mixer never ticked")
		}
		time.Sleep(time.Millisecond)
	}

	ae.Stop()
	if ae.IsRunning() {
		t.Error("expected engine to be stopped after Stop()")
	}
	// Verify idempotent stop
	ae.Stop()
}

func TestAudioEngineDisabledRunsSilent(t *testing.T) {
	cfg := silentConfig()
	cfg.Enabled = false
	cfg.Backend = "pacat"
	ae, _ := NewAudioEngine(cfg, zerolog.Nop())
	if err := ae.Start(); err != nil {
		t.Fatal(err)
	}
	defer ae.Stop()
	if !ae.IsSilent() {
		t.Error("disabled engine should not open a backend")
	}
}

func TestAudioEngineChannelFeedsAnalyser(t *testing.T) {
	ae, _ := NewAudioEngine(silentConfig(), zerolog.Nop())

	// 20 * 44100 / 256 lands on bin 20
	src, err := Tone(44100, 20*44100.0/256)
	if err != nil {
		t.Fatal(err)
	}
	ch := ae.AddChannel("a", src)
	if got := len(ae.Channels()); got != 1 {
		t.Fatalf("channels = %d", got)
	}

	buf := make([][2]float64, 512)
	ae.Stream(buf)

	frame := make(spectrum.Frame, ch.Analyser.BinCount())
	ch.Analyser.ByteFrequencyData(frame)
	if frame[20] < 200 {
		t.Errorf("tone bin = %d", frame[20])
	}
	if frame[60] > 10 {
		t.Errorf("far bin = %d", frame[60])
	}
}

func TestAudioEngineMuteKeepsAnalysis(t *testing.T) {
	ae, _ := NewAudioEngine(silentConfig(), zerolog.Nop())
	ch := ae.AddChannel("a", constant(0.5, 0.5))
	ch.Panner.SetPosition(vmath.V3F(0, 0, -1))

	if ae.ToggleMute() || !ae.IsMuted() {
		t.Fatal("expected muted")
	}

	buf := make([][2]float64, 8)
	ae.Stream(buf)
	for _, f := range buf {
		if f != [2]float64{} {
			t.Fatalf("muted output = %v", f)
		}
	}

	latest := make([]float64, 1)
	ch.Tap.Latest(latest)
	if latest[0] != 0.5 {
		t.Errorf("tap = %g, want 0.5", latest[0])
	}

	if !ae.ToggleMute() {
		t.Error("expected audible after second toggle")
	}
	ae.Stream(buf)
	if buf[0][0] == 0 {
		t.Error("unmuted output silent")
	}
}

func TestAudioEnginePausedChannel(t *testing.T) {
	ae, _ := NewAudioEngine(silentConfig(), zerolog.Nop())
	ch := ae.AddChannel("a", constant(0.5, 0.5))
	ae.SetPaused(ch, true)

	buf := make([][2]float64, 4)
	ae.Stream(buf)
	if buf[0] != [2]float64{} {
		t.Errorf("paused output = %v", buf[0])
	}
}

func TestAudioEnginePipeFailureKeepsAnalysing(t *testing.T) {
	ae, _ := NewAudioEngine(silentConfig(), zerolog.Nop())
	ch := ae.AddChannel("a", ramp())

	ae.running.Store(true)
	ae.startMixer(failWriter{})
	defer ae.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for !ae.IsSilent() {
		if time.Now().After(deadline) {
			t.Fatal("pipe failure not detected")
		}
		time.Sleep(time.Millisecond)
	}

	latest := make([]float64, 1)
	ch.Tap.Latest(latest)
	first := latest[0]
	deadline = time.Now().Add(2 * time.Second)
	for {
		ch.Tap.Latest(latest)
		if latest[0] > first {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("tap frozen at %g after pipe failure", first)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAudioEngineStopReleasesBlockedPipe(t *testing.T) {
	ae, _ := NewAudioEngine(silentConfig(), zerolog.Nop())
	ae.AddChannel("a", constant(0.1, 0.1))

	pr, pw := io.Pipe()
	defer pr.Close()
	ae.stdin = pw
	ae.running.Store(true)
	ae.startMixer(pw)
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		ae.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(mixerStopTimeout + time.Second):
		t.Fatal("Stop hung on a stalled backend")
	}
	select {
	case <-ae.mixer.Done():
	default:
		t.Error("mixer still running after Stop")
	}
}
