package audio

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

// mixerStopTimeout bounds the wait for a mixer stuck in a device write
const mixerStopTimeout = 2 * time.Second

// Channel is one positioned source with its analysis tap
type Channel struct {
	Name     string
	Tap      *Tap
	Analyser *Analyser
	Panner   *Panner
	ctrl     *beep.Ctrl
}

// AudioEngine mixes positioned sources and pipes the result to a system backend
// Without a backend it runs silent: streams are still pulled so analysers keep updating
type AudioEngine struct {
	config *AudioConfig
	logger zerolog.Logger

	streamMu sync.Mutex // Protects streams and channel ctrl state
	streams  *beep.Mixer
	channels []*Channel

	mixer   *Mixer
	backend *BackendConfig
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	ossFile *os.File // For direct OSS writes
	speaker bool

	running    atomic.Bool
	muted      atomic.Bool
	silentMode atomic.Bool

	wg sync.WaitGroup
}

// NewAudioEngine creates an audio engine; a nil cfg uses defaults
func NewAudioEngine(cfg *AudioConfig, logger zerolog.Logger) (*AudioEngine, error) {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &AudioEngine{
		config:  cfg,
		logger:  logger.With().Str("component", "audio").Logger(),
		streams: &beep.Mixer{},
	}, nil
}

// Config returns the engine configuration
func (ae *AudioEngine) Config() *AudioConfig {
	return ae.config
}

// AddChannel registers src: src -> tap -> panner -> mix
func (ae *AudioEngine) AddChannel(name string, src beep.Streamer) *Channel {
	tap := NewTap(src, ae.config.FFTSize*2)
	ch := &Channel{
		Name:     name,
		Tap:      tap,
		Analyser: NewAnalyser(tap, ae.config),
		Panner:   NewPanner(tap, ae.config.Panner, ae.config.MasterVolume),
	}
	ch.ctrl = &beep.Ctrl{Streamer: ch.Panner}

	ae.streamMu.Lock()
	ae.streams.Add(ch.ctrl)
	ae.channels = append(ae.channels, ch)
	ae.streamMu.Unlock()

	ae.logger.Debug().Str("channel", name).Msg("channel added")
	return ch
}

// SetPaused stops or resumes a channel; paused channels feed silence to their analyser
func (ae *AudioEngine) SetPaused(ch *Channel, paused bool) {
	ae.streamMu.Lock()
	ch.ctrl.Paused = paused
	ae.streamMu.Unlock()
}

// Channels returns registered channels in insertion order
func (ae *AudioEngine) Channels() []*Channel {
	ae.streamMu.Lock()
	defer ae.streamMu.Unlock()
	out := make([]*Channel, len(ae.channels))
	copy(out, ae.channels)
	return out
}

// Stream pulls the mix; implements beep.Streamer for the output stage
func (ae *AudioEngine) Stream(samples [][2]float64) (int, bool) {
	ae.streamMu.Lock()
	n, ok := ae.streams.Stream(samples)
	ae.streamMu.Unlock()
	if ae.muted.Load() {
		clear(samples[:n])
	}
	return n, ok
}

// Err implements beep.Streamer
func (ae *AudioEngine) Err() error {
	return nil
}

// Start launches the audio backend and mixer
// Backend failures degrade to silent mode rather than returning an error
func (ae *AudioEngine) Start() error {
	if ae.running.Load() {
		return ErrAlreadyRunning
	}

	backend := &BackendConfig{Type: BackendNone, Name: "none"}
	if ae.config.Enabled {
		b, err := SelectBackend(ae.config.Backend, ae.config.SampleRate)
		if err != nil {
			ae.logger.Warn().Err(err).Msg("no audio backend, running silent")
		} else {
			backend = b
		}
	}
	ae.backend = backend

	var writer io.Writer
	switch backend.Type {
	case BackendNone:
		writer = io.Discard
		ae.silentMode.Store(true)

	case BackendSpeaker:
		sr := beep.SampleRate(ae.config.SampleRate)
		if err := speaker.Init(sr, ae.config.BufferSamples()); err != nil {
			ae.logger.Warn().Err(err).Msg("speaker init failed, running silent")
			writer = io.Discard
			ae.silentMode.Store(true)
			break
		}
		speaker.Play(ae)
		ae.speaker = true
		ae.running.Store(true)
		ae.logger.Info().Str("backend", backend.Name).Msg("audio started")
		return nil

	case BackendOSS:
		f, err := os.OpenFile(backend.Path, os.O_WRONLY, 0)
		if err != nil {
			ae.logger.Warn().Err(err).Str("device", backend.Path).Msg("oss open failed, running silent")
			writer = io.Discard
			ae.silentMode.Store(true)
			break
		}
		ae.ossFile = f
		writer = f

	default:
		w, err := ae.spawn(backend)
		if err != nil {
			ae.logger.Warn().Err(err).Str("backend", backend.Name).Msg("backend start failed, running silent")
			writer = io.Discard
			ae.silentMode.Store(true)
			break
		}
		writer = w
	}

	ae.running.Store(true)
	ae.startMixer(writer)
	ae.logger.Info().Str("backend", backend.Name).Bool("silent", ae.silentMode.Load()).Msg("audio started")
	return nil
}

// startMixer pumps the mix into w and watches for pipe errors
func (ae *AudioEngine) startMixer(w io.Writer) {
	ae.mixer = NewMixer(w, ae, ae.config)
	ae.mixer.Start()

	ae.wg.Add(1)
	go ae.monitorMixer()
}

// spawn starts an exec-based backend and returns its stdin
func (ae *AudioEngine) spawn(backend *BackendConfig) (io.Writer, error) {
	cmd := exec.Command(backend.Path, backend.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("start %s: %w", backend.Path, err)
	}

	ae.cmd = cmd
	ae.stdin = stdin

	// Monitor process
	ae.wg.Add(1)
	go ae.monitorProcess()
	return stdin, nil
}

// monitorProcess watches for subprocess exit
func (ae *AudioEngine) monitorProcess() {
	defer ae.wg.Done()

	err := ae.cmd.Wait()
	if err != nil && ae.running.Load() && !ae.silentMode.Load() {
		ae.logger.Warn().Err(err).Msg("audio backend exited")
		ae.silentMode.Store(true)
	}
}

// monitorMixer watches for pipe errors
func (ae *AudioEngine) monitorMixer() {
	defer ae.wg.Done()

	select {
	case err := <-ae.mixer.Errors():
		ae.logger.Warn().Err(err).Msg("audio pipe failed, mixing to discard")
		ae.silentMode.Store(true)
	case <-ae.mixer.stopChan:
	}
}

// Stop terminates the engine
func (ae *AudioEngine) Stop() {
	if !ae.running.CompareAndSwap(true, false) {
		return
	}

	if ae.speaker {
		speaker.Clear()
		speaker.Close()
	}

	if ae.mixer != nil {
		ae.mixer.Stop()
	}

	// Closing the writers releases a mixer blocked on a full pipe
	if ae.stdin != nil {
		ae.stdin.Close()
	}

	if ae.ossFile != nil {
		ae.ossFile.Close()
	}

	if ae.cmd != nil && ae.cmd.Process != nil {
		ae.cmd.Process.Kill()
	}

	if ae.mixer != nil {
		select {
		case <-ae.mixer.Done():
		case <-time.After(mixerStopTimeout):
			ae.logger.Warn().Dur("timeout", mixerStopTimeout).Msg("mixer did not exit")
		}
	}

	ae.wg.Wait()
	ae.logger.Info().Msg("audio stopped")
}

// ToggleMute toggles mute state, returns true if now audible
func (ae *AudioEngine) ToggleMute() bool {
	newMute := !ae.muted.Load()
	ae.muted.Store(newMute)
	return !newMute
}

// IsMuted returns current mute state
func (ae *AudioEngine) IsMuted() bool {
	return ae.muted.Load()
}

// IsSilent returns true when output is discarded
func (ae *AudioEngine) IsSilent() bool {
	return ae.silentMode.Load()
}

// IsRunning returns true if engine is running (even in silent mode)
func (ae *AudioEngine) IsRunning() bool {
	return ae.running.Load()
}

// Backend returns the selected backend, nil before Start
func (ae *AudioEngine) Backend() *BackendConfig {
	return ae.backend
}

// GetStats returns mixer ticks and bytes written
func (ae *AudioEngine) GetStats() (ticks, written uint64) {
	if ae.mixer != nil {
		return ae.mixer.GetStats()
	}
	return 0, 0
}
