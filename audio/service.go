package audio

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// AudioService wraps AudioEngine as a service.Service
// Handles graceful degradation when the engine cannot be built
type AudioService struct {
	config      *AudioConfig
	logger      zerolog.Logger
	audioEngine *AudioEngine
	disabled    atomic.Bool
}

// NewService creates a new audio service
func NewService(cfg *AudioConfig, logger zerolog.Logger) *AudioService {
	return &AudioService{config: cfg, logger: logger}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: bool - start muted
// Engine construction failure sets the disabled flag and returns no error
func (s *AudioService) Init(args ...any) error {
	audioEngine, err := NewAudioEngine(s.config, s.logger)
	if err != nil {
		s.logger.Warn().Err(err).Msg("audio disabled")
		s.disabled.Store(true)
		return nil
	}
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok && muted {
			audioEngine.ToggleMute()
		}
	}
	s.audioEngine = audioEngine
	return nil
}

// Start implements Service
func (s *AudioService) Start() error {
	if s.disabled.Load() || s.audioEngine == nil {
		return nil
	}
	return s.audioEngine.Start()
}

// Stop implements Service
func (s *AudioService) Stop() error {
	if s.audioEngine != nil && s.audioEngine.IsRunning() {
		s.audioEngine.Stop()
	}
	return nil
}

// IsDisabled returns true if audio is unavailable
func (s *AudioService) IsDisabled() bool {
	return s.disabled.Load()
}

// Engine returns the underlying AudioEngine (nil if disabled)
func (s *AudioService) Engine() *AudioEngine {
	if s.disabled.Load() {
		return nil
	}
	return s.audioEngine
}
