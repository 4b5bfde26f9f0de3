package render

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

// RenderService owns the terminal screen and forwards its events
type RenderService struct {
	cfg    Config
	logger zerolog.Logger

	screen   tcell.Screen
	renderer *Renderer
	events   chan tcell.Event

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewService creates a render service; a nil screen opens the real terminal on Init
func NewService(cfg Config, logger zerolog.Logger, screen tcell.Screen) *RenderService {
	return &RenderService{
		cfg:    cfg,
		logger: logger.With().Str("component", "render").Logger(),
		screen: screen,
		events: make(chan tcell.Event, 100),
	}
}

// Name implements Service
func (s *RenderService) Name() string {
	return "render"
}

// Dependencies implements Service
// Audio starts first so backend warnings land before the screen takes over
func (s *RenderService) Dependencies() []string {
	return []string{"audio"}
}

// Init implements Service
func (s *RenderService) Init(args ...any) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if s.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal screen: %w", err)
		}
		s.screen = screen
	}
	return nil
}

// Start implements Service
func (s *RenderService) Start() error {
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	s.screen.HideCursor()

	renderer, err := NewRenderer(s.screen, s.cfg)
	if err != nil {
		s.screen.Fini()
		return err
	}
	s.renderer = renderer
	s.running.Store(true)

	s.wg.Add(1)
	go s.pollEvents()

	w, h := s.screen.Size()
	s.logger.Info().Int("width", w).Int("height", h).Msg("screen started")
	return nil
}

// pollEvents forwards screen events until Fini
func (s *RenderService) pollEvents() {
	defer s.wg.Done()
	defer close(s.events)
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case s.events <- ev:
		default:
			// Full buffer: the frame loop is behind, drop
		}
	}
}

// Stop implements Service
func (s *RenderService) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.screen.Fini()
	s.wg.Wait()
	s.logger.Info().Msg("screen stopped")
	return nil
}

// Events returns screen events; closed after Stop
func (s *RenderService) Events() <-chan tcell.Event {
	return s.events
}

// Renderer returns the scene renderer, nil before Start
func (s *RenderService) Renderer() *Renderer {
	return s.renderer
}

// Screen returns the underlying screen
func (s *RenderService) Screen() tcell.Screen {
	return s.screen
}
