package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/orbviz/audio"
	"github.com/lixenwraith/orbviz/config"
	"github.com/lixenwraith/orbviz/render"
	"github.com/lixenwraith/orbviz/service"
	"github.com/lixenwraith/orbviz/status"
)

var (
	configFlag   = flag.String("config", "", "Path to orbviz.toml")
	debugFlag    = flag.Bool("debug", false, "Write logs to the log directory")
	headlessFlag = flag.Bool("headless", false, "Run without a terminal screen")
	framesFlag   = flag.Int("frames", -1, "Stop after N frames, 0 runs until quit")
	muteFlag     = flag.Bool("mute", false, "Start with audio muted")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orbviz: %v\n", err)
		os.Exit(1)
	}
	if *debugFlag {
		cfg.Log.Debug = true
	}
	if *headlessFlag {
		cfg.Frame.Headless = true
	}
	if *framesFlag >= 0 {
		cfg.Frame.Frames = *framesFlag
	}

	logger, logFile := setupLogging(cfg.Log)
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("exit")
		fmt.Fprintf(os.Stderr, "orbviz: %v\n", err)
		os.Exit(1)
	}
}

// app is the running frame loop and its services
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	hub    *service.Hub
	audio  *audio.AudioService
	screen *render.RenderService
	scene  *scene
	reg    *status.Registry
}

func run(cfg *config.Config, logger zerolog.Logger) (err error) {
	a := &app{
		cfg:    cfg,
		logger: logger,
		hub:    service.NewHub(logger),
		reg:    status.NewRegistry(),
	}

	// Panic Recovery: stop services so the terminal is restored before printing
	defer func() {
		if r := recover(); r != nil {
			a.hub.StopAll()
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("crashed")
			fmt.Fprintf(os.Stderr, "\n\x1b[31mORBVIZ CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	a.audio = audio.NewService(&cfg.Audio, logger)
	if err := a.hub.Register(a.audio); err != nil {
		return err
	}
	if !cfg.Frame.Headless {
		a.screen = render.NewService(cfg.Render, logger, nil)
		if err := a.hub.Register(a.screen); err != nil {
			return err
		}
	}

	if err := a.hub.InitAll(*muteFlag); err != nil {
		return err
	}
	engine := a.audio.Engine()
	if engine == nil {
		return errors.New("audio engine unavailable")
	}

	a.scene, err = newScene(cfg, engine, a.reg, logger)
	if err != nil {
		return err
	}

	if err := a.hub.StartAll(); err != nil {
		return err
	}
	defer func() {
		if stopErr := a.hub.StopAll(); stopErr != nil && err == nil {
			err = stopErr
		}
		a.logSummary()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return a.loop(ctx, engine)
}

// loop ticks the scene at the configured frame rate until quit, signal or frame limit
func (a *app) loop(ctx context.Context, engine *audio.AudioEngine) error {
	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.Frame.FPS))
	defer ticker.Stop()

	var events <-chan tcell.Event
	var renderer *render.Renderer
	if a.screen != nil {
		events = a.screen.Events()
		renderer = a.screen.Renderer()
	}

	frames := 0
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.handleEvent(ev, engine) {
				return nil
			}

		case <-ticker.C:
			if err := a.scene.step(); err != nil {
				a.logger.Warn().Err(err).Msg("frame dropped")
			}
			if renderer != nil {
				hud := a.scene.hud(engine)
				renderer.Draw(a.scene.layers, hud...)
			}

			frames++
			if a.cfg.Frame.Frames > 0 && frames >= a.cfg.Frame.Frames {
				return nil
			}
		}
	}
}

// handleEvent returns false to quit
func (a *app) handleEvent(ev tcell.Event, engine *audio.AudioEngine) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'm':
			audible := engine.ToggleMute()
			a.logger.Info().Bool("audible", audible).Msg("mute toggled")
		}
	case *tcell.EventResize:
		a.screen.Screen().Sync()
	}
	return true
}

// logSummary writes one line of final metrics per orb
func (a *app) logSummary() {
	for _, o := range a.scene.orbs {
		scope := status.Key("orb", o.Name())
		ev := a.logger.Info().Str("orb", o.Name())
		a.reg.Counters.RangeScope(scope, func(name string, v *atomic.Int64) { ev = ev.Int64(name, v.Load()) })
		a.reg.Gauges.RangeScope(scope, func(name string, v *status.AtomicFloat) { ev = ev.Float64(name, v.Get()) })
		ev.Msg("orb summary")
	}
	ticks, written := a.audio.Engine().GetStats()
	a.logger.Info().Uint64("audio.ticks", ticks).Uint64("audio.bytes", written).Msg("summary")
}
