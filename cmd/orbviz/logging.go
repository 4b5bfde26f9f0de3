package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/orbviz/config"
)

const (
	logFileName = "orbviz.log"
	maxLogSize  = 10 * 1024 * 1024 // 10 MiB
)

// setupLogging returns a file-backed logger when debug is set, otherwise a no-op logger
// The terminal belongs to the renderer, so logs never go to stdout or stderr
// A log file beyond maxLogSize is rotated to a timestamped name
func setupLogging(cfg config.LogConfig) (zerolog.Logger, *os.File) {
	if !cfg.Debug {
		return zerolog.Nop(), nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return zerolog.Nop(), nil
	}

	logPath := filepath.Join(cfg.Dir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(cfg.Dir, fmt.Sprintf("orbviz-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, f
}
