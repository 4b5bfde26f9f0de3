package audio

import (
	"errors"
)

// BackendType identifies the playback backend
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
	// BackendSpeaker plays through beep's speaker (oto) instead of a pipe
	BackendSpeaker
	// BackendNone discards output; analysers still receive data
	BackendNone
)

// BackendConfig describes a CLI audio backend fed raw s16le stereo
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

const (
	channels      = 2
	bitDepth      = 16
	bytesPerFrame = channels * (bitDepth / 8)
)

// Sentinel errors
var (
	ErrNoAudioBackend    = errors.New("no compatible audio backend found")
	ErrPipeClosed        = errors.New("audio pipe closed")
	ErrAlreadyRunning    = errors.New("audio engine already running")
	ErrUnsupportedSource = errors.New("unsupported audio source")
	ErrConfig            = errors.New("invalid audio configuration")
)
