package audio

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// DetectBackend searches for available audio backends
// Priority: pacat > pw-cat > aplay > play (sox) > ffplay > OSS
func DetectBackend(sampleRate int) (*BackendConfig, error) {
	for _, b := range candidates(sampleRate) {
		if b.Type == BackendOSS {
			if runtime.GOOS != "freebsd" {
				continue
			}
			if _, err := os.Stat(b.Path); err == nil {
				return b, nil
			}
			continue
		}
		if path, err := exec.LookPath(b.Path); err == nil {
			b.Path = path
			return b, nil
		}
	}
	return nil, ErrNoAudioBackend
}

// SelectBackend resolves a configured backend name
// "auto" detects, "none" returns the discard backend, "speaker" uses beep's device output
func SelectBackend(name string, sampleRate int) (*BackendConfig, error) {
	switch name {
	case "", "auto":
		return DetectBackend(sampleRate)
	case "none":
		return &BackendConfig{Type: BackendNone, Name: "none"}, nil
	case "speaker":
		return &BackendConfig{Type: BackendSpeaker, Name: "speaker"}, nil
	}
	for _, b := range candidates(sampleRate) {
		if b.Name != name {
			continue
		}
		if b.Type == BackendOSS {
			return b, nil
		}
		path, err := exec.LookPath(b.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoAudioBackend, name, err)
		}
		b.Path = path
		return b, nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrNoAudioBackend, name)
}

func candidates(sampleRate int) []*BackendConfig {
	rate := strconv.Itoa(sampleRate)
	return []*BackendConfig{
		{
			// PulseAudio/PipeWire (works on Linux and FreeBSD with pulse installed)
			Type: BackendPulse,
			Name: "pacat",
			Path: "pacat",
			Args: []string{"--raw", "--format=s16le", "--rate=" + rate, "--channels=2", "--latency-msec=50", "--playback"},
		},
		{
			Type: BackendPipeWire,
			Name: "pw-cat",
			Path: "pw-cat",
			Args: []string{"--playback", "--format=s16", "--rate=" + rate, "--channels=2", "--latency=50ms", "-"},
		},
		{
			Type: BackendALSA,
			Name: "aplay",
			Path: "aplay",
			Args: []string{"-t", "raw", "-f", "S16_LE", "-r", rate, "-c", "2", "-q"},
		},
		{
			Type: BackendSoX,
			Name: "sox",
			Path: "play",
			Args: []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", rate, "-", "-d", "-q"},
		},
		{
			// Heavyweight fallback
			Type: BackendFFplay,
			Name: "ffplay",
			Path: "ffplay",
			Args: []string{
				"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", rate,
				"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet",
			},
		},
		{
			// FreeBSD OSS, direct device write
			Type: BackendOSS,
			Name: "oss",
			Path: "/dev/dsp",
		},
	}
}
