// Package spatial packages orb state for external audio and render engines
package spatial

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/orbviz/vmath"
)

// SyncMode selects which coordinates reach the audio engine each tick
type SyncMode int

const (
	// SyncXYZ pushes all three coordinates
	SyncXYZ SyncMode = iota
	// SyncX pushes x only, y and z keep their initial values
	SyncX
)

func (m SyncMode) String() string {
	switch m {
	case SyncXYZ:
		return "xyz"
	case SyncX:
		return "x"
	default:
		return fmt.Sprintf("syncmode(%d)", int(m))
	}
}

// ParseSyncMode accepts "xyz" (or empty) and "x"
func ParseSyncMode(s string) (SyncMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xyz":
		return SyncXYZ, nil
	case "x":
		return SyncX, nil
	default:
		return 0, fmt.Errorf("unknown sync mode %q", s)
	}
}

// PositionSink receives the orb position as a positional-audio parameter
type PositionSink interface {
	SetPosition(p vmath.Vec3F)
}

// TransformSink receives the orb group transform
type TransformSink interface {
	SetTransform(t Transform)
}

// Transform is a translation plus accumulated Euler rotation in radians
type Transform struct {
	Position vmath.Vec3F
	Rotation vmath.Vec3F
}

// DefaultRotationStep spins 0.005 rad around x and 0.01 rad around y per tick
func DefaultRotationStep() vmath.Vec3F {
	return vmath.V3F(0.005, 0.01, 0)
}

// Config parameterizes a Sync
type Config struct {
	Mode         SyncMode
	RotationStep vmath.Vec3F
	// WrapRotation keeps each angle in [0, 2π)
	WrapRotation bool
}

// DefaultConfig syncs all axes with the reference rotation speed
func DefaultConfig() Config {
	return Config{
		Mode:         SyncXYZ,
		RotationStep: DefaultRotationStep(),
		WrapRotation: true,
	}
}

// Sync holds the last pushed position and the accumulated rotation
type Sync struct {
	cfg      Config
	audio    vmath.Vec3F
	position vmath.Vec3F
	rotation vmath.Vec3F
}

// NewSync starts at the initial orb position with zero rotation
func NewSync(cfg Config, initial vmath.Vec3F) *Sync {
	return &Sync{
		cfg:      cfg,
		audio:    initial,
		position: initial,
	}
}

// Refresh records the new orb position and advances the rotation by one step
func (s *Sync) Refresh(p vmath.Vec3F) {
	s.position = p
	switch s.cfg.Mode {
	case SyncX:
		s.audio.X = p.X
	default:
		s.audio = p
	}

	r := vmath.V3FAdd(s.rotation, s.cfg.RotationStep)
	if s.cfg.WrapRotation {
		r = vmath.Vec3F{X: vmath.WrapAngle(r.X), Y: vmath.WrapAngle(r.Y), Z: vmath.WrapAngle(r.Z)}
	}
	s.rotation = r
}

// PositionForAudio returns the coordinates for the panner
func (s *Sync) PositionForAudio() vmath.Vec3F {
	return s.audio
}

// TransformForRender returns the group transform
func (s *Sync) TransformForRender() Transform {
	return Transform{Position: s.position, Rotation: s.rotation}
}

// Push forwards current state to any non-nil sinks
func (s *Sync) Push(audio PositionSink, render TransformSink) {
	if audio != nil {
		audio.SetPosition(s.audio)
	}
	if render != nil {
		render.SetTransform(s.TransformForRender())
	}
}
