package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/orbviz/vmath"
)

type recordingSink struct {
	positions  []vmath.Vec3F
	transforms []Transform
}

func (r *recordingSink) SetPosition(p vmath.Vec3F) { r.positions = append(r.positions, p) }
func (r *recordingSink) SetTransform(t Transform)  { r.transforms = append(r.transforms, t) }

func TestRefresh_SyncXYZ(t *testing.T) {
	s := NewSync(DefaultConfig(), vmath.V3F(1, 2, 3))

	s.Refresh(vmath.V3F(4, 5, 6))

	assert.Equal(t, vmath.V3F(4, 5, 6), s.PositionForAudio())
	assert.Equal(t, vmath.V3F(4, 5, 6), s.TransformForRender().Position)
}

func TestRefresh_SyncXKeepsInitialYZ(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = SyncX
	s := NewSync(cfg, vmath.V3F(1, 2, 3))

	s.Refresh(vmath.V3F(4, 5, 6))

	assert.Equal(t, vmath.V3F(4, 2, 3), s.PositionForAudio())
	assert.Equal(t, vmath.V3F(4, 5, 6), s.TransformForRender().Position, "render always gets full position")
}

func TestRefresh_RotationAccumulates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WrapRotation = false
	s := NewSync(cfg, vmath.Vec3F{})

	for i := 0; i < 10; i++ {
		s.Refresh(vmath.Vec3F{})
	}

	r := s.TransformForRender().Rotation
	assert.InDelta(t, 0.05, r.X, 1e-12)
	assert.InDelta(t, 0.1, r.Y, 1e-12)
	assert.Equal(t, 0.0, r.Z)
}

func TestRefresh_RotationWraps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RotationStep = vmath.V3F(math.Pi, 0, 0)
	s := NewSync(cfg, vmath.Vec3F{})

	for i := 0; i < 5; i++ {
		s.Refresh(vmath.Vec3F{})
		r := s.TransformForRender().Rotation
		assert.GreaterOrEqual(t, r.X, 0.0)
		assert.Less(t, r.X, vmath.TwoPi)
	}
	assert.InDelta(t, math.Pi, s.TransformForRender().Rotation.X, 1e-9)
}

func TestPush(t *testing.T) {
	s := NewSync(DefaultConfig(), vmath.Vec3F{})
	s.Refresh(vmath.V3F(1, 1, 1))
	sink := &recordingSink{}

	s.Push(sink, sink)
	s.Push(nil, nil)

	require.Len(t, sink.positions, 1)
	require.Len(t, sink.transforms, 1)
	assert.Equal(t, vmath.V3F(1, 1, 1), sink.positions[0])
	assert.Equal(t, s.TransformForRender(), sink.transforms[0])
}

func TestParseSyncMode(t *testing.T) {
	for in, want := range map[string]SyncMode{"": SyncXYZ, "xyz": SyncXYZ, "X": SyncX} {
		got, err := ParseSyncMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSyncMode("xy")
	assert.Error(t, err)
}
