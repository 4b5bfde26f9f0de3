package render

import (
	"sync"

	"github.com/lixenwraith/orbviz/spatial"
	"github.com/lixenwraith/orbviz/trail"
)

// Layer is one orb as the renderer sees it
// Implements spatial.TransformSink; the trail is bound after the orb exists
type Layer struct {
	name string

	mu        sync.Mutex
	transform spatial.Transform
	trail     *trail.Trail
}

// NewLayer creates an unbound layer
func NewLayer(name string) *Layer {
	return &Layer{name: name}
}

// Name returns the layer label
func (l *Layer) Name() string { return l.name }

// Bind attaches the trail to draw
func (l *Layer) Bind(t *trail.Trail) {
	l.mu.Lock()
	l.trail = t
	l.mu.Unlock()
}

// SetTransform implements spatial.TransformSink
func (l *Layer) SetTransform(t spatial.Transform) {
	l.mu.Lock()
	l.transform = t
	l.mu.Unlock()
}

// Transform returns the last pushed transform
func (l *Layer) Transform() spatial.Transform {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transform
}

func (l *Layer) snapshot() (spatial.Transform, *trail.Trail) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transform, l.trail
}
