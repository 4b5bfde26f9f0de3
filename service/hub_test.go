package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	deps     []string
	log      *[]string
	initErr  error
	startErr error
	stopErr  error
	args     []any
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }

func (f *fakeService) Init(args ...any) error {
	f.args = args
	*f.log = append(*f.log, "init:"+f.name)
	return f.initErr
}

func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start:"+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}

func newHub(t *testing.T, svcs ...*fakeService) *Hub {
	t.Helper()
	h := NewHub(zerolog.Nop())
	for _, s := range svcs {
		require.NoError(t, h.Register(s))
	}
	return h
}

func TestHubLifecycleOrder(t *testing.T) {
	var log []string
	render := &fakeService{name: "render", deps: []string{"audio"}, log: &log}
	audio := &fakeService{name: "audio", log: &log}
	loop := &fakeService{name: "loop", deps: []string{"render", "audio"}, log: &log}
	h := newHub(t, loop, render, audio)

	require.NoError(t, h.InitAll(true))
	require.NoError(t, h.StartAll())
	require.NoError(t, h.StopAll())

	assert.Equal(t, []string{
		"init:audio", "init:render", "init:loop",
		"start:audio", "start:render", "start:loop",
		"stop:loop", "stop:render", "stop:audio",
	}, log)
	assert.Equal(t, []string{"audio", "render", "loop"}, h.Order())
	assert.Equal(t, []any{true}, audio.args)
}

func TestHubRegisterDuplicate(t *testing.T) {
	var log []string
	h := newHub(t, &fakeService{name: "audio", log: &log})
	err := h.Register(&fakeService{name: "audio", log: &log})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestHubDependencyErrors(t *testing.T) {
	var log []string
	h := newHub(t, &fakeService{name: "render", deps: []string{"audio"}, log: &log})
	assert.ErrorIs(t, h.InitAll(), ErrUnknownDependency)

	h = newHub(t,
		&fakeService{name: "a", deps: []string{"b"}, log: &log},
		&fakeService{name: "b", deps: []string{"a"}, log: &log},
	)
	assert.ErrorIs(t, h.InitAll(), ErrCircular)
}

func TestHubInitRollback(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	h := newHub(t,
		&fakeService{name: "a", log: &log},
		&fakeService{name: "b", deps: []string{"a"}, log: &log, initErr: boom},
	)
	err := h.InitAll()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"init:a", "init:b", "stop:a"}, log)
}

func TestHubStartRollback(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	h := newHub(t,
		&fakeService{name: "a", log: &log},
		&fakeService{name: "b", deps: []string{"a"}, log: &log, startErr: boom},
	)
	require.NoError(t, h.InitAll())
	require.ErrorIs(t, h.StartAll(), boom)
	assert.Equal(t, []string{"init:a", "init:b", "start:a", "start:b", "stop:a"}, log)

	// Nothing left to stop
	log = log[:0]
	require.NoError(t, h.StopAll())
	assert.Empty(t, log)
}

func TestHubStopAllJoinsErrors(t *testing.T) {
	var log []string
	h := newHub(t,
		&fakeService{name: "a", log: &log, stopErr: errors.New("a failed")},
		&fakeService{name: "b", log: &log, stopErr: errors.New("b failed")},
	)
	require.NoError(t, h.InitAll())
	require.NoError(t, h.StartAll())
	err := h.StopAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "b failed")
}

func TestLookup(t *testing.T) {
	var log []string
	h := newHub(t, &fakeService{name: "audio", log: &log})

	svc, err := Lookup[*fakeService](h, "audio")
	require.NoError(t, err)
	assert.Equal(t, "audio", svc.Name())

	_, err = Lookup[*fakeService](h, "render")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Lookup[interface{ Engine() }](h, "audio")
	assert.Error(t, err)

	assert.Panics(t, func() { MustGet[*fakeService](h, "missing") })
	assert.Equal(t, []string{"audio"}, h.Names())
}
