// Package ring provides modular index arithmetic over a fixed-capacity ring
package ring

import (
	"errors"
	"fmt"
)

var (
	ErrZeroCapacity = errors.New("ring capacity must be positive")
	ErrStartRange   = errors.New("ring start index out of range")
)

// Direction selects which way the write pointer moves
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the two defined steps
func (d Direction) Valid() bool {
	return d == Forward || d == Backward
}

// Index is a position in [0, capacity) that wraps on step
// Not safe for concurrent use
type Index struct {
	pos      int
	capacity int
}

// New creates an index at start over capacity slots
func New(start, capacity int) (*Index, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrZeroCapacity, capacity)
	}
	if start < 0 || start >= capacity {
		return nil, fmt.Errorf("%w: start %d, capacity %d", ErrStartRange, start, capacity)
	}
	return &Index{pos: start, capacity: capacity}, nil
}

// Current returns the index, always in [0, capacity)
func (r *Index) Current() int {
	return r.pos
}

// Capacity returns the fixed ring size
func (r *Index) Capacity() int {
	return r.capacity
}

// Increment moves forward, capacity-1 wraps to 0
func (r *Index) Increment() {
	if r.pos == r.capacity-1 {
		r.pos = 0
		return
	}
	r.pos++
}

// Decrement moves backward, 0 wraps to capacity-1
func (r *Index) Decrement() {
	if r.pos == 0 {
		r.pos = r.capacity - 1
		return
	}
	r.pos--
}

// Advance steps by +1 or -1
// Any other step is a programming error and panics
func (r *Index) Advance(step Direction) {
	switch step {
	case Forward:
		r.Increment()
	case Backward:
		r.Decrement()
	default:
		panic(fmt.Sprintf("ring: invalid step %d", int(step)))
	}
}

// Peek returns the index n steps away in direction d without moving
func (r *Index) Peek(d Direction, n int) int {
	off := (int(d) * n) % r.capacity
	return ((r.pos+off)%r.capacity + r.capacity) % r.capacity
}
