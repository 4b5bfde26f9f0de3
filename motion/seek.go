// Package motion moves a point toward randomized destinations at constant speed
package motion

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/orbviz/vmath"
)

const (
	DefaultSpeed            = 0.1
	DefaultArrivalThreshold = 0.1
)

var (
	ErrNegativeSpeed     = errors.New("speed must be finite and >= 0")
	ErrNegativeThreshold = errors.New("arrival threshold must be finite and >= 0")
	ErrNonFinite         = errors.New("position must be finite")
)

// SeekConfig parameterizes a Seek
type SeekConfig struct {
	Position vmath.Vec3F
	Room     Room
	Speed    float64
	// Arrival uses strict comparison: distance < ArrivalThreshold
	// A zero threshold never triggers, so a zero-speed orb stays put for good
	ArrivalThreshold float64
	// Rand defaults to the process-wide generator
	Rand Uniform
}

// Validate checks speed, threshold, room and position
func (c SeekConfig) Validate() error {
	var errs []error
	if !(c.Speed >= 0) || math.IsInf(c.Speed, 1) {
		errs = append(errs, fmt.Errorf("%w: %g", ErrNegativeSpeed, c.Speed))
	}
	if !(c.ArrivalThreshold >= 0) || math.IsInf(c.ArrivalThreshold, 1) {
		errs = append(errs, fmt.Errorf("%w: %g", ErrNegativeThreshold, c.ArrivalThreshold))
	}
	if err := c.Room.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !vmath.V3FIsFinite(c.Position) {
		errs = append(errs, ErrNonFinite)
	}
	return errors.Join(errs...)
}

// StepResult reports what one Advance did
type StepResult struct {
	// Distance to the destination measured before moving
	Distance float64
	// Arrived is set when a new destination was drawn
	Arrived bool
}

// Seek holds position, destination and speed
// Not safe for concurrent use
type Seek struct {
	position    vmath.Vec3F
	destination vmath.Vec3F
	speed       float64
	threshold   float64
	room        Room
	rng         Uniform
}

type globalUniform struct{}

func (globalUniform) Float64() float64 { return rand.Float64() }

// NewSeek validates cfg and draws the first destination
func NewSeek(cfg SeekConfig) (*Seek, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = globalUniform{}
	}
	s := &Seek{
		position:  cfg.Position,
		speed:     cfg.Speed,
		threshold: cfg.ArrivalThreshold,
		room:      cfg.Room,
		rng:       rng,
	}
	s.RandomizeDestination()
	return s, nil
}

func (s *Seek) Position() vmath.Vec3F    { return s.position }
func (s *Seek) Destination() vmath.Vec3F { return s.destination }
func (s *Seek) Speed() float64           { return s.speed }
func (s *Seek) Room() Room               { return s.room }

// SetDestination overrides the current target
func (s *Seek) SetDestination(d vmath.Vec3F) {
	s.destination = d
}

// RandomizeDestination draws a fresh target inside the room
func (s *Seek) RandomizeDestination() vmath.Vec3F {
	s.destination = s.room.RandomPoint(s.rng)
	return s.destination
}

// Advance moves speed units toward the destination
// Distance is measured before the move; below the threshold a new destination is drawn
// Zero displacement yields zero movement
func (s *Seek) Advance() StepResult {
	displacement := vmath.V3FSub(s.destination, s.position)
	dist := vmath.V3FMag(displacement)

	if s.speed > 0 {
		unit := vmath.V3FNormalize(displacement)
		s.position = vmath.V3FAdd(s.position, vmath.V3FScale(unit, s.speed))
	}

	res := StepResult{Distance: dist}
	if dist < s.threshold {
		s.RandomizeDestination()
		res.Arrived = true
	}
	return res
}
