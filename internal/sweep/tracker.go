// Package sweep accumulates the angular travel of a stroke around its center.
package sweep

import "github.com/verte-zerg/tuircle/internal/geom"

// lockAfter is the number of updates that must pass before a direction locks.
const lockAfter = 5

// Direction is the rotational sense locked early in a stroke.
type Direction int

// Directions are signs of the angular delta in surface coordinates. With y
// growing downward a positive delta is a clockwise motion on screen.
const (
	Unknown          Direction = 0
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// String returns a short label for the direction.
func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	default:
		return "unknown"
	}
}

// Sign returns the direction as the sign of a delta.
func (d Direction) Sign() float64 {
	return float64(d)
}

// DirectionOf returns the direction matching the sign of delta.
func DirectionOf(delta float64) Direction {
	switch {
	case delta > 0:
		return Clockwise
	case delta < 0:
		return CounterClockwise
	default:
		return Unknown
	}
}

// Tracker sums normalized per-step angle deltas and locks a direction.
type Tracker struct {
	cumulative float64
	direction  Direction
	updates    int
}

// Reset clears the accumulated sweep and unlocks the direction.
func (t *Tracker) Reset() {
	t.cumulative = 0
	t.direction = Unknown
	t.updates = 0
}

// Update accounts for the step prev -> curr and returns its normalized delta.
func (t *Tracker) Update(prev, curr, center geom.Point) float64 {
	raw := geom.AngleOf(curr, center) - geom.AngleOf(prev, center)
	delta := geom.NormalizeAngleDelta(raw)
	t.cumulative += delta
	t.updates++
	if t.direction == Unknown && t.updates > lockAfter {
		t.direction = DirectionOf(delta)
	}
	return delta
}

// Cumulative returns the signed total sweep in radians.
func (t *Tracker) Cumulative() float64 {
	return t.cumulative
}

// Direction returns the locked direction, or Unknown.
func (t *Tracker) Direction() Direction {
	return t.direction
}

// Updates returns how many steps have been accumulated.
func (t *Tracker) Updates() int {
	return t.updates
}
