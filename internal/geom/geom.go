// Package geom provides the pure geometry helpers used by stroke tracking.
package geom

import "math"

// Point is a sample in surface coordinates (y grows downward).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// AngleOf returns the angle of p around center in (-π, π].
func AngleOf(p, center Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}

// NormalizeAngleDelta maps raw into (-π, π]. Consecutive samples never differ
// by more than one revolution, so a single correction is enough.
func NormalizeAngleDelta(raw float64) float64 {
	if raw > math.Pi {
		return raw - 2*math.Pi
	}
	if raw <= -math.Pi {
		return raw + 2*math.Pi
	}
	return raw
}

// Distance returns the Euclidean distance between p and center.
func Distance(p, center Point) float64 {
	return math.Hypot(p.X-center.X, p.Y-center.Y)
}

// Finite reports whether both coordinates are finite numbers.
func Finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: a.X/2 + b.X/2, Y: a.Y/2 + b.Y/2}
}
