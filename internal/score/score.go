// Package score rates how close a stroke is to a circle around its center.
package score

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/verte-zerg/tuircle/internal/geom"
)

const (
	// MinSamples is the smallest stroke that gets a non-zero score.
	MinSamples = 10
	// deviationWeight scales relative radial deviation into score points.
	deviationWeight = 150
	// truncEpsilon keeps exact results from truncating one step down.
	truncEpsilon = 1e-9
)

// Radial summarizes the distances of a stroke's samples from the center.
type Radial struct {
	Mean      float64
	Deviation float64
}

// Relative returns Deviation/Mean, or 0 for a degenerate stroke.
func (r Radial) Relative() float64 {
	if r.Mean == 0 {
		return 0
	}
	return r.Deviation / r.Mean
}

// Stats computes the mean radius and its population standard deviation.
// Distances are scaled by their maximum before summing so large finite
// coordinates cannot overflow.
func Stats(stroke []geom.Point, center geom.Point) Radial {
	if len(stroke) == 0 {
		return Radial{}
	}
	distances := make([]float64, len(stroke))
	var peak float64
	for i, p := range stroke {
		distances[i] = geom.Distance(p, center)
		peak = math.Max(peak, distances[i])
	}
	if peak == 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
		return Radial{Mean: peak}
	}
	var sum float64
	for _, d := range distances {
		sum += d / peak
	}
	mean := sum / float64(len(distances))
	var sq float64
	for _, d := range distances {
		diff := d/peak - mean
		sq += diff * diff
	}
	return Radial{
		Mean:      mean * peak,
		Deviation: math.Sqrt(sq/float64(len(distances))) * peak,
	}
}

// Accuracy returns a score in [0, 100] truncated to precision decimal digits.
// Degenerate or non-finite strokes score 0.
func Accuracy(stroke []geom.Point, center geom.Point, precision int) float64 {
	if len(stroke) < MinSamples {
		return 0
	}
	r := Stats(stroke, center)
	if r.Mean == 0 || !finite(r.Mean) || !finite(r.Deviation) {
		return 0
	}
	raw := 100 - r.Relative()*deviationWeight
	if !finite(raw) || raw < 0 {
		return 0
	}
	return Truncate(raw, precision)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Truncate drops digits past precision (clamped to 0..4).
func Truncate(v float64, precision int) float64 {
	precision = clampPrecision(precision)
	scale := math.Pow(10, float64(precision))
	return math.Floor(v*scale+truncEpsilon) / scale
}

// Format renders a truncated score followed by a percent sign.
func Format(v float64, precision int) string {
	precision = clampPrecision(precision)
	return fmt.Sprintf("%.*f%%", precision, Truncate(v, precision))
}

func clampPrecision(p int) int {
	return max(0, min(4, p))
}

// ColorFor maps a score onto a hue from red (0) through yellow to green (100).
func ColorFor(s float64) gg.RGBA {
	if math.IsNaN(s) {
		s = 0
	}
	s = math.Max(0, math.Min(100, s))
	return gg.HSL(s/100*120, 1, 0.5)
}

// Hex formats a color as #RRGGBB.
func Hex(c gg.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
