// Package smooth turns raw stroke samples into a drawable quadratic curve.
package smooth

import (
	"github.com/gogpu/gg"

	"github.com/verte-zerg/tuircle/internal/geom"
)

// Quad is one quadratic segment starting at the previous segment's end.
type Quad struct {
	Control geom.Point
	End     geom.Point
}

// Curve is a piecewise-quadratic path starting at Start.
type Curve struct {
	Start    geom.Point
	Segments []Quad
}

// Empty reports whether the curve has nothing to draw.
func (c Curve) Empty() bool {
	return len(c.Segments) == 0
}

// Smooth builds the midpoint-quadratic curve through points. Each interior
// sample becomes a control point ending at the midpoint to its successor, and
// the last segment ends exactly on the final sample.
func Smooth(points []geom.Point) Curve {
	n := len(points)
	if n < 2 {
		return Curve{}
	}
	c := Curve{
		Start:    points[0],
		Segments: make([]Quad, 0, n-1),
	}
	for i := 1; i < n-2; i++ {
		c.Segments = append(c.Segments, Quad{
			Control: points[i],
			End:     geom.Midpoint(points[i], points[i+1]),
		})
	}
	c.Segments = append(c.Segments, Quad{
		Control: points[n-2],
		End:     points[n-1],
	})
	return c
}

// Path converts the curve into a gg path.
func (c Curve) Path() *gg.Path {
	p := gg.NewPath()
	if c.Empty() {
		return p
	}
	p.MoveTo(c.Start.X, c.Start.Y)
	for _, q := range c.Segments {
		p.QuadraticTo(q.Control.X, q.Control.Y, q.End.X, q.End.Y)
	}
	return p
}

// Flatten approximates the curve with a polyline within tolerance.
func (c Curve) Flatten(tolerance float64) []geom.Point {
	if c.Empty() {
		return nil
	}
	flat := c.Path().Flatten(tolerance)
	out := make([]geom.Point, len(flat))
	for i, p := range flat {
		out[i] = geom.Pt(p.X, p.Y)
	}
	return out
}

// Trace appends the curve to the current path of dc.
func (c Curve) Trace(dc *gg.Context) {
	if c.Empty() {
		return
	}
	dc.MoveTo(c.Start.X, c.Start.Y)
	for _, q := range c.Segments {
		dc.QuadraticTo(q.Control.X, q.Control.Y, q.End.X, q.End.Y)
	}
}
