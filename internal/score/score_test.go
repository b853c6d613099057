package score

import (
	"math"
	"testing"

	"github.com/verte-zerg/tuircle/internal/geom"
)

func circle(center geom.Point, r float64, n int) []geom.Point {
	points := make([]geom.Point, n)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(n)
		points[i] = geom.Pt(center.X+r*math.Cos(a), center.Y+r*math.Sin(a))
	}
	return points
}

func wobbly(r float64, n int) []geom.Point {
	points := make([]geom.Point, n)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(n)
		rr := r * (1 + 0.08*math.Sin(5*a))
		points[i] = geom.Pt(rr*math.Cos(a), rr*math.Sin(a))
	}
	return points
}

func TestAccuracyShortStrokeIsZero(t *testing.T) {
	center := geom.Pt(0, 0)
	for n := 0; n < MinSamples; n++ {
		if got := Accuracy(circle(center, 100, n), center, 2); got != 0 {
			t.Fatalf("expected 0 for %d samples, got %v", n, got)
		}
	}
}

func TestAccuracyPerfectCircleIsHundred(t *testing.T) {
	for _, center := range []geom.Point{geom.Pt(0, 0), geom.Pt(320, 192)} {
		for _, n := range []int{10, 12, 64, 500} {
			if got := Accuracy(circle(center, 87.5, n), center, 0); got != 100 {
				t.Fatalf("expected 100 for %d samples around %+v, got %v", n, center, got)
			}
		}
	}
}

func TestAccuracyScaleInvariant(t *testing.T) {
	center := geom.Pt(0, 0)
	base := wobbly(40, 90)
	doubled := make([]geom.Point, len(base))
	for i, p := range base {
		doubled[i] = geom.Pt(p.X*2, p.Y*2)
	}
	a := Accuracy(base, center, 2)
	b := Accuracy(doubled, center, 2)
	if a != b {
		t.Fatalf("expected scale invariance, got %v vs %v", a, b)
	}
	if a <= 0 || a >= 100 {
		t.Fatalf("expected a partial score for a wobbly circle, got %v", a)
	}
}

func TestAccuracyDegenerateCenterStroke(t *testing.T) {
	center := geom.Pt(5, 5)
	points := make([]geom.Point, 12)
	for i := range points {
		points[i] = center
	}
	if got := Accuracy(points, center, 0); got != 0 {
		t.Fatalf("expected 0 for zero mean radius, got %v", got)
	}
}

func TestAccuracyFloorsAtZero(t *testing.T) {
	center := geom.Pt(0, 0)
	points := make([]geom.Point, 12)
	for i := range points {
		r := 1.0
		if i%2 == 0 {
			r = 300
		}
		points[i] = geom.Pt(r, 0)
	}
	if got := Accuracy(points, center, 0); got != 0 {
		t.Fatalf("expected score clamped to 0, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate(87.659, 0); got != 87 {
		t.Fatalf("expected 87, got %v", got)
	}
	if got := Truncate(87.659, 2); math.Abs(got-87.65) > 1e-9 {
		t.Fatalf("expected 87.65, got %v", got)
	}
	if got := Format(87, 0); got != "87%" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := Format(87.99, 1); got != "87.9%" {
		t.Fatalf("expected format to truncate, got %q", got)
	}
}

func TestColorForEndpoints(t *testing.T) {
	cases := map[float64]string{0: "#FF0000", 50: "#FFFF00", 100: "#00FF00", -5: "#FF0000", 140: "#00FF00"}
	for s, want := range cases {
		if got := Hex(ColorFor(s)); got != want {
			t.Fatalf("expected %s for %v, got %s", want, s, got)
		}
	}
}

func TestColorForMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for s := 0.0; s <= 100; s += 0.5 {
		c := ColorFor(s)
		greenness := c.G - c.R
		if greenness < prev-1e-12 {
			t.Fatalf("expected color to move toward green as score rises, broke at %v", s)
		}
		prev = greenness
	}
}

func TestAccuracyHugeFiniteCoordinates(t *testing.T) {
	center := geom.Pt(0, 0)
	if got := Accuracy(circle(center, 1e308, 13), center, 2); got != 100 {
		t.Fatalf("expected huge perfect circle to score 100, got %v", got)
	}
	base := wobbly(40, 90)
	scale := math.Ldexp(1, 1017)
	huge := make([]geom.Point, len(base))
	for i, p := range base {
		huge[i] = geom.Pt(p.X*scale, p.Y*scale)
	}
	got := Accuracy(huge, center, 2)
	if math.IsNaN(got) || got != Accuracy(base, center, 2) {
		t.Fatalf("expected huge wobbly circle to match its small copy, got %v", got)
	}
	far := []geom.Point{}
	for i := 0; i < 12; i++ {
		far = append(far, geom.Pt(math.MaxFloat64, 0), geom.Pt(-math.MaxFloat64, 0))
	}
	if got := Accuracy(far, geom.Pt(-math.MaxFloat64, 0), 0); got != 0 {
		t.Fatalf("expected overflowing distances to score 0, got %v", got)
	}
	if c := ColorFor(math.NaN()); c != ColorFor(0) {
		t.Fatalf("expected NaN to color like 0, got %+v", c)
	}
}
