package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/tuircle/internal/braille"
)

// Series is a named run of percent values, oldest first.
type Series struct {
	Name   string
	Values []float64
}

// trace is how one series is drawn: a dash pattern and an ANSI color.
type trace struct {
	name   string
	color  string
	period int
	on     int
}

func (t trace) dot(x int) bool {
	return t.period <= 1 || abs(x)%t.period < t.on
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisLabelTop      = "100%"
	axisSeparator     = " │ "
	scaleNote         = "Percent scale; per-series min/max below."
	ansiReset         = "\x1b[0m"
)

var traces = []trace{
	{name: "solid", color: "\x1b[36m", period: 1, on: 1},
	{name: "dashed", color: "\x1b[35m", period: 6, on: 3},
	{name: "dotted", color: "\x1b[33m", period: 4, on: 1},
	{name: "dashdot", color: "\x1b[32m", period: 8, on: 3},
}

// PlotSeries draws series on a fixed 0..100 braille chart.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor is PlotSeries with color forced on even when w is not a
// terminal. NO_COLOR still wins.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = slices.DeleteFunc(slices.Clone(series), func(s Series) bool { return len(s.Values) == 0 })
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	grids := make([]*braille.Grid, len(series))
	for i, s := range series {
		grids[i] = drawSeries(resample(s.Values, width*braille.DotsX), traces[i%len(traces)], width, height)
	}
	color := colorEnabled(w, forceColor)

	var out strings.Builder
	if title != "" {
		out.WriteString(title + "\n")
	}
	out.WriteString(scaleNote + "\n")
	for _, s := range series {
		fmt.Fprintf(&out, "%s: min=%.2f max=%.2f\n", s.Name, slices.Min(s.Values), slices.Max(s.Values))
	}
	for y := 0; y < height; y++ {
		fmt.Fprintf(&out, "%*s%s", len(axisLabelTop), axisLabel(y, height), axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, g := range grids {
				if m := g.Mask(x, y); m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			out.WriteString(paint(string(braille.Rune(mask)), owner, color))
		}
		out.WriteString("\n")
	}
	out.WriteString(legend(series, color) + "\n\n")
	_, err := io.WriteString(w, out.String())
	return err
}

// PlotWidthFor returns the chart width that fits next to the axis in totalWidth.
func PlotWidthFor(totalWidth int) int {
	axis := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(minPlotWidth, totalWidth-axis)
}

func drawSeries(values []float64, t trace, width, height int) *braille.Grid {
	g := braille.New(width, height)
	dotsHigh := height * braille.DotsY
	prevX, prevY := -1, -1
	for x, v := range values {
		y := percentRow(v, dotsHigh)
		switch {
		case prevX >= 0:
			g.Line(prevX, prevY, x, y, t.dot)
		case t.dot(x):
			g.Set(x, y)
		}
		prevX, prevY = x, y
	}
	return g
}

// percentRow maps v in 0..100 onto a dot row, 0 at the top.
func percentRow(v float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((1 - v/100) * float64(rows-1)))
}

// resample stretches or squeezes values to n points. Squeezing averages
// buckets, stretching interpolates linearly.
func resample(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(values) >= n:
		for i := range out {
			lo := i * len(values) / n
			hi := max((i+1)*len(values)/n, lo+1)
			var sum float64
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		last := len(values) - 1
		for i := range out {
			pos := float64(i) * float64(last) / float64(n-1)
			idx := min(int(pos), last-1)
			frac := pos - float64(idx)
			out[i] = values[idx] + (values[idx+1]-values[idx])*frac
		}
	}
	return out
}

func axisLabel(y, height int) string {
	switch {
	case y == 0:
		return axisLabelTop
	case y == height-1:
		return "0%"
	case height > 2 && y == height/2:
		return "50%"
	}
	return ""
}

func paint(s string, idx int, color bool) string {
	if !color || idx < 0 {
		return s
	}
	return traces[idx%len(traces)].color + s + ansiReset
}

func legend(series []Series, color bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", braille.Rune(0x01), s.Name, traces[i%len(traces)].name)
		parts[i] = paint(label, i, color)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return fallbackWidth
}

func colorEnabled(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
