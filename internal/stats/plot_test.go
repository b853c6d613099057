package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{10, 20, 30, 20, 10}},
		{Name: "B", Values: []float64{0, 100, 50, 75, 120}},
	}, 5, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Percent scale") {
		t.Fatalf("expected scale note in output")
	}
	if !strings.Contains(out, "B: min=0.00 max=120.00") {
		t.Fatalf("expected raw min/max in output: %s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 1 + 2 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, 10, 4); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series")
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	cases := []struct {
		total, want int
	}{
		{0, minPlotWidth},
		{-5, minPlotWidth},
		{axisWidth + 1, minPlotWidth},
		{120, 120 - axisWidth},
	}
	for _, tc := range cases {
		if tc.want < minPlotWidth {
			tc.want = minPlotWidth
		}
		if got := PlotWidthFor(tc.total); got != tc.want {
			t.Fatalf("expected width %d for total %d, got %d", tc.want, tc.total, got)
		}
	}
}

func TestResample(t *testing.T) {
	if got := resample([]float64{10, 20, 30, 40}, 2); got[0] != 15 || got[1] != 35 {
		t.Fatalf("expected bucket averages [15 35], got %v", got)
	}
	got := resample([]float64{0, 100}, 5)
	want := []float64{0, 25, 50, 75, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected interpolated %v, got %v", want, got)
		}
	}
	if got := resample([]float64{42}, 3); got[0] != 42 || got[2] != 42 {
		t.Fatalf("expected a single value to repeat, got %v", got)
	}
}

func TestPercentRowClamps(t *testing.T) {
	cases := []struct {
		v    float64
		want int
	}{
		{100, 0},
		{150, 0},
		{0, 15},
		{-20, 15},
		{50, 8},
	}
	for _, tc := range cases {
		if got := percentRow(tc.v, 16); got != tc.want {
			t.Fatalf("expected row %d for %.0f, got %d", tc.want, tc.v, got)
		}
	}
}

func TestPlotAxisLabels(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "", []Series{{Name: "A", Values: []float64{50}}}, 10, 5); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	rows := lines[2:7]
	if !strings.HasPrefix(rows[0], "100% │ ") || !strings.HasPrefix(rows[2], " 50% │ ") || !strings.HasPrefix(rows[4], "  0% │ ") {
		t.Fatalf("expected 100/50/0 axis labels, got %q", rows)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no color codes for a non-terminal writer")
	}
}
