// Package stats contains attempt statistics and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/score"
)

const sparkChars = " .:-=+*#%@"

// Metrics summarizes a list of attempts.
type Metrics struct {
	Attempts    int
	Completed   int
	AvgScore    float64
	BestScore   float64
	AvgRadius   float64
	AvgSamples  float64
	AvgDuration time.Duration
}

// CompletionRate returns the share of completed attempts in percent.
func (m Metrics) CompletionRate() float64 {
	if m.Attempts == 0 {
		return 0
	}
	return float64(m.Completed) / float64(m.Attempts) * 100
}

// Summarize computes metrics for attempts. Score and radius averages cover
// completed attempts only.
func Summarize(attempts []model.Attempt) Metrics {
	m := Metrics{Attempts: len(attempts)}
	if len(attempts) == 0 {
		return m
	}
	var scoreSum, radiusSum float64
	var samples int
	var duration int64
	for _, a := range attempts {
		samples += a.Samples
		duration += a.DurationMs()
		if !a.Completed() {
			continue
		}
		m.Completed++
		scoreSum += a.Score
		radiusSum += a.MeanRadius
		if a.Score > m.BestScore {
			m.BestScore = a.Score
		}
	}
	m.AvgSamples = float64(samples) / float64(len(attempts))
	m.AvgDuration = time.Duration(duration/int64(len(attempts))) * time.Millisecond
	if m.Completed > 0 {
		m.AvgScore = scoreSum / float64(m.Completed)
		m.AvgRadius = radiusSum / float64(m.Completed)
	}
	return m
}

// Scores returns the scores of completed attempts in order.
func Scores(attempts []model.Attempt) []float64 {
	out := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if a.Completed() {
			out = append(out, a.Score)
		}
	}
	return out
}

// CompletionSeries returns 100 for every completed attempt and 0 otherwise.
func CompletionSeries(attempts []model.Attempt) []float64 {
	out := make([]float64, len(attempts))
	for i, a := range attempts {
		if a.Completed() {
			out[i] = 100
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(len(sparkChars)-1, idx))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.Attempt, best model.Best, precision int) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	m := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", m.Attempts),
		fmt.Sprintf("Completed: %d (%.1f%%)", m.Completed, m.CompletionRate()),
		fmt.Sprintf("Avg score: %s", score.Format(m.AvgScore, precision)),
		fmt.Sprintf("Best in range: %s", score.Format(m.BestScore, precision)),
		fmt.Sprintf("Avg radius: %.1f", m.AvgRadius),
		fmt.Sprintf("Avg duration: %s", m.AvgDuration.Round(10*time.Millisecond)),
	}
	if best.Found {
		lines = append(lines, fmt.Sprintf("Best ever: %s (%s)", score.Format(best.Score, precision), humanize.Time(best.SetAt)))
	}
	if trend := Sparkline(Scores(attempts)); trend != "" {
		lines = append(lines, "Trend: "+trend)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints score and completion curves.
func RenderCurves(w io.Writer, attempts []model.Attempt, window int) error {
	return RenderCurvesWithSize(w, attempts, window, 0, 10, false)
}

// RenderCurvesWithSize prints score and completion curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, attempts []model.Attempt, window, totalWidth, height int, useColor bool) error {
	if len(attempts) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Progress", []Series{
		{Name: "Score", Values: MovingAverage(Scores(attempts), window)},
		{Name: "Completion", Values: MovingAverage(CompletionSeries(attempts), window)},
	}, width, height, useColor)
}

// RenderOutcomeTable prints how attempts ended.
func RenderOutcomeTable(w io.Writer, outcomes []OutcomeCount, allTime map[string]int) error {
	if len(outcomes) == 0 {
		_, err := fmt.Fprintln(w, "No outcomes found.")
		return err
	}
	total := 0
	for _, o := range outcomes {
		total += o.Count
	}
	if _, err := fmt.Fprintln(w, "Outcomes"); err != nil {
		return err
	}
	headers := []string{"Outcome", "Count", "Share", "Avg sweep", "All-time"}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.Outcome,
			fmt.Sprintf("%d", o.Count),
			fmt.Sprintf("%.1f%%", float64(o.Count)/float64(total)*100),
			fmt.Sprintf("%.0f°", o.AvgSweep*180/math.Pi),
			fmt.Sprintf("%d", allTime[o.Outcome]),
		})
	}
	return WriteTable(w, headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderAttemptTable prints attempts newest first.
func RenderAttemptTable(w io.Writer, attempts []model.Attempt, precision int) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Attempts"); err != nil {
		return err
	}
	return WriteTable(w, AttemptHeaders(), AttemptRows(attempts, precision), map[int]bool{3: true, 4: true, 5: true, 6: true})
}

// AttemptHeaders returns the column titles used for attempt listings.
func AttemptHeaders() []string {
	return []string{"When", "Policy", "Outcome", "Score", "Sweep", "Samples", "Radius"}
}

// AttemptRows formats attempts newest first.
func AttemptRows(attempts []model.Attempt, precision int) [][]string {
	rows := make([][]string, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		scoreText := "-"
		radius := "-"
		if a.Completed() {
			scoreText = score.Format(a.Score, precision)
			radius = fmt.Sprintf("%.0f", a.MeanRadius)
		}
		rows = append(rows, []string{
			a.EndedAt.Local().Format("2006-01-02 15:04"),
			a.Policy,
			a.Outcome,
			scoreText,
			fmt.Sprintf("%.0f°", math.Abs(a.Sweep)*180/math.Pi),
			fmt.Sprintf("%d", a.Samples),
			radius,
		})
	}
	return rows
}

// WriteTable prints headers and rows as aligned columns. rightAlign marks
// numeric columns by index.
func WriteTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
