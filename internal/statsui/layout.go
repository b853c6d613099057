package statsui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// curveStep is how far the learning-curve window moves per key press.
const curveStep = 5

// nextCurveWindow snaps n up to the next multiple of curveStep.
func nextCurveWindow(n int) int {
	return max(curveStep, (n/curveStep+1)*curveStep)
}

// prevCurveWindow snaps n down to the previous multiple of curveStep,
// bottoming out at a one-attempt window.
func prevCurveWindow(n int) int {
	if n <= curveStep {
		return 1
	}
	return (n - 1) / curveStep * curveStep
}

// padLines right-pads every line of s with spaces to width cells.
func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	return strings.Join(padEach(strings.Split(s, "\n"), width), "\n")
}

// fitLines pads s to width and clips or extends it to exactly height rows.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	rows := make([]string, height)
	copy(rows, strings.Split(s, "\n"))
	return strings.Join(padEach(rows, width), "\n")
}

func padEach(rows []string, width int) []string {
	for i, row := range rows {
		if gap := width - lipgloss.Width(row); gap > 0 {
			rows[i] = row + strings.Repeat(" ", gap)
		}
	}
	return rows
}

// truncateLine clips s to width cells, marking the cut with an ellipsis
// when there is room for one.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(s, width, tail)
}
