package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Outcome", "Count", "Share"}
	rows := [][]string{
		{"completed", "12", "75.0%"},
		{"wrong-way", "4", "25.0%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Outcome   Count Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "completed    12 75.0%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "wrong-way     4 25.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"A", "B"}, [][]string{{"円", "x"}}, nil)
	if lines[0] != "A  B" || lines[1] != "円 x" {
		t.Fatalf("expected double-width rune to count as two columns: %q", lines)
	}
}
