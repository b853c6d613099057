package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/store"
)

func sampleAttempts() []model.Attempt {
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	mk := func(i int, outcome string, score, sweep float64) model.Attempt {
		start := base.Add(time.Duration(i) * time.Minute)
		return model.Attempt{
			StartedAt:  start,
			EndedAt:    start.Add(2 * time.Second),
			Policy:     "strict",
			Outcome:    outcome,
			Score:      score,
			Sweep:      sweep,
			Samples:    40,
			MeanRadius: 100,
		}
	}
	return []model.Attempt{
		mk(0, model.OutcomeCompleted, 70, 6.3),
		mk(1, "wrong-way", 0, -2),
		mk(2, model.OutcomeCompleted, 90, 6.2),
		mk(3, "too-small", 0, 1),
	}
}

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuircle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for _, a := range sampleAttempts() {
		if _, err := st.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}
	if err := st.SetBestScore(ctx, 95, time.Now()); err != nil {
		t.Fatalf("set best: %v", err)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 3, CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].Outcome != "wrong-way" {
		t.Fatalf("expected oldest kept attempt first, got %+v", report.Attempts[0])
	}
	if len(report.Window) != 2 {
		t.Fatalf("expected 2 window attempts, got %d", len(report.Window))
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("expected 2 windowed outcomes, got %+v", report.Outcomes)
	}
	if report.AllTimeOutcomes[model.OutcomeCompleted] != 2 {
		t.Fatalf("expected all-time completed count 2, got %v", report.AllTimeOutcomes)
	}
	if !report.Best.Found || report.Best.Score != 95 {
		t.Fatalf("expected best score 95, got %+v", report.Best)
	}
}

func TestSummarize(t *testing.T) {
	m := Summarize(sampleAttempts())
	if m.Attempts != 4 || m.Completed != 2 {
		t.Fatalf("unexpected counts %+v", m)
	}
	if m.AvgScore != 80 || m.BestScore != 90 {
		t.Fatalf("expected avg 80 best 90, got %v %v", m.AvgScore, m.BestScore)
	}
	if m.CompletionRate() != 50 {
		t.Fatalf("expected 50%% completion, got %v", m.CompletionRate())
	}
	if m.AvgDuration != 2*time.Second {
		t.Fatalf("expected 2s duration, got %v", m.AvgDuration)
	}
	if (Metrics{}).CompletionRate() != 0 {
		t.Fatalf("expected zero rate without attempts")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	best := model.Best{Score: 95, SetAt: time.Now().Add(-48 * time.Hour), Found: true}
	if err := RenderSummary(&buf, sampleAttempts(), best, 0); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 4", "Completed: 2 (50.0%)", "Avg score: 80%", "Best ever: 95% (2 days ago)", "Trend: "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
	buf.Reset()
	if err := RenderSummary(&buf, nil, model.Best{}, 0); err != nil || !strings.Contains(buf.String(), "No attempts found.") {
		t.Fatalf("expected empty summary message")
	}
}

func TestOutcomes(t *testing.T) {
	outcomes := Outcomes(sampleAttempts())
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcome groups, got %d", len(outcomes))
	}
	if outcomes[0].Outcome != model.OutcomeCompleted || outcomes[0].Count != 2 {
		t.Fatalf("expected completed first, got %+v", outcomes[0])
	}
	if outcomes[1].Outcome != "too-small" || outcomes[2].AvgSweep != 2 {
		t.Fatalf("unexpected ordering or sweep: %+v", outcomes)
	}
	var buf bytes.Buffer
	if err := RenderOutcomeTable(&buf, outcomes, map[string]int{"completed": 7}); err != nil {
		t.Fatalf("render outcomes: %v", err)
	}
	if !strings.Contains(buf.String(), "50.0%") {
		t.Fatalf("expected share column: %s", buf.String())
	}
}

func TestMovingAverageAndSeries(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	want := []float64{10, 15, 25, 35}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	completion := CompletionSeries(sampleAttempts())
	if completion[0] != 100 || completion[1] != 0 {
		t.Fatalf("unexpected completion series %v", completion)
	}
	if s := Scores(sampleAttempts()); len(s) != 2 || s[1] != 90 {
		t.Fatalf("unexpected scores %v", s)
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
	if got := Sparkline([]float64{5, 5}); got != "++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	if got := Sparkline([]float64{0, 100}); got != " @" {
		t.Fatalf("expected min and max chars, got %q", got)
	}
}

func TestAttemptRowsNewestFirst(t *testing.T) {
	rows := AttemptRows(sampleAttempts(), 0)
	if len(rows) != 4 || rows[0][2] != "too-small" || rows[0][3] != "-" {
		t.Fatalf("expected newest attempt first without score, got %v", rows[0])
	}
	if rows[1][3] != "90%" || rows[1][4] != "355°" {
		t.Fatalf("unexpected completed row %v", rows[1])
	}
}
