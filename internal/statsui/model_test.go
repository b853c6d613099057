package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st
}

func seed(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := []model.Attempt{
		{Policy: "strict", Outcome: model.OutcomeCompleted, Score: 91.4, Sweep: 6.3, Samples: 80, MeanRadius: 120},
		{Policy: "strict", Outcome: "too-small", Sweep: 1.2, Samples: 12},
		{Policy: "lenient", Outcome: model.OutcomeCompleted, Score: 78.2, Sweep: 6.1, Samples: 64, MeanRadius: 95},
	}
	for i, a := range attempts {
		a.StartedAt = base.Add(time.Duration(i) * time.Minute)
		a.EndedAt = a.StartedAt.Add(2 * time.Second)
		if _, err := st.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}
	if err := st.SetBestScore(ctx, 91.4, base); err != nil {
		t.Fatalf("set best: %v", err)
	}
}

func newSizedModel(t *testing.T, cfg model.StatsConfig) *Model {
	t.Helper()
	st := openStore(t)
	seed(t, st)
	m := NewModel(st, cfg, 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestOverviewShowsMetrics(t *testing.T) {
	m := newSizedModel(t, model.StatsConfig{CurveWindow: 5})
	view := m.View()
	for _, want := range []string{"Overview", "Attempts", "Completed", "66.7%", "91.4%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}

func TestAttemptsTabListsAttempts(t *testing.T) {
	m := newSizedModel(t, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabAttempts {
		t.Fatalf("expected attempts tab, got %d", m.activeTab)
	}
	view := m.View()
	for _, want := range []string{"too-small", "lenient", "78.2%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected attempts table to contain %q", want)
		}
	}
}

func TestOutcomesTab(t *testing.T) {
	m := newSizedModel(t, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabOutcomes {
		t.Fatalf("expected tabs to wrap to outcomes, got %d", m.activeTab)
	}
	view := m.View()
	if !strings.Contains(view, "Top attempts") || !strings.Contains(view, "completed") {
		t.Fatalf("expected outcomes view, got:\n%s", view)
	}
}

func TestFilterAppliesPolicy(t *testing.T) {
	m := newSizedModel(t, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("Strict")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close, error %q", m.filterError)
	}
	if m.cfg.Policy != "strict" {
		t.Fatalf("expected strict policy filter, got %q", m.cfg.Policy)
	}
	if len(m.report.Attempts) != 2 {
		t.Fatalf("expected 2 strict attempts, got %d", len(m.report.Attempts))
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := newSizedModel(t, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m.filterInputs[1].SetValue("March")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || !strings.Contains(m.filterError, "since") {
		t.Fatalf("expected since error, got %q", m.filterError)
	}
	m.filterInputs[1].SetValue("")
	m.filterInputs[3].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.filterError, "curve window") {
		t.Fatalf("expected curve window error, got %q", m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode || m.cfg.CurveWindow != 5 {
		t.Fatalf("expected cancel to keep config")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
		{12, 15, 10},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("expected next(%d)=%d, got %d", tc.in, tc.next, got)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("expected prev(%d)=%d, got %d", tc.in, tc.prev, got)
		}
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("ab\ncd\nef", 3, 2)
	if got != "ab \ncd " {
		t.Fatalf("unexpected fit: %q", got)
	}
	if got := fitLines("x", 2, 3); got != "x \n  \n  " {
		t.Fatalf("expected blank rows to fill the height, got %q", got)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate: %q", got)
	}
	if got := truncateLine("abcdefgh", 3); got != "abc" {
		t.Fatalf("expected a bare cut when no room for an ellipsis, got %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("expected short lines untouched, got %q", got)
	}
}
