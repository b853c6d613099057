package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuircle/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		best:       model.Best{Score: 97, SetAt: time.Now().Add(-3 * time.Hour), Found: true},
		hasLast:    true,
		lastScore:  88.4,
		policyName: "strict",
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Best 97%", "3 hours ago", "Last 88%", "Policy strict"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWithoutBest(t *testing.T) {
	m := &Model{opts: Options{Config: model.Config{Precision: 1}}}
	out := m.renderFooter()
	if !strings.Contains(out, "Best -") || strings.Contains(out, "Last") {
		t.Fatalf("unexpected footer: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
