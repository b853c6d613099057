package stats

import (
	"testing"

	"github.com/verte-zerg/tuircle/internal/model"
)

func TestTopAttempts(t *testing.T) {
	attempts := []model.Attempt{
		{ID: 1, Outcome: model.OutcomeCompleted, Score: 80},
		{ID: 2, Outcome: "wrong-way"},
		{ID: 3, Outcome: model.OutcomeCompleted, Score: 91},
		{ID: 4, Outcome: model.OutcomeCompleted, Score: 80},
	}
	top := TopAttempts(attempts, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(top))
	}
	if top[0].ID != 3 || top[1].ID != 1 {
		t.Fatalf("unexpected order: %+v", top)
	}
	if got := TopAttempts(attempts, 10); len(got) != 3 {
		t.Fatalf("expected only completed attempts, got %d", len(got))
	}
	if TopAttempts(attempts, 0) != nil {
		t.Fatalf("expected nil for n=0")
	}
}
