package stats

import (
	"context"

	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts        []model.Attempt
	Window          []model.Attempt
	Outcomes        []OutcomeCount
	AllTimeOutcomes map[string]int
	Best            model.Best
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	allTime, err := st.OutcomeCounts(ctx, cfg.Policy)
	if err != nil {
		return Report{}, err
	}
	best, err := st.BestScore(ctx)
	if err != nil {
		return Report{}, err
	}
	window := lastAttempts(attempts, cfg.CurveWindow)
	return Report{
		Attempts:        attempts,
		Window:          window,
		Outcomes:        Outcomes(window),
		AllTimeOutcomes: allTime,
		Best:            best,
	}, nil
}

func lastAttempts(attempts []model.Attempt, window int) []model.Attempt {
	if window <= 0 || len(attempts) <= window {
		return attempts
	}
	return attempts[len(attempts)-window:]
}
