package stats

import (
	"sort"

	"github.com/verte-zerg/tuircle/internal/model"
)

// OutcomeCount aggregates attempts that ended the same way.
type OutcomeCount struct {
	Outcome  string
	Count    int
	AvgSweep float64
}

// Outcomes groups attempts by outcome, most frequent first.
func Outcomes(attempts []model.Attempt) []OutcomeCount {
	byName := map[string]*OutcomeCount{}
	sweeps := map[string]float64{}
	for _, a := range attempts {
		entry, ok := byName[a.Outcome]
		if !ok {
			entry = &OutcomeCount{Outcome: a.Outcome}
			byName[a.Outcome] = entry
		}
		entry.Count++
		if a.Sweep < 0 {
			sweeps[a.Outcome] -= a.Sweep
		} else {
			sweeps[a.Outcome] += a.Sweep
		}
	}
	out := make([]OutcomeCount, 0, len(byName))
	for name, entry := range byName {
		entry.AvgSweep = sweeps[name] / float64(entry.Count)
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Outcome < out[j].Outcome
		}
		return out[i].Count > out[j].Count
	})
	return out
}
