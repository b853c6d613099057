package stats

import (
	"sort"

	"github.com/verte-zerg/tuircle/internal/model"
)

// TopAttempts returns the n best completed attempts, highest score first.
// Ties keep the earlier attempt first.
func TopAttempts(attempts []model.Attempt, n int) []model.Attempt {
	if n <= 0 || len(attempts) == 0 {
		return nil
	}
	items := make([]model.Attempt, 0, len(attempts))
	for _, a := range attempts {
		if a.Completed() {
			items = append(items, a)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
