// Package model defines shared data structures.
package model

import "time"

// Config defines play settings.
type Config struct {
	Policy             string
	MinRadius          float64
	MinSweep           float64
	MaxSweep           float64
	DirectionTolerance float64
	Violations         string
	Precision          int
	CellWidth          float64
	CellHeight         float64
	ShareDir           string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Policy      string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Attempt summarizes one finished stroke. Samples themselves are never stored.
type Attempt struct {
	ID         int64
	StartedAt  time.Time
	EndedAt    time.Time
	Policy     string
	Outcome    string
	Score      float64
	Sweep      float64
	Samples    int
	MeanRadius float64
}

// Completed reports whether the attempt produced a score.
func (a Attempt) Completed() bool {
	return a.Outcome == OutcomeCompleted
}

// DurationMs returns the time between pointer-down and pointer-up.
func (a Attempt) DurationMs() int64 {
	return a.EndedAt.Sub(a.StartedAt).Milliseconds()
}

// OutcomeCompleted is the outcome string of scored attempts.
const OutcomeCompleted = "completed"

// Best is the persisted best score record.
type Best struct {
	Score float64
	SetAt time.Time
	Found bool
}
