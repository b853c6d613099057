// Package policy decides whether a stroke continues, fails, or completes.
package policy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuircle/internal/sweep"
)

// State is the validation state of a stroke.
type State int

// Stroke states. Every state other than Active is terminal.
const (
	Active State = iota
	FailedTooSmall
	FailedWrongWay
	FailedIncompleteSweep
	Completed
)

// String returns the state name used in logs and reports.
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case FailedTooSmall:
		return "too-small"
	case FailedWrongWay:
		return "wrong-way"
	case FailedIncompleteSweep:
		return "incomplete-sweep"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Failed reports whether s is one of the failure states.
func (s State) Failed() bool {
	return s == FailedTooSmall || s == FailedWrongWay || s == FailedIncompleteSweep
}

// Terminal reports whether no further samples are accepted in s.
func (s State) Terminal() bool {
	return s != Active
}

// Warning is a violation reported without ending the stroke.
type Warning int

// Warnings raised under ViolationsWarn.
const (
	NoWarning Warning = iota
	WarnTooSmall
	WarnWrongWay
)

// String returns the warning name.
func (w Warning) String() string {
	switch w {
	case WarnTooSmall:
		return "too-small"
	case WarnWrongWay:
		return "wrong-way"
	default:
		return ""
	}
}

// Violations selects how the radius and direction rules react.
type Violations string

const (
	// ViolationsFail ends the stroke on a violation.
	ViolationsFail Violations = "fail"
	// ViolationsWarn keeps the stroke active and reports a warning.
	ViolationsWarn Violations = "warn"
)

// Config holds the thresholds of a validation policy. Distances share the
// unit of the samples; angles are radians.
type Config struct {
	Name               string
	MinRadius          float64
	MinSweep           float64
	MaxSweep           float64 // 0 disables auto-completion.
	DirectionTolerance float64
	Violations         Violations
}

// Preset names.
const (
	Strict  = "strict"
	Lenient = "lenient"
)

var presets = map[string]Config{
	Strict: {
		Name:               Strict,
		MinRadius:          50,
		MinSweep:           2*math.Pi - 0.4,
		MaxSweep:           2*math.Pi + 0.4,
		DirectionTolerance: 0.01,
		Violations:         ViolationsFail,
	},
	Lenient: {
		Name:               Lenient,
		MinRadius:          50,
		MinSweep:           5,
		DirectionTolerance: 0.01,
		Violations:         ViolationsWarn,
	},
}

// Preset returns the named preset.
func Preset(name string) (Config, error) {
	cfg, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, fmt.Errorf("unknown policy %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return cfg, nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the thresholds are usable.
func (c Config) Validate() error {
	if c.MinRadius < 0 {
		return fmt.Errorf("min radius must be >= 0")
	}
	if c.MinSweep < 0 {
		return fmt.Errorf("min sweep must be >= 0")
	}
	if c.MaxSweep < 0 {
		return fmt.Errorf("max sweep must be >= 0")
	}
	if c.MaxSweep > 0 && c.MaxSweep < c.MinSweep {
		return fmt.Errorf("max sweep must be >= min sweep")
	}
	if c.DirectionTolerance < 0 {
		return fmt.Errorf("direction tolerance must be >= 0")
	}
	switch c.Violations {
	case ViolationsFail, ViolationsWarn:
	default:
		return fmt.Errorf("violations must be %q or %q", ViolationsFail, ViolationsWarn)
	}
	return nil
}

// Check is the input for a single per-sample evaluation.
type Check struct {
	Radius     float64
	Delta      float64
	Cumulative float64
	Direction  sweep.Direction
}

// Evaluate applies the per-sample rules to an active stroke. It returns the
// next state and, under ViolationsWarn, the violation that was tolerated.
func (c Config) Evaluate(ch Check) (State, Warning) {
	if ch.Radius < c.MinRadius {
		if c.Violations == ViolationsWarn {
			return c.autoComplete(ch.Cumulative), WarnTooSmall
		}
		return FailedTooSmall, NoWarning
	}
	if ch.Direction != sweep.Unknown &&
		math.Abs(ch.Delta) > c.DirectionTolerance &&
		sweep.DirectionOf(ch.Delta) != ch.Direction {
		if c.Violations == ViolationsWarn {
			return c.autoComplete(ch.Cumulative), WarnWrongWay
		}
		return FailedWrongWay, NoWarning
	}
	return c.autoComplete(ch.Cumulative), NoWarning
}

func (c Config) autoComplete(cumulative float64) State {
	if c.MaxSweep > 0 && math.Abs(cumulative) >= c.MaxSweep {
		return Completed
	}
	return Active
}

// Finish applies the end-of-stroke rule to an active stroke.
func (c Config) Finish(cumulative float64) State {
	if math.Abs(cumulative) < c.MinSweep {
		return FailedIncompleteSweep
	}
	return Completed
}
