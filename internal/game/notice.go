package game

import (
	"fmt"

	"github.com/verte-zerg/tuircle/internal/policy"
)

// NoticeKind identifies a user-facing notice.
type NoticeKind int

// Notice kinds.
const (
	TooSmall NoticeKind = iota + 1
	WrongWay
	IncompleteSweep
	NewHighScore
)

// String returns the kind name.
func (k NoticeKind) String() string {
	switch k {
	case TooSmall:
		return "too-small"
	case WrongWay:
		return "wrong-way"
	case IncompleteSweep:
		return "incomplete-sweep"
	case NewHighScore:
		return "new-high-score"
	default:
		return "unknown"
	}
}

// Notice is sent to the Notifier on state transitions.
type Notice struct {
	Kind NoticeKind
	// Warning is set when the stroke keeps going despite the violation.
	Warning bool
	Score   float64
	Sweep   float64
}

// Message returns the text shown to the player.
func (n Notice) Message() string {
	switch n.Kind {
	case TooSmall:
		return "Try drawing a bigger circle"
	case WrongWay:
		return "Wrong way"
	case IncompleteSweep:
		return "Draw a full circle"
	case NewHighScore:
		return "New best score"
	default:
		return ""
	}
}

// Violation reports whether the notice is about a broken rule.
func (n Notice) Violation() bool {
	return n.Kind == TooSmall || n.Kind == WrongWay || n.Kind == IncompleteSweep
}

// String is used in logs.
func (n Notice) String() string {
	if n.Warning {
		return fmt.Sprintf("%s (warning)", n.Kind)
	}
	return n.Kind.String()
}

func kindFor(s policy.State) NoticeKind {
	switch s {
	case policy.FailedTooSmall:
		return TooSmall
	case policy.FailedWrongWay:
		return WrongWay
	default:
		return IncompleteSweep
	}
}

func kindForWarning(w policy.Warning) NoticeKind {
	if w == policy.WarnWrongWay {
		return WrongWay
	}
	return TooSmall
}
