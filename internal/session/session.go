// Package session tracks a single stroke from pointer-down to pointer-up.
package session

import (
	"github.com/gogpu/gg"

	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/policy"
	"github.com/verte-zerg/tuircle/internal/score"
	"github.com/verte-zerg/tuircle/internal/smooth"
	"github.com/verte-zerg/tuircle/internal/sweep"
)

// Feedback is the live state produced for every accepted sample.
type Feedback struct {
	State     policy.State
	Warning   policy.Warning
	Score     float64
	Color     gg.RGBA
	Curve     smooth.Curve
	Sweep     float64
	Direction sweep.Direction
	Samples   int
}

// Result describes a finished stroke. Score is set only when Completed.
type Result struct {
	State      policy.State
	Score      float64
	Sweep      float64
	Direction  sweep.Direction
	Samples    int
	MeanRadius float64
	Center     geom.Point
	Points     []geom.Point
	Curve      smooth.Curve
}

// Session owns the sample buffer and sweep state of one stroke at a time.
type Session struct {
	center    geom.Point
	policy    policy.Config
	precision int

	nextCenter *geom.Point
	nextPolicy *policy.Config

	stroke  []geom.Point
	tracker sweep.Tracker
	state   policy.State
	warning policy.Warning
	count   int
	started bool
}

// New returns a session scoring strokes around center under cfg.
func New(center geom.Point, cfg policy.Config, precision int) *Session {
	return &Session{
		center:    center,
		policy:    cfg,
		precision: precision,
		state:     policy.Active,
	}
}

// Center returns the center used by the current stroke.
func (s *Session) Center() geom.Point {
	return s.center
}

// Policy returns the policy used by the current stroke.
func (s *Session) Policy() policy.Config {
	return s.policy
}

// SetCenter changes the center starting with the next Begin.
func (s *Session) SetCenter(c geom.Point) {
	if !s.started || s.state.Terminal() {
		s.center = c
		s.nextCenter = nil
		return
	}
	s.nextCenter = &c
}

// SetPolicy changes the policy starting with the next Begin.
func (s *Session) SetPolicy(cfg policy.Config) {
	if !s.started || s.state.Terminal() {
		s.policy = cfg
		s.nextPolicy = nil
		return
	}
	s.nextPolicy = &cfg
}

// Begin discards any current stroke and starts a fresh one.
func (s *Session) Begin() {
	if s.nextCenter != nil {
		s.center = *s.nextCenter
		s.nextCenter = nil
	}
	if s.nextPolicy != nil {
		s.policy = *s.nextPolicy
		s.nextPolicy = nil
	}
	s.stroke = s.stroke[:0]
	s.tracker.Reset()
	s.state = policy.Active
	s.warning = policy.NoWarning
	s.count = 0
	s.started = true
}

// Started reports whether a stroke is in progress.
func (s *Session) Started() bool {
	return s.started && s.state == policy.Active
}

// Open reports whether Begin was called and End has not been called since.
// A stroke that failed stays open until End.
func (s *Session) Open() bool {
	return s.started
}

// State returns the validation state of the current stroke.
func (s *Session) State() policy.State {
	return s.state
}

// AddSample appends p and re-evaluates the stroke. Non-finite samples and
// samples after a terminal state are ignored.
func (s *Session) AddSample(p geom.Point) Feedback {
	if !s.started || s.state.Terminal() || !geom.Finite(p) {
		return s.feedback()
	}
	s.stroke = append(s.stroke, p)
	s.count++
	s.warning = policy.NoWarning
	n := len(s.stroke)
	if n >= 2 {
		delta := s.tracker.Update(s.stroke[n-2], s.stroke[n-1], s.center)
		s.state, s.warning = s.policy.Evaluate(policy.Check{
			Radius:     geom.Distance(p, s.center),
			Delta:      delta,
			Cumulative: s.tracker.Cumulative(),
			Direction:  s.tracker.Direction(),
		})
	}
	fb := s.feedback()
	if s.state.Failed() {
		s.stroke = s.stroke[:0]
	}
	return fb
}

// End closes the stroke and returns its result. The sample buffer is
// discarded; Result carries its own copy of the points. Calling End on a
// session that is not open returns the last state without a score.
func (s *Session) End() Result {
	if s.started && s.state == policy.Active {
		s.state = s.policy.Finish(s.tracker.Cumulative())
	}
	res := Result{
		State:     s.state,
		Sweep:     s.tracker.Cumulative(),
		Direction: s.tracker.Direction(),
		Samples:   s.count,
		Center:    s.center,
	}
	if s.started && s.state == policy.Completed {
		res.Points = append([]geom.Point(nil), s.stroke...)
		res.Score = score.Accuracy(res.Points, s.center, s.precision)
		res.MeanRadius = score.Stats(res.Points, s.center).Mean
		res.Curve = smooth.Smooth(res.Points)
	}
	s.stroke = s.stroke[:0]
	s.started = false
	return res
}

func (s *Session) feedback() Feedback {
	fb := Feedback{
		State:     s.state,
		Warning:   s.warning,
		Sweep:     s.tracker.Cumulative(),
		Direction: s.tracker.Direction(),
		Samples:   s.count,
	}
	if s.state.Failed() {
		fb.Color = score.ColorFor(0)
		return fb
	}
	fb.Score = score.Accuracy(s.stroke, s.center, s.precision)
	fb.Color = score.ColorFor(fb.Score)
	fb.Curve = smooth.Smooth(s.stroke)
	return fb
}
