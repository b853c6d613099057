// Package game connects a stroke session to the best-score store, the
// notification sink, the share action and the attempt recorder.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/policy"
	"github.com/verte-zerg/tuircle/internal/session"
)

var (
	// ErrShareUnavailable is returned by Share when no share action is configured.
	ErrShareUnavailable = errors.New("share is not available")
	// ErrNoResult is returned by Share before any stroke completed.
	ErrNoResult = errors.New("no completed stroke to share")
	// ErrNotDrawing is returned by End when no stroke is open.
	ErrNotDrawing = errors.New("no stroke in progress")
)

// BestScoreStore persists the best score.
type BestScoreStore interface {
	BestScore(ctx context.Context) (model.Best, error)
	SetBestScore(ctx context.Context, score float64, at time.Time) error
}

// Notifier receives user-facing notices.
type Notifier interface {
	Notify(Notice)
}

// Sharer publishes a completed result and returns where it went.
type Sharer interface {
	Share(ctx context.Context, res session.Result) (string, error)
}

// Recorder stores attempt summaries.
type Recorder interface {
	RecordAttempt(ctx context.Context, a model.Attempt) (int64, error)
}

// Outcome is the result of End together with the best-score bookkeeping.
type Outcome struct {
	Result       session.Result
	Policy       string
	Best         model.Best
	PreviousBest float64
	NewBest      bool
}

// Option configures a Game.
type Option func(*Game)

// WithSharer enables Share.
func WithSharer(s Sharer) Option {
	return func(g *Game) { g.sharer = s }
}

// WithRecorder records a summary of every finished stroke.
func WithRecorder(r Recorder) Option {
	return func(g *Game) { g.recorder = r }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// Game drives one session at a time. All methods are safe for concurrent use.
type Game struct {
	mu sync.Mutex

	sess     *session.Session
	best     BestScoreStore
	notifier Notifier
	sharer   Sharer
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	startedAt  time.Time
	policyName string
	lastState  policy.State
	warned     map[policy.Warning]bool
	last       *session.Result
	memBest    model.Best
}

// New returns a game around sess. best and notifier may be nil; without a
// store the best score lives only as long as the game.
func New(sess *session.Session, best BestScoreStore, notifier Notifier, opts ...Option) *Game {
	g := &Game{
		sess:     sess,
		best:     best,
		notifier: notifier,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		warned:   map[policy.Warning]bool{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetPolicy changes the policy from the next stroke on.
func (g *Game) SetPolicy(cfg policy.Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sess.SetPolicy(cfg)
	g.logger.Debug("policy changed", "policy", cfg.Name)
}

// SetCenter changes the center from the next stroke on.
func (g *Game) SetCenter(c geom.Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sess.SetCenter(c)
}

// Center returns the center of the current stroke.
func (g *Game) Center() geom.Point {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sess.Center()
}

// Drawing reports whether a stroke is open.
func (g *Game) Drawing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sess.Open()
}

// Begin starts a new stroke, discarding any open one.
func (g *Game) Begin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sess.Begin()
	g.startedAt = g.now()
	g.policyName = g.sess.Policy().Name
	g.lastState = policy.Active
	clear(g.warned)
	g.logger.Debug("stroke begin", "center", g.sess.Center(), "policy", g.policyName)
}

// Sample feeds one pointer position into the open stroke.
func (g *Game) Sample(p geom.Point) session.Feedback {
	g.mu.Lock()
	defer g.mu.Unlock()
	fb := g.sess.AddSample(p)
	if fb.State != g.lastState {
		if fb.State.Failed() {
			g.notify(Notice{Kind: kindFor(fb.State), Sweep: fb.Sweep})
			g.logger.Debug("stroke failed", "state", fb.State, "samples", fb.Samples)
		}
		g.lastState = fb.State
	}
	if fb.Warning != policy.NoWarning && !g.warned[fb.Warning] {
		g.warned[fb.Warning] = true
		g.notify(Notice{Kind: kindForWarning(fb.Warning), Warning: true, Sweep: fb.Sweep})
	}
	return fb
}

// End closes the open stroke. A completed stroke is compared with the stored
// best score, which is read once and written only when strictly exceeded.
// The outcome is valid even when err reports a store failure.
func (g *Game) End(ctx context.Context) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.sess.Open() {
		return Outcome{}, ErrNotDrawing
	}
	wasActive := g.sess.State() == policy.Active
	res := g.sess.End()
	out := Outcome{Result: res, Policy: g.policyName}
	endedAt := g.now()

	if res.State == policy.FailedIncompleteSweep && wasActive {
		g.notify(Notice{Kind: IncompleteSweep, Sweep: res.Sweep})
	}
	g.logger.Debug("stroke end", "state", res.State, "score", res.Score, "sweep", res.Sweep, "samples", res.Samples)

	var errs []error
	if res.State == policy.Completed {
		kept := res
		g.last = &kept
		if err := g.updateBest(ctx, &out, endedAt); err != nil {
			errs = append(errs, err)
		}
	}
	if g.recorder != nil && res.Samples > 0 {
		attempt := model.Attempt{
			StartedAt:  g.startedAt,
			EndedAt:    endedAt,
			Policy:     g.policyName,
			Outcome:    res.State.String(),
			Score:      res.Score,
			Sweep:      res.Sweep,
			Samples:    res.Samples,
			MeanRadius: res.MeanRadius,
		}
		if _, err := g.recorder.RecordAttempt(ctx, attempt); err != nil {
			errs = append(errs, fmt.Errorf("failed to record attempt: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		g.logger.Warn("stroke end", "err", err)
		return out, err
	}
	return out, nil
}

func (g *Game) updateBest(ctx context.Context, out *Outcome, at time.Time) error {
	prev := g.memBest
	if g.best != nil {
		var err error
		if prev, err = g.best.BestScore(ctx); err != nil {
			return fmt.Errorf("failed to read best score: %w", err)
		}
	}
	out.PreviousBest = prev.Score
	out.Best = prev
	if out.Result.Score <= prev.Score {
		return nil
	}
	if g.best != nil {
		if err := g.best.SetBestScore(ctx, out.Result.Score, at); err != nil {
			return fmt.Errorf("failed to store best score: %w", err)
		}
	}
	out.NewBest = true
	out.Best = model.Best{Score: out.Result.Score, SetAt: at, Found: true}
	g.memBest = out.Best
	g.notify(Notice{Kind: NewHighScore, Score: out.Result.Score})
	g.logger.Info("new best score", "score", out.Result.Score, "previous", prev.Score)
	return nil
}

// BestScore returns the current best score.
func (g *Game) BestScore(ctx context.Context) (model.Best, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.best == nil {
		return g.memBest, nil
	}
	best, err := g.best.BestScore(ctx)
	if err != nil {
		return model.Best{}, fmt.Errorf("failed to read best score: %w", err)
	}
	return best, nil
}

// Last returns the most recent completed result.
func (g *Game) Last() (session.Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return session.Result{}, false
	}
	return *g.last, true
}

// Share publishes the most recent completed result.
func (g *Game) Share(ctx context.Context) (string, error) {
	g.mu.Lock()
	sharer := g.sharer
	var res session.Result
	ok := g.last != nil
	if ok {
		res = *g.last
	}
	g.mu.Unlock()

	if sharer == nil {
		return "", ErrShareUnavailable
	}
	if !ok {
		return "", ErrNoResult
	}
	where, err := sharer.Share(ctx, res)
	if err != nil {
		return "", fmt.Errorf("failed to share: %w", err)
	}
	g.logger.Debug("shared", "to", where)
	return where, nil
}

func (g *Game) notify(n Notice) {
	if g.notifier != nil {
		g.notifier.Notify(n)
	}
}
