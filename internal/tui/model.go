// Package tui provides the Bubble Tea drawing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gogpu/gg"

	"github.com/verte-zerg/tuircle/internal/config"
	"github.com/verte-zerg/tuircle/internal/game"
	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/policy"
	"github.com/verte-zerg/tuircle/internal/score"
	"github.com/verte-zerg/tuircle/internal/session"
	"github.com/verte-zerg/tuircle/internal/smooth"
)

const messageTTL = 2 * time.Second

// Options configures the drawing UI.
type Options struct {
	Config model.Config
	// Reloads delivers config file changes while playing.
	Reloads <-chan config.Reload
	// ApplyReload turns a reloaded file into the policy for the next stroke.
	ApplyReload func(config.FileConfig) (policy.Config, error)
	Logger      *slog.Logger
}

type hideMessageMsg struct {
	seq int
}

type reloadMsg struct {
	reload config.Reload
}

// Model implements the Bubble Tea drawing UI.
type Model struct {
	game    *game.Game
	notices *Notices
	opts    Options
	logger  *slog.Logger
	ctx     context.Context

	width  int
	height int
	surf   surface

	drawing bool
	fb      session.Feedback
	final   *session.Result

	lastScore  float64
	hasLast    bool
	best       model.Best
	policyName string

	message      string
	messageAlarm bool
	messageSeq   int

	keys keyMap
	help help.Model
}

var (
	centerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	alarmStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true).Blink(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a drawing TUI model around g. notices must be the
// notifier g was created with.
func NewModel(ctx context.Context, g *game.Game, notices *Notices, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Config.CellWidth <= 0 {
		opts.Config.CellWidth = 8
	}
	if opts.Config.CellHeight <= 0 {
		opts.Config.CellHeight = 16
	}
	m := &Model{
		game:       g,
		notices:    notices,
		opts:       opts,
		logger:     logger,
		ctx:        ctx,
		policyName: opts.Config.Policy,
		keys:       defaultKeys(),
		help:       help.New(),
	}
	m.help.Styles.ShortKey = footerStyle
	m.help.Styles.ShortDesc = footerStyle
	m.help.Styles.ShortSeparator = footerStyle
	m.loadBest()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForReload()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(tea.MouseEvent(msg))
		return m, m.takeNotices()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Share):
			return m, m.share()
		case key.Matches(msg, m.keys.Policy):
			return m, m.cyclePolicy()
		case key.Matches(msg, m.keys.Clear):
			if !m.drawing {
				m.final = nil
				m.fb = session.Feedback{}
			}
			return m, nil
		default:
			return m, nil
		}
	case hideMessageMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
			m.messageAlarm = false
		}
		return m, nil
	case reloadMsg:
		return m, tea.Batch(m.applyReload(msg.reload), m.waitForReload())
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	c := newCanvas(m.surf)
	curve, color := m.currentCurve()
	tolerance := math.Min(m.surf.cellWidth, m.surf.cellHeight) / 8
	c.polyline(curve.Flatten(tolerance))

	curveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(score.Hex(color)))
	mid := c.centerAt[1]
	if text, ok := m.scoreText(); ok {
		c.text(mid-2, text, curveStyle.Bold(true))
	}
	switch {
	case m.message != "" && m.messageAlarm:
		c.text(mid+2, m.message, alarmStyle)
	case m.message != "":
		c.text(mid+2, m.message, messageStyle)
	case !m.drawing && m.final == nil:
		c.text(mid+2, "Hold the left button and draw a circle around the dot", hintStyle)
	}
	body := c.render(curveStyle, centerStyle)
	if m.height < 2 {
		return body
	}
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + footer
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	rows := height - 1
	if rows < 1 {
		rows = height
	}
	m.surf = surface{
		cols:       width,
		rows:       rows,
		cellWidth:  m.opts.Config.CellWidth,
		cellHeight: m.opts.Config.CellHeight,
	}
	m.game.SetCenter(m.surf.center())
}

func (m *Model) handleMouse(ev tea.MouseEvent) {
	p := m.surf.point(ev.X, ev.Y)
	switch ev.Action {
	case tea.MouseActionPress:
		if ev.Button != tea.MouseButtonLeft || ev.Y >= m.surf.rows {
			return
		}
		m.game.Begin()
		m.drawing = true
		m.final = nil
		m.sample(p)
	case tea.MouseActionMotion:
		if m.drawing {
			m.sample(p)
		}
	case tea.MouseActionRelease:
		if !m.drawing {
			return
		}
		m.drawing = false
		m.finish()
	}
}

// sample feeds p into the stroke and closes it as soon as it auto-completes.
func (m *Model) sample(p geom.Point) {
	m.fb = m.game.Sample(p)
	if m.fb.State == policy.Completed {
		m.drawing = false
		m.finish()
	}
}

func (m *Model) finish() {
	out, err := m.game.End(m.ctx)
	if err != nil && !errors.Is(err, game.ErrNotDrawing) {
		m.logger.Error("finish stroke", "err", err)
		m.setMessage("Could not save the result", true)
	}
	if out.Result.State != policy.Completed {
		m.fb = session.Feedback{}
		return
	}
	res := out.Result
	m.final = &res
	m.lastScore = res.Score
	m.hasLast = true
	if out.Best.Found {
		m.best = out.Best
	}
}

func (m *Model) currentCurve() (smooth.Curve, gg.RGBA) {
	if m.drawing {
		return m.fb.Curve, m.fb.Color
	}
	if m.final != nil {
		return m.final.Curve, score.ColorFor(m.final.Score)
	}
	return smooth.Curve{}, score.ColorFor(0)
}

func (m *Model) scoreText() (string, bool) {
	precision := m.opts.Config.Precision
	if m.drawing {
		if m.fb.State.Failed() || m.fb.Samples < score.MinSamples {
			return "", false
		}
		return score.Format(m.fb.Score, precision), true
	}
	if m.final != nil {
		return score.Format(m.final.Score, precision), true
	}
	return "", false
}

// takeNotices shows the most recent queued notice.
func (m *Model) takeNotices() tea.Cmd {
	items := m.notices.drain()
	if len(items) == 0 {
		return nil
	}
	n := items[len(items)-1]
	text := n.Message()
	if n.Kind == game.NewHighScore {
		text = fmt.Sprintf("%s: %s", text, score.Format(n.Score, m.opts.Config.Precision))
	}
	return m.setMessage(text, n.Violation())
}

func (m *Model) setMessage(text string, alarm bool) tea.Cmd {
	m.message = text
	m.messageAlarm = alarm
	m.messageSeq++
	seq := m.messageSeq
	return tea.Tick(messageTTL, func(time.Time) tea.Msg {
		return hideMessageMsg{seq: seq}
	})
}

func (m *Model) share() tea.Cmd {
	where, err := m.game.Share(m.ctx)
	switch {
	case errors.Is(err, game.ErrShareUnavailable):
		return m.setMessage("Sharing is not configured", false)
	case errors.Is(err, game.ErrNoResult):
		return m.setMessage("Draw a full circle first", false)
	case err != nil:
		m.logger.Error("share", "err", err)
		return m.setMessage("Could not save the card", true)
	}
	return m.setMessage("Card saved to "+where, false)
}

func (m *Model) cyclePolicy() tea.Cmd {
	names := policy.PresetNames()
	next := names[0]
	for i, name := range names {
		if name == m.policyName {
			next = names[(i+1)%len(names)]
			break
		}
	}
	cfg, err := policy.Preset(next)
	if err != nil {
		return m.setMessage(err.Error(), true)
	}
	m.game.SetPolicy(cfg)
	m.policyName = cfg.Name
	return m.setMessage(fmt.Sprintf("Policy %s from the next stroke", cfg.Name), false)
}

func (m *Model) waitForReload() tea.Cmd {
	ch := m.opts.Reloads
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg{reload: r}
	}
}

func (m *Model) applyReload(r config.Reload) tea.Cmd {
	if r.Err != nil {
		m.logger.Warn("config reload", "err", r.Err)
		return m.setMessage("Config error, keeping the current policy", true)
	}
	if m.opts.ApplyReload == nil {
		return nil
	}
	cfg, err := m.opts.ApplyReload(r.Config)
	if err != nil {
		m.logger.Warn("config reload", "err", err)
		return m.setMessage("Config error, keeping the current policy", true)
	}
	m.game.SetPolicy(cfg)
	m.policyName = cfg.Name
	m.logger.Info("config reloaded", "policy", cfg.Name)
	return m.setMessage(fmt.Sprintf("Config reloaded, policy %s", cfg.Name), false)
}

func (m *Model) loadBest() {
	best, err := m.game.BestScore(m.ctx)
	if err != nil {
		logErrf("failed to load best score: %v\n", err)
		return
	}
	m.best = best
}

func (m *Model) renderFooter() string {
	precision := m.opts.Config.Precision
	segments := []string{}
	if m.best.Found {
		segments = append(segments, fmt.Sprintf("Best %s · %s", score.Format(m.best.Score, precision), humanize.Time(m.best.SetAt)))
	} else {
		segments = append(segments, "Best -")
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %s", score.Format(m.lastScore, precision)))
	}
	if m.policyName != "" {
		segments = append(segments, "Policy "+m.policyName)
	}
	if h := m.help.ShortHelpView(m.keys.ShortHelp()); h != "" {
		segments = append(segments, h)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
