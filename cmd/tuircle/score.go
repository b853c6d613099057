package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuircle/internal/config"
	"github.com/verte-zerg/tuircle/internal/game"
	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/policy"
	"github.com/verte-zerg/tuircle/internal/replay"
	"github.com/verte-zerg/tuircle/internal/score"
	"github.com/verte-zerg/tuircle/internal/session"
	"github.com/verte-zerg/tuircle/internal/share"
	"github.com/verte-zerg/tuircle/internal/stats"
	"github.com/verte-zerg/tuircle/internal/store"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	scorePolicy    policyFlags
	scorePrecision int
	scoreDryRun    bool
	scoreFormat    string
	scoreCard      string
)

type scoreRow struct {
	File     string  `json:"file" yaml:"file"`
	Stroke   int     `json:"stroke" yaml:"stroke"`
	Outcome  string  `json:"outcome" yaml:"outcome"`
	Score    float64 `json:"score" yaml:"score"`
	SweepDeg float64 `json:"sweep_deg" yaml:"sweep_deg"`
	Samples  int     `json:"samples" yaml:"samples"`
	NewBest  bool    `json:"new_best" yaml:"new_best"`
}

type scoreReport struct {
	Rows []scoreRow
	// Best is the highest scoring completed stroke, nil when none completed.
	Best *session.Result
}

// logNotifier writes game notices to the debug log.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(notice game.Notice) {
	n.logger.Info("notice", "kind", notice.Kind.String(), "message", notice.Message())
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score FILE...",
		Short: "Score recorded strokes (.jsonl, .yaml, optionally .zst)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScoreCmd,
	}
	addPolicyFlags(cmd, &scorePolicy)
	cmd.Flags().IntVar(&scorePrecision, "precision", defaultPrecision, "decimal places of the score (0-4)")
	cmd.Flags().BoolVar(&scoreDryRun, "dry-run", false, "do not update the best score or record attempts")
	cmd.Flags().StringVar(&scoreFormat, "format", formatTable, "output format: table, json or yaml")
	cmd.Flags().StringVar(&scoreCard, "card", "", "write a PNG card of the best completed stroke")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "precision", &scorePrecision, fileCfg.Play.Precision)
	if scorePrecision < 0 || scorePrecision > maxPrecision {
		return fmt.Errorf("--precision must be between 0 and %d", maxPrecision)
	}
	format := strings.ToLower(strings.TrimSpace(scoreFormat))
	switch format {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("--format must be one of %s, %s, %s", formatTable, formatJSON, formatYAML)
	}
	pol, err := resolvePolicy(cmd.Flags().Changed, scorePolicy, fileCfg.Policy)
	if err != nil {
		return err
	}

	logFile := ""
	if fileCfg.Log.File != nil {
		logFile = *fileCfg.Log.File
	}
	logger, closeLog, err := newLogger(logFile, logLevel(fileCfg))
	if err != nil {
		return err
	}
	defer closeLog()

	var best game.BestScoreStore
	opts := []game.Option{game.WithLogger(logger)}
	if !scoreDryRun {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		best = st
		opts = append(opts, game.WithRecorder(st))
	}
	g := newReplayGame(pol, scorePrecision, best, logger, opts...)

	report, err := scoreFiles(cmd.Context(), g, args)
	if err != nil {
		return err
	}
	if err := writeScoreReport(cmd.OutOrStdout(), report.Rows, format, scorePrecision); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if scoreCard != "" {
		if report.Best == nil {
			return fmt.Errorf("no completed stroke to render")
		}
		if err := share.SaveCard(scoreCard, *report.Best, scorePrecision); err != nil {
			return err
		}
		logErrf("Wrote %s\n", scoreCard)
	}
	return nil
}

func newReplayGame(pol policy.Config, precision int, best game.BestScoreStore, logger *slog.Logger, opts ...game.Option) *game.Game {
	sess := session.New(geom.Pt(0, 0), pol, precision)
	return game.New(sess, best, logNotifier{logger: logger}, opts...)
}

// scoreFiles replays every file through p in order.
func scoreFiles(ctx context.Context, p replay.Player, paths []string) (scoreReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var report scoreReport
	for _, path := range paths {
		strokes, err := replay.Load(path)
		if err != nil {
			return report, fmt.Errorf("failed to load %s: %w", path, err)
		}
		outcomes, err := replay.Run(ctx, p, strokes)
		for i, out := range outcomes {
			res := out.Result
			report.Rows = append(report.Rows, scoreRow{
				File:     path,
				Stroke:   i + 1,
				Outcome:  res.State.String(),
				Score:    res.Score,
				SweepDeg: math.Round(math.Abs(res.Sweep) * 180 / math.Pi),
				Samples:  res.Samples,
				NewBest:  out.NewBest,
			})
			if res.State == policy.Completed && (report.Best == nil || res.Score > report.Best.Score) {
				kept := res
				report.Best = &kept
			}
		}
		if err != nil {
			return report, fmt.Errorf("failed to replay %s: %w", path, err)
		}
	}
	return report, nil
}

func writeScoreReport(w io.Writer, rows []scoreRow, format string, precision int) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No strokes found.")
		return err
	}
	headers := []string{"File", "Stroke", "Outcome", "Score", "Sweep", "Samples", "Best"}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		scoreText := "-"
		if r.Outcome == policy.Completed.String() {
			scoreText = score.Format(r.Score, precision)
		}
		mark := ""
		if r.NewBest {
			mark = "new"
		}
		table = append(table, []string{
			r.File,
			fmt.Sprintf("%d", r.Stroke),
			r.Outcome,
			scoreText,
			fmt.Sprintf("%.0f°", r.SweepDeg),
			fmt.Sprintf("%d", r.Samples),
			mark,
		})
	}
	return stats.WriteTable(w, headers, table, map[int]bool{1: true, 3: true, 4: true, 5: true})
}
