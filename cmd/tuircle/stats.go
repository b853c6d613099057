package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuircle/internal/config"
	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/score"
	"github.com/verte-zerg/tuircle/internal/statsui"
	"github.com/verte-zerg/tuircle/internal/store"
)

var (
	statsPolicy      string
	statsSince       string
	statsLast        int
	statsCurveWindow int

	bestReset bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show attempt history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsPolicy, "policy", "", "policy filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	precision := defaultPrecision
	if fileCfg.Play.Precision != nil {
		precision = *fileCfg.Play.Precision
	}

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Policy:      statsPolicy,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := statsui.NewModel(st, cfg, precision)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newBestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best",
		Short: "Show or reset the best score",
		Args:  cobra.NoArgs,
		RunE:  runBestCmd,
	}
	cmd.Flags().BoolVar(&bestReset, "reset", false, "clear the best score")
	return cmd
}

func runBestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	precision := defaultPrecision
	if fileCfg.Play.Precision != nil {
		precision = *fileCfg.Play.Precision
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if bestReset {
		if err := st.ResetBestScore(ctx); err != nil {
			return fmt.Errorf("failed to reset best score: %w", err)
		}
		logErrln("Best score cleared.")
		return nil
	}
	best, err := st.BestScore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load best score: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), formatBest(best, precision, time.Now())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func formatBest(best model.Best, precision int, now time.Time) string {
	if !best.Found {
		return "No best score yet."
	}
	return fmt.Sprintf("Best %s, set %s (%s)",
		score.Format(best.Score, precision),
		best.SetAt.Local().Format("2006-01-02 15:04"),
		humanize.RelTime(best.SetAt, now, "ago", "from now"),
	)
}
