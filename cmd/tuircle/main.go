// Package main provides the CLI entrypoint for tuircle.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuircle/internal/config"
	"github.com/verte-zerg/tuircle/internal/game"
	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/policy"
	"github.com/verte-zerg/tuircle/internal/session"
	"github.com/verte-zerg/tuircle/internal/share"
	"github.com/verte-zerg/tuircle/internal/store"
	"github.com/verte-zerg/tuircle/internal/tui"
)

const (
	defaultPolicy      = policy.Lenient
	defaultPrecision   = 0
	defaultCellWidth   = 8.0
	defaultCellHeight  = 16.0
	defaultCurveWindow = 20
	defaultLogLevel    = "info"
	maxPrecision       = 4
)

// policyFlags holds the validation flags shared by play and score.
type policyFlags struct {
	name       string
	minRadius  float64
	minSweep   float64
	maxSweep   float64
	tolerance  float64
	violations string
}

var (
	playPolicy     policyFlags
	playPrecision  int
	playCellWidth  float64
	playCellHeight float64
	playShareDir   string
	playLogFile    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuircle",
		Short:         "Draw a perfect circle in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}
	addPlayFlags(rootCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Draw circles (default)",
		Args:  cobra.NoArgs,
		RunE:  runPlayCmd,
	}
	addPlayFlags(playCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newBestCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addPlayFlags(cmd *cobra.Command) {
	addPolicyFlags(cmd, &playPolicy)
	cmd.Flags().IntVar(&playPrecision, "precision", defaultPrecision, "decimal places of the score (0-4)")
	cmd.Flags().Float64Var(&playCellWidth, "cell-width", defaultCellWidth, "terminal cell width in pixels")
	cmd.Flags().Float64Var(&playCellHeight, "cell-height", defaultCellHeight, "terminal cell height in pixels")
	cmd.Flags().StringVar(&playShareDir, "share-dir", config.DefaultShareDir(), "directory for shared score cards")
	cmd.Flags().StringVar(&playLogFile, "log-file", "", "write debug logs to this file")
}

func addPolicyFlags(cmd *cobra.Command, target *policyFlags) {
	cmd.Flags().StringVar(&target.name, "policy", defaultPolicy, fmt.Sprintf("validation policy (%s)", strings.Join(policy.PresetNames(), ", ")))
	cmd.Flags().Float64Var(&target.minRadius, "min-radius", 0, "minimum distance from the center in pixels (default: from policy)")
	cmd.Flags().Float64Var(&target.minSweep, "min-sweep", 0, "sweep in radians required to complete (default: from policy)")
	cmd.Flags().Float64Var(&target.maxSweep, "max-sweep", 0, "sweep in radians that completes automatically, 0 disables (default: from policy)")
	cmd.Flags().Float64Var(&target.tolerance, "direction-tolerance", 0, "ignored backward movement in radians (default: from policy)")
	cmd.Flags().StringVar(&target.violations, "violations", "", "fail or warn (default: from policy)")
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "precision", &playPrecision, fileCfg.Play.Precision)
	applyFloatConfig(cmd, "cell-width", &playCellWidth, fileCfg.Play.CellWidth)
	applyFloatConfig(cmd, "cell-height", &playCellHeight, fileCfg.Play.CellHeight)
	applyStringConfig(cmd, "share-dir", &playShareDir, fileCfg.Play.ShareDir)
	applyStringConfig(cmd, "log-file", &playLogFile, fileCfg.Log.File)

	pol, err := resolvePolicy(cmd.Flags().Changed, playPolicy, fileCfg.Policy)
	if err != nil {
		return err
	}
	cfg := model.Config{
		Policy:             pol.Name,
		MinRadius:          pol.MinRadius,
		MinSweep:           pol.MinSweep,
		MaxSweep:           pol.MaxSweep,
		DirectionTolerance: pol.DirectionTolerance,
		Violations:         string(pol.Violations),
		Precision:          playPrecision,
		CellWidth:          playCellWidth,
		CellHeight:         playCellHeight,
		ShareDir:           playShareDir,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(playLogFile, logLevel(fileCfg))
	if err != nil {
		return err
	}
	defer closeLog()
	gg.SetLogger(logger)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		logger.Warn("config directory", "err", err)
	}
	reloads, err := config.Watch(ctx, configPath)
	if err != nil {
		logErrf("config reload disabled: %v\n", err)
		reloads = nil
	}
	changed := cmd.Flags().Changed
	flags := playPolicy
	applyReload := func(fc config.FileConfig) (policy.Config, error) {
		return resolvePolicy(changed, flags, fc.Policy)
	}

	notices := tui.NewNotices()
	sess := session.New(geom.Pt(0, 0), pol, cfg.Precision)
	g := game.New(sess, st, notices,
		game.WithSharer(share.Dir{Path: cfg.ShareDir, Precision: cfg.Precision}),
		game.WithRecorder(st),
		game.WithLogger(logger),
	)
	m := tui.NewModel(ctx, g, notices, tui.Options{
		Config:      cfg,
		Reloads:     reloads,
		ApplyReload: applyReload,
		Logger:      logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolvePolicy starts from the named preset and overrides single thresholds,
// taking explicitly set flags first and config values second.
func resolvePolicy(changed func(string) bool, flags policyFlags, pc config.PolicyConfig) (policy.Config, error) {
	name := flags.name
	if !changed("policy") && pc.Name != nil {
		name = *pc.Name
	}
	cfg, err := policy.Preset(name)
	if err != nil {
		return policy.Config{}, err
	}
	pickFloat(changed, "min-radius", &cfg.MinRadius, flags.minRadius, pc.MinRadius)
	pickFloat(changed, "min-sweep", &cfg.MinSweep, flags.minSweep, pc.MinSweep)
	pickFloat(changed, "max-sweep", &cfg.MaxSweep, flags.maxSweep, pc.MaxSweep)
	pickFloat(changed, "direction-tolerance", &cfg.DirectionTolerance, flags.tolerance, pc.DirectionTolerance)
	switch {
	case changed("violations"):
		cfg.Violations = policy.Violations(strings.ToLower(flags.violations))
	case pc.Violations != nil:
		cfg.Violations = policy.Violations(strings.ToLower(*pc.Violations))
	}
	if err := cfg.Validate(); err != nil {
		return policy.Config{}, fmt.Errorf("invalid policy %s: %w", cfg.Name, err)
	}
	return cfg, nil
}

func pickFloat(changed func(string) bool, name string, target *float64, flag float64, value *float64) {
	if changed(name) {
		*target = flag
		return
	}
	if value != nil {
		*target = *value
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuircle configuration
# Uncomment a value to enable it. CLI flags override config values.
# Changes to [policy] apply to the next stroke while playing.

[play]
# precision = %d            # Decimal places of the score (0-%d)
# cell-width = %.1f        # Terminal cell width in pixels
# cell-height = %.1f      # Terminal cell height in pixels
# share-dir = %q

[policy]
# name = %q          # Preset: %s
# min-radius = 50.0         # Minimum distance from the center in pixels
# min-sweep = 5.0           # Sweep in radians required to complete
# max-sweep = 0.0           # Sweep that completes automatically (0 disables)
# direction-tolerance = 0.01
# violations = "warn"       # fail or warn

[log]
# file = "/tmp/tuircle.log" # Debug log file (disabled when unset)
# level = %q             # debug, info, warn or error
`,
		defaultPrecision,
		maxPrecision,
		defaultCellWidth,
		defaultCellHeight,
		config.DefaultShareDir(),
		defaultPolicy,
		strings.Join(policy.PresetNames(), ", "),
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Precision < 0 || cfg.Precision > maxPrecision {
		return fmt.Errorf("--precision must be between 0 and %d", maxPrecision)
	}
	if cfg.CellWidth <= 0 {
		return fmt.Errorf("--cell-width must be > 0")
	}
	if cfg.CellHeight <= 0 {
		return fmt.Errorf("--cell-height must be > 0")
	}
	if strings.TrimSpace(cfg.ShareDir) == "" {
		return fmt.Errorf("--share-dir must not be empty")
	}
	return nil
}

func logLevel(fc config.FileConfig) string {
	if fc.Log.Level == nil {
		return defaultLogLevel
	}
	return *fc.Log.Level
}

// newLogger returns a text logger writing to path. An empty path discards
// everything.
func newLogger(path, level string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	closeFn := func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}
	return logger, closeFn, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
