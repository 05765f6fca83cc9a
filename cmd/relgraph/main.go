package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/npratt/relgraph/internal/config"
	"github.com/npratt/relgraph/internal/connections"
	"github.com/npratt/relgraph/internal/graph"
	"github.com/npratt/relgraph/internal/shutdown"
	"github.com/npratt/relgraph/internal/testutil"
	"github.com/npratt/relgraph/internal/tui"
	"github.com/npratt/relgraph/internal/view"
)

var version = "dev"

const (
	// snapshotFrame is the simulated frame interval used by the headless settle.
	snapshotFrame = 16 * time.Millisecond

	shutdownTimeout = 5 * time.Second
)

// app carries the state shared by every subcommand.
type app struct {
	v        *viper.Viper
	out      io.Writer
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

// loadConfig loads config files and applies CLI flag overrides
// (only for flags explicitly set).
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if a.v.GetBool(FlagVerbose) {
		a.logLevel.Set(slog.LevelDebug)
		a.logger.Debug("verbose logging enabled")
	}

	cfg, err := config.LoadConfig(a.v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed(FlagLogFile) {
		cfg.Paths.Log = a.v.GetString(FlagLogFile)
	}
	if flags.Changed(FlagSourceFile) {
		cfg.Source.File = a.v.GetString(FlagSourceFile)
		cfg.Source.Command = nil
	}
	if flags.Changed(FlagSourceCommand) {
		cfg.Source.Command = a.v.GetStringSlice(FlagSourceCommand)
	}
	if flags.Changed(FlagNoBreaker) {
		cfg.Source.Breaker.Enabled = !a.v.GetBool(FlagNoBreaker)
	}
	if flags.Changed(FlagThreshold) {
		cfg.Graph.RelevanceThreshold = a.v.GetFloat64(FlagThreshold)
	}
	if flags.Changed(FlagFilter) {
		cfg.Graph.ConnectionKindFilter = a.v.GetString(FlagFilter)
	}
	if flags.Changed(FlagWatch) {
		cfg.Source.Watch = a.v.GetBool(FlagWatch)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildSource picks the connection source from config. A scoring command
// takes precedence over a file.
func buildSource(cfg *config.Config, logger *slog.Logger) (connections.Source, error) {
	var src connections.Source
	switch {
	case len(cfg.Source.Command) > 0:
		cs, err := connections.NewCommandSource(testutil.NewExecRunner(), cfg.Source.Command, cfg.Source.Timeout)
		if err != nil {
			return nil, err
		}
		src = cs
	case cfg.Source.File != "":
		src = connections.NewFileSource(cfg.Source.File)
	default:
		return nil, errors.New("no connection source configured (set --source-file, --source-command or source.file in config)")
	}

	if !cfg.Source.Breaker.Enabled {
		return src, nil
	}
	b := cfg.Source.Breaker
	return connections.NewBreakerSource(src, connections.BreakerSettings{
		Name:             "connections",
		MaxRequests:      b.MaxRequests,
		Interval:         b.Interval,
		Timeout:          b.Timeout,
		FailureThreshold: b.FailureThreshold,
		MinRequests:      b.MinRequests,
	}, logger), nil
}

func newRootCmd(out io.Writer, logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("RELGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	a := &app{v: v, out: out, logger: logger, logLevel: logLevel}

	rootCmd := &cobra.Command{
		Use:   "relgraph",
		Short: "Explore the relevance graph around a document",
		Long: `relgraph builds a connection graph around a focus document from scored
relevance records and lays it out with a force simulation.

Connections come from a JSON index file or an external scoring command that
prints the records for one focus document.`,
		SilenceUsage: true,
		// Bind the running command's flags only; view and snapshot share
		// flag names.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				_ = v.BindPFlag(f.Name, f)
			})
		},
	}
	rootCmd.SetOut(out)

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .relgraph/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Log file path used while the TUI is running")
	rootCmd.PersistentFlags().String(FlagSourceFile, "", "JSON file mapping focus documents to connection records")
	rootCmd.PersistentFlags().StringSlice(FlagSourceCommand, nil, "Scoring command; the focus document is appended as the last argument")
	rootCmd.PersistentFlags().Bool(FlagNoBreaker, false, "Disable the circuit breaker around the connection source")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(out, "relgraph %s\n", version)
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view <focus>",
		Short: "Explore the graph around a document interactively",
		Long: `Open the interactive graph view for a focus document.

Hover to preview, click to select or open, drag to move and pin nodes,
ctrl-drag to box select. Without a terminal a single settled frame is
printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args[0])
		},
	}
	viewCmd.Flags().Float64(FlagThreshold, 0, "Minimum relevance score (0-1)")
	viewCmd.Flags().String(FlagFilter, "", "Connection kind filter (block/note/both)")
	viewCmd.Flags().Bool(FlagWatch, false, "Rebuild when the source file changes")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot <focus>",
		Short: "Build and lay out the graph headlessly and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSnapshot(cmd, args[0])
		},
	}
	snapshotCmd.Flags().Float64(FlagThreshold, 0, "Minimum relevance score (0-1)")
	snapshotCmd.Flags().String(FlagFilter, "", "Connection kind filter (block/note/both)")
	snapshotCmd.Flags().String(FlagFormat, FormatJSON, "Output format (json/yaml)")
	snapshotCmd.Flags().Int(FlagTicks, 300, "Maximum simulation ticks before printing")
	snapshotCmd.Flags().Float64(FlagWidth, 800, "Layout canvas width")
	snapshotCmd.Flags().Float64(FlagHeight, 600, "Layout canvas height")
	snapshotCmd.Flags().Uint64(FlagSeed, 1, "Seed for initial node placement")

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "List the focus documents present in the source file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeys(cmd)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(keysCmd)

	return rootCmd
}

func (a *app) runView(cmd *cobra.Command, focus string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	// TUI mode: redirect the logger to a file before anything logs
	logger := a.logger
	if tui.IsTerminal() {
		logResult, err := SetupTUILogger(cfg.Paths.Log, a.logLevel, cfg.LogRotation)
		if err != nil {
			return err
		}
		defer func() { _ = logResult.Close() }()
		logger = logResult.Logger
		slog.SetDefault(logger)
	}

	src, err := buildSource(cfg, logger)
	if err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithLogger(logger),
		tui.WithOutput(a.out),
		tui.WithOnOpen(func(id string) {
			logger.Info("open requested", "id", id)
		}),
	}

	if cfg.Source.Watch && cfg.Source.File != "" && len(cfg.Source.Command) == 0 {
		w, err := connections.NewWatcher(cfg.Source.File, 0, logger)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
		opts = append(opts, tui.WithChanges(w.Changes()))
	}

	logger.Info("relgraph starting",
		"version", version,
		"focus", focus,
		"threshold", cfg.Graph.RelevanceThreshold,
		"filter", cfg.Graph.ConnectionKindFilter)

	ui := tui.New(cfg, src, focus, opts...)
	return shutdown.RunWithGracefulShutdown(cmd.Context(), logger, shutdownTimeout,
		ui.RunContext,
		nil)
}

func (a *app) runSnapshot(cmd *cobra.Command, focus string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	format := a.v.GetString(FlagFormat)
	if format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}

	src, err := buildSource(cfg, a.logger)
	if err != nil {
		return err
	}

	seed := a.v.GetUint64(FlagSeed)
	vw := view.New(view.Options{
		Config:  cfg,
		Source:  src,
		Surface: tui.NewCanvas(),
		Canvas:  graph.Canvas{Width: a.v.GetFloat64(FlagWidth), Height: a.v.GetFloat64(FlagHeight)},
		Logger:  a.logger,
		Rand:    rand.New(rand.NewPCG(seed, seed)),
	})
	vw.SetFocus(focus)

	now := time.Now()
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.Timeout)
	defer cancel()
	if err := vw.Refresh(ctx, now); err != nil {
		return fmt.Errorf("fetch connections for %s: %w", focus, err)
	}
	if err := vw.Status().LastError; err != nil {
		return err
	}
	ticks := vw.Simulation().Settle(now, snapshotFrame, a.v.GetInt(FlagTicks))
	a.logger.Debug("layout settled", "ticks", ticks)

	snap := vw.Graph().Snapshot(cfg.Forces.LinkDistance)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		_, err = fmt.Fprintln(a.out, string(data))
		return err
	}
}

func (a *app) runKeys(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Source.File == "" {
		return errors.New("keys needs a source file (set --source-file or source.file in config)")
	}

	keys, err := connections.NewFileSource(cfg.Source.File).Keys()
	if err != nil {
		return err
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintln(a.out, k)
	}
	return nil
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	rootCmd := newRootCmd(os.Stdout, logger, logLevel)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
