// Package tui provides a terminal UI for exploring a relevance graph using
// bubbletea.
package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/npratt/relgraph/internal/config"
	"github.com/npratt/relgraph/internal/connections"
	"github.com/npratt/relgraph/internal/view"
)

// TUI is the terminal UI for a relevance graph.
type TUI struct {
	cfg     *config.Config
	source  connections.Source
	focus   string
	changes <-chan struct{}
	logger  *slog.Logger
	rng     *rand.Rand
	out     io.Writer
	onQuit  func()
	onOpen  func(id string)
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a new TUI showing the graph around focus.
func New(cfg *config.Config, source connections.Source, focus string, opts ...Option) *TUI {
	t := &TUI{
		cfg:    cfg,
		source: source,
		focus:  focus,
		logger: slog.Default(),
		out:    os.Stdout,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithChanges sets a channel that signals the source changed and the graph
// should be refetched.
func WithChanges(ch <-chan struct{}) Option {
	return func(t *TUI) {
		t.changes = ch
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *TUI) {
		t.logger = l
	}
}

// WithRand seeds node placement.
func WithRand(r *rand.Rand) Option {
	return func(t *TUI) {
		t.rng = r
	}
}

// WithOutput sets where the non-interactive fallback writes.
func WithOutput(w io.Writer) Option {
	return func(t *TUI) {
		t.out = w
	}
}

// WithOnQuit sets the callback invoked when the user quits.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// WithOnOpen sets the callback invoked when a secondary node is clicked.
func WithOnOpen(fn func(id string)) Option {
	return func(t *TUI) {
		t.onOpen = fn
	}
}

// build wires a canvas and a view for a cols x rows terminal area.
func (t *TUI) build(cols, rows int) (*view.View, *Canvas, *navigator) {
	canvas := NewCanvas()
	nav := &navigator{onOpen: t.onOpen}
	v := view.New(view.Options{
		Config:    t.cfg,
		Source:    t.source,
		Surface:   canvas,
		Canvas:    World(cols, rows),
		Navigator: nav,
		Logger:    t.logger,
		Rand:      t.rng,
	})
	logger := t.logger
	v.OnEmpty(func() {
		logger.Info("no connections above threshold", "focus", v.Focus(), "threshold", v.Config().Graph.RelevanceThreshold)
	})
	v.OnRebuild(func(info view.RebuildInfo) {
		logger.Debug("rebuild applied",
			"focus", info.Focus,
			"nodes", info.Nodes,
			"edges", info.Edges,
			"reseeded", info.Reseeded,
			"diagnostics", len(info.Diagnostics))
	})
	return v, canvas, nav
}

func (t *TUI) newModel() model {
	v, canvas, nav := t.build(defaultCols, defaultRows-chromeRows)
	return newModel(modelOptions{
		View:    v,
		Canvas:  canvas,
		Nav:     nav,
		Source:  t.source,
		Focus:   t.focus,
		Changes: t.changes,
		Timeout: t.cfg.Source.Timeout,
		Logger:  t.logger,
		OnQuit:  t.onQuit,
	})
}

// Run starts the TUI and blocks until it exits. Without a terminal it
// prints a single settled frame instead.
func (t *TUI) Run() error {
	return t.RunContext(context.Background())
}

// RunContext is Run bound to ctx: cancelling ctx quits the program. Signal
// handling is left to the caller.
func (t *TUI) RunContext(ctx context.Context) error {
	if !isTerminal() {
		return t.runSimple(ctx, time.Now())
	}

	p := tea.NewProgram(t.newModel(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
