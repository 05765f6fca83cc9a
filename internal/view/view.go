// Package view wires graph construction, layout, highlighting and rendering
// into one frame-driven orchestrator. The host calls Frame once per frame and
// forwards pointer and settings events; everything runs on the host's loop.
package view

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/npratt/relgraph/internal/config"
	"github.com/npratt/relgraph/internal/connections"
	"github.com/npratt/relgraph/internal/graph"
	"github.com/npratt/relgraph/internal/highlight"
	"github.com/npratt/relgraph/internal/layout"
	"github.com/npratt/relgraph/internal/render"
)

// Options configures a View.
type Options struct {
	Config    *config.Config
	Source    connections.Source
	Surface   render.Surface
	Canvas    graph.Canvas
	Navigator highlight.Navigator
	Logger    *slog.Logger
	Rand      *rand.Rand // Seeds node placement and tie-breaking; nil for random
}

// Ticket identifies one outstanding rebuild request.
type Ticket struct {
	ID    int
	Focus string
}

// RebuildInfo describes a completed rebuild.
type RebuildInfo struct {
	Focus       string
	Nodes       int
	Edges       int
	Empty       bool
	Reseeded    bool
	Diagnostics []graph.Diagnostic
	Diff        render.Diff
}

// Status is a point-in-time summary for status bars.
type Status struct {
	Focus            string
	Nodes            int
	Edges            int
	Threshold        float64
	PendingThreshold *float64
	Filter           string
	Empty            bool
	Energy           layout.State
	PinnedAll        bool
	Rebuilds         int
	LastError        error
}

// View is the orchestrator. It is not safe for concurrent use.
type View struct {
	cfg    *config.Config
	source connections.Source
	logger *slog.Logger

	builder *graph.Builder
	sim     *layout.Simulation
	ctrl    *highlight.Controller
	rec     *render.Reconciler

	focus      string
	conns      []connections.Connection
	connsFocus string
	g          *graph.Graph
	empty      bool
	aborted    bool
	lastErr    error

	pending     *float64
	debounceDue time.Time

	requestID int
	rebuilds  int

	onEmpty   func()
	onRebuild func(RebuildInfo)
}

// New creates a View. The Config is owned by the View from here on.
func New(opts Options) *View {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	v := &View{
		cfg:     cfg,
		source:  opts.Source,
		logger:  logger,
		builder: graph.NewBuilder(opts.Canvas, rng),
		sim:     layout.New(layout.ParamsFromConfig(cfg.Forces, cfg.Display), opts.Canvas, rng),
		rec:     render.NewReconciler(opts.Surface, cfg.Display),
	}
	v.ctrl = highlight.New(v.rec, opts.Navigator)
	v.rec.SetLabelOffsets(v.sim)
	v.sim.OnTick(v.rec.Positions)
	return v
}

// OnEmpty registers a callback fired when a rebuild leaves no edges.
func (v *View) OnEmpty(fn func()) {
	v.onEmpty = fn
}

// OnRebuild registers a callback fired after every applied rebuild.
func (v *View) OnRebuild(fn func(RebuildInfo)) {
	v.onRebuild = fn
}

// Config returns the live configuration.
func (v *View) Config() config.Config {
	return *v.cfg
}

// Graph returns the last successfully built graph.
func (v *View) Graph() *graph.Graph {
	return v.g
}

// Focus returns the focus document key.
func (v *View) Focus() string {
	return v.focus
}

// Highlight returns the selection and hover controller.
func (v *View) Highlight() *highlight.Controller {
	return v.ctrl
}

// Simulation returns the layout simulation.
func (v *View) Simulation() *layout.Simulation {
	return v.sim
}

// Status summarizes the view.
func (v *View) Status() Status {
	s := Status{
		Focus:            v.focus,
		Threshold:        v.cfg.Graph.RelevanceThreshold,
		PendingThreshold: v.pending,
		Filter:           v.cfg.Graph.ConnectionKindFilter,
		Empty:            v.empty,
		Energy:           v.sim.State(),
		PinnedAll:        v.sim.PinnedAll(),
		Rebuilds:         v.rebuilds,
		LastError:        v.lastErr,
	}
	if v.g != nil {
		s.Nodes = len(v.g.Nodes)
		s.Edges = len(v.g.Edges)
	}
	return s
}

// SetFocus switches the focus document and returns the fetch ticket for it.
// The host fetches connections and hands them to Apply.
func (v *View) SetFocus(key string) Ticket {
	v.focus = key
	return v.Request()
}

// Request issues a new rebuild ticket for the current focus. Any earlier
// ticket becomes stale.
func (v *View) Request() Ticket {
	v.requestID++
	return Ticket{ID: v.requestID, Focus: v.focus}
}

// Apply delivers fetched connections for a ticket. Results for stale tickets
// are dropped and Apply returns false. A fetch error is logged and the last
// good graph stays on screen.
func (v *View) Apply(t Ticket, conns []connections.Connection, err error, now time.Time) bool {
	if t.ID != v.requestID {
		v.logger.Debug("dropping stale connections", "request", t.ID, "latest", v.requestID)
		return false
	}
	if err != nil {
		v.lastErr = err
		v.logger.Warn("connection fetch failed", "focus", t.Focus, "error", err)
		return true
	}
	v.conns = conns
	v.connsFocus = t.Focus
	v.rebuild(now)
	return true
}

// Refresh fetches connections for the current focus synchronously and
// rebuilds.
func (v *View) Refresh(ctx context.Context, now time.Time) error {
	if v.source == nil {
		return errors.New("no connection source configured")
	}
	t := v.Request()
	conns, err := v.source.Connections(ctx, t.Focus)
	v.Apply(t, conns, err, now)
	return err
}

// SetFilter changes the connection kind filter and rebuilds immediately.
func (v *View) SetFilter(kind string, now time.Time) error {
	f, err := graph.ParseFilter(kind)
	if err != nil {
		return err
	}
	v.cfg.Graph.ConnectionKindFilter = string(f)
	v.rebuild(now)
	return nil
}

// SetThreshold schedules a threshold change. Repeated calls replace the
// pending value and push the deadline back; Frame applies it once due.
func (v *View) SetThreshold(t float64, now time.Time) {
	t = math.Max(0, math.Min(1, t))
	v.pending = &t
	v.debounceDue = now.Add(v.cfg.Graph.Debounce)
}

// Threshold returns the effective threshold, including a pending change.
func (v *View) Threshold() float64 {
	if v.pending != nil {
		return *v.pending
	}
	return v.cfg.Graph.RelevanceThreshold
}

// SetForces replaces the layout forces and reheats without rebuilding.
func (v *View) SetForces(f config.ForcesConfig, now time.Time) error {
	next := *v.cfg
	next.Forces = f
	if err := config.Validate(&next); err != nil {
		return err
	}
	v.cfg.Forces = f
	v.sim.SetParams(layout.ParamsFromConfig(v.cfg.Forces, v.cfg.Display), now)
	return nil
}

// SetDisplay changes visual settings. Only styles change, unless the node
// size or label length moved, which also alters collision and label boxes.
func (v *View) SetDisplay(d config.DisplayConfig, now time.Time) error {
	next := *v.cfg
	next.Display = d
	if err := config.Validate(&next); err != nil {
		return err
	}
	prev := v.cfg.Display
	v.cfg.Display = d
	v.rec.SetDisplay(d)
	if prev.NodeSize != d.NodeSize || prev.MaxLabelCharacters != d.MaxLabelCharacters {
		v.sim.SetParams(layout.ParamsFromConfig(v.cfg.Forces, v.cfg.Display), now)
	}
	return nil
}

// SetCanvas resizes the drawing surface.
func (v *View) SetCanvas(c graph.Canvas, now time.Time) {
	v.builder.SetCanvas(c)
	v.sim.SetCanvas(c, now)
}

// Reset restores every graph setting to its default and rebuilds exactly
// once. A pending threshold change is discarded.
func (v *View) Reset(now time.Time) {
	v.pending = nil
	v.cfg.ResetGraphSettings()
	v.rec.SetDisplay(v.cfg.Display)
	v.sim.SetParams(layout.ParamsFromConfig(v.cfg.Forces, v.cfg.Display), now)
	v.rebuild(now)
}

// PinAll pins or releases every node.
func (v *View) PinAll(on bool, now time.Time) {
	v.sim.PinAll(on, now)
}

// Reheat nudges the simulation back to life.
func (v *View) Reheat(now time.Time) {
	v.sim.Reheat(now)
}

// Frame applies a due threshold change and advances the simulation one tick.
// It reports whether anything moved.
func (v *View) Frame(now time.Time) bool {
	rebuilt := false
	if v.pending != nil && !now.Before(v.debounceDue) {
		v.cfg.Graph.RelevanceThreshold = *v.pending
		v.pending = nil
		v.rebuild(now)
		rebuilt = true
	}
	return v.sim.Tick(now) || rebuilt
}

// SetTransform changes zoom and pan.
func (v *View) SetTransform(t render.Transform) {
	v.rec.SetTransform(t)
}

// Transform returns the current zoom and pan.
func (v *View) Transform() render.Transform {
	return v.rec.Transform()
}

// NodeAt returns the id of the node nearest to world point (x, y) within
// tolerance world units of its rim, or "".
func (v *View) NodeAt(x, y, tolerance float64) string {
	if v.g == nil {
		return ""
	}
	best := ""
	bestDist := v.cfg.Display.NodeSize + tolerance
	for _, id := range v.g.IDs() {
		n := v.g.Nodes[id]
		if d := math.Hypot(n.X-x, n.Y-y); d <= bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

// rebuild constructs a graph from the cached connections and swaps it in.
// A systemic validation failure keeps the previous graph. Until connections
// for the current focus arrive there is nothing to build; settings changed in
// the meantime take effect on the pending Apply.
func (v *View) rebuild(now time.Time) {
	if v.focus == "" || v.connsFocus != v.focus {
		return
	}
	conns := v.conns

	f, err := graph.ParseFilter(v.cfg.Graph.ConnectionKindFilter)
	if err != nil {
		f = graph.FilterBoth
	}

	prev := v.g
	res, err := v.builder.Build(graph.Request{
		FocusKey:    v.focus,
		Connections: conns,
		Filter:      f,
		Threshold:   v.cfg.Graph.RelevanceThreshold,
		Previous:    prev,
	})
	for _, d := range res.Diagnostics {
		v.logger.Debug("skipped connection", "focus", v.focus, "diagnostic", d.String())
	}
	if err != nil {
		v.lastErr = err
		v.aborted = true
		v.logger.Warn("keeping last graph", "focus", v.focus, "error", err)
		return
	}

	g := res.Graph
	reseed := prev == nil || v.aborted || disjoint(prev, g)
	v.aborted = false
	v.lastErr = nil
	v.g = g
	v.empty = res.Empty
	v.rebuilds++

	v.ctrl.SetGraph(g)
	diff := v.rec.Reconcile(g, v.ctrl.Styles())
	v.sim.SetGraph(g, reseed, now)

	v.logger.Debug("graph rebuilt",
		"focus", v.focus,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"entering", len(diff.Entering),
		"exiting", len(diff.Exiting),
		"reseed", reseed)

	if res.Empty && v.onEmpty != nil {
		v.onEmpty()
	}
	if v.onRebuild != nil {
		v.onRebuild(RebuildInfo{
			Focus:       v.focus,
			Nodes:       len(g.Nodes),
			Edges:       len(g.Edges),
			Empty:       res.Empty,
			Reseeded:    reseed,
			Diagnostics: res.Diagnostics,
			Diff:        diff,
		})
	}
}

// disjoint reports whether two graphs share no node id.
func disjoint(a, b *graph.Graph) bool {
	for id := range b.Nodes {
		if a.Nodes[id] != nil {
			return false
		}
	}
	return true
}
