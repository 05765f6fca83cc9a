package layout

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/npratt/relgraph/internal/graph"
)

// State is the energy state of the simulation.
type State int

const (
	// Active means the simulation is being perturbed or is settling toward
	// its resting energy.
	Active State = iota
	// CoolingDown means the idle deadline passed and energy is decaying to zero.
	CoolingDown
	// Idle means energy fell below the stop threshold. Ticks do no work.
	Idle
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case CoolingDown:
		return "cooling"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

const (
	alphaMin      = 0.001
	velocityDecay = 0.4
	reheatAlpha   = 0.3
	restTarget    = 0.05
	dragTarget    = 0.3
)

// alphaDecay brings alpha from 1 to alphaMin in roughly 300 ticks.
var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300)

// Simulation positions the nodes of a graph by stepping forces.
// It is not safe for concurrent use; the host drives it from one loop.
type Simulation struct {
	params Params
	canvas graph.Canvas
	rng    *rand.Rand

	g      *graph.Graph
	order  []*graph.Node // Nodes in id order, for deterministic force passes
	degree map[string]int

	alpha       float64
	alphaTarget float64
	deadline    time.Time

	drag   *dragState
	pinAll bool

	labels map[string]*labelOffset
	onTick func(*graph.Graph)
}

// New creates an idle Simulation. rng breaks ties between coincident nodes;
// nil uses a randomly seeded source.
func New(params Params, canvas graph.Canvas, rng *rand.Rand) *Simulation {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulation{
		params: params,
		canvas: canvas,
		rng:    rng,
		labels: make(map[string]*labelOffset),
	}
}

// OnTick registers the callback invoked after every tick that did work.
func (s *Simulation) OnTick(fn func(*graph.Graph)) {
	s.onTick = fn
}

// Graph returns the graph being simulated.
func (s *Simulation) Graph() *graph.Graph {
	return s.g
}

// Params returns the current force parameters.
func (s *Simulation) Params() Params {
	return s.params
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// AlphaTarget returns the energy the simulation is decaying toward.
func (s *Simulation) AlphaTarget() float64 {
	return s.alphaTarget
}

// Deadline returns when the simulation will start cooling down.
func (s *Simulation) Deadline() time.Time {
	return s.deadline
}

// State reports the energy state.
func (s *Simulation) State() State {
	switch {
	case s.alpha < alphaMin:
		return Idle
	case s.alphaTarget == 0:
		return CoolingDown
	default:
		return Active
	}
}

// SetCanvas updates the canvas the center force pulls toward.
func (s *Simulation) SetCanvas(c graph.Canvas, now time.Time) {
	s.canvas = c
	s.Reheat(now)
}

// SetParams replaces the forces and reheats.
func (s *Simulation) SetParams(p Params, now time.Time) {
	s.params = p
	s.Reheat(now)
}

// SetGraph swaps in a newly built graph and reheats. reseed restarts from
// full energy with zero velocities; use it only when the node identity set
// changed completely or after an aborted build.
func (s *Simulation) SetGraph(g *graph.Graph, reseed bool, now time.Time) {
	s.g = g
	s.order = s.order[:0]
	for _, id := range g.IDs() {
		s.order = append(s.order, g.Nodes[id])
	}
	s.degree = make(map[string]int)
	if g != nil {
		for _, e := range g.Edges {
			s.degree[e.SourceID]++
			s.degree[e.TargetID]++
		}
	}

	s.rebindDrag(g)

	labels := make(map[string]*labelOffset)
	for _, id := range g.IDs() {
		if l, ok := s.labels[id]; ok && !reseed {
			labels[id] = l
		} else {
			labels[id] = &labelOffset{}
		}
		n := g.Nodes[id]
		if reseed {
			n.VX, n.VY = 0, 0
		}
		if s.pinAll && !n.IsPinned() {
			n.Pin(n.X, n.Y)
		}
	}
	s.labels = labels

	if reseed {
		s.alpha = 1
	}
	s.Reheat(now)
}

// Reheat raises the energy so the layout resumes moving and pushes the idle
// deadline to now + IdleAfter.
func (s *Simulation) Reheat(now time.Time) {
	s.alpha = math.Max(s.alpha, reheatAlpha)
	if s.drag != nil {
		s.alphaTarget = dragTarget
	} else {
		s.alphaTarget = restTarget
	}
	s.deadline = now.Add(s.params.IdleAfter)
}

// Stop drops the energy to zero immediately.
func (s *Simulation) Stop() {
	s.alpha = 0
	s.alphaTarget = 0
}

// Tick advances the simulation one step. It returns false when the
// simulation is idle and nothing moved.
func (s *Simulation) Tick(now time.Time) bool {
	if s.g == nil || s.State() == Idle {
		return false
	}

	if s.drag == nil && !now.Before(s.deadline) {
		s.alphaTarget = 0
	}

	s.alpha += (s.alphaTarget - s.alpha) * alphaDecay

	s.applyCenter()
	s.applyRepulsion()
	s.applyLinks()
	s.applyCollision()
	s.integrate()
	s.declutterLabels()

	if s.onTick != nil {
		s.onTick(s.g)
	}
	return true
}

// Settle ticks until the simulation goes idle or maxTicks is reached,
// advancing a synthetic clock by frame per tick. It returns the tick count.
func (s *Simulation) Settle(start time.Time, frame time.Duration, maxTicks int) int {
	now := start
	n := 0
	for n < maxTicks && s.Tick(now) {
		n++
		now = now.Add(frame)
	}
	return n
}

// integrate applies velocities, decays them and enforces pins.
func (s *Simulation) integrate() {
	for _, n := range s.order {
		if n.PinnedX != nil {
			n.X, n.VX = *n.PinnedX, 0
		} else {
			n.VX *= 1 - velocityDecay
			n.X += n.VX
		}
		if n.PinnedY != nil {
			n.Y, n.VY = *n.PinnedY, 0
		} else {
			n.VY *= 1 - velocityDecay
			n.Y += n.VY
		}
	}
}

// jiggle returns a tiny random offset used when two nodes coincide.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
