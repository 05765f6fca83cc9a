package graph

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/npratt/relgraph/internal/connections"
)

// ErrSystemicValidation signals that too many records of one batch were
// invalid for the batch to be trusted. The BuildResult is still returned.
var ErrSystemicValidation = errors.New("systemic validation failure")

// Canvas is the size of the drawing surface in world units.
type Canvas struct {
	Width  float64
	Height float64
}

// Center returns the middle of the canvas.
func (c Canvas) Center() (float64, float64) {
	return c.Width / 2, c.Height / 2
}

// Reason classifies a skipped record or edge.
type Reason int

const (
	ReasonBlankTarget Reason = iota
	ReasonSelfReference
	ReasonUnknownKind
	ReasonNonFiniteScore
	ReasonDuplicateTarget
	ReasonDanglingEdge
)

// String returns a string representation of the Reason.
func (r Reason) String() string {
	switch r {
	case ReasonBlankTarget:
		return "blank target id"
	case ReasonSelfReference:
		return "target is the focus document"
	case ReasonUnknownKind:
		return "unknown kind"
	case ReasonNonFiniteScore:
		return "score is not a finite number"
	case ReasonDuplicateTarget:
		return "duplicate target id"
	case ReasonDanglingEdge:
		return "edge endpoint missing from node set"
	default:
		return "unknown"
	}
}

// invalid reports whether the reason counts toward systemic failure.
// Duplicates are ignored rather than treated as corrupt input.
func (r Reason) invalid() bool {
	return r != ReasonDuplicateTarget
}

// Diagnostic records one skipped record or dropped edge.
type Diagnostic struct {
	Index    int // Record index in the input, -1 for edges dropped by Validate
	TargetID string
	Reason   Reason
}

// String returns a log-friendly description.
func (d Diagnostic) String() string {
	if d.Index < 0 {
		return fmt.Sprintf("edge to %q: %s", d.TargetID, d.Reason)
	}
	return fmt.Sprintf("record %d (%q): %s", d.Index, d.TargetID, d.Reason)
}

// Request is the input of one build.
type Request struct {
	FocusKey    string
	Connections []connections.Connection
	Filter      Filter
	Threshold   float64
	Previous    *Graph // May be nil
}

// BuildResult is the output of one build.
type BuildResult struct {
	Graph       *Graph
	Diagnostics []Diagnostic
	Empty       bool // No edge survived the filters
}

// Builder turns raw connection records into a validated Graph.
type Builder struct {
	canvas Canvas
	rng    *rand.Rand
}

// NewBuilder creates a Builder. rng seeds positions of never-seen nodes;
// nil uses a randomly seeded source.
func NewBuilder(canvas Canvas, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{canvas: canvas, rng: rng}
}

// SetCanvas updates the drawing surface size used for new positions.
func (b *Builder) SetCanvas(c Canvas) {
	b.canvas = c
}

// Canvas returns the current drawing surface size.
func (b *Builder) Canvas() Canvas {
	return b.canvas
}

// Build constructs a graph for req. A systemic failure returns the result
// together with an error wrapping ErrSystemicValidation.
func (b *Builder) Build(req Request) (BuildResult, error) {
	g := &Graph{
		Nodes:     make(map[string]*Node),
		PrimaryID: req.FocusKey,
	}

	primary := &Node{
		ID:          req.FocusKey,
		DisplayName: DisplayName(req.FocusKey),
		Category:    Primary,
		Kind:        connections.KindNote,
		FillColor:   BaseFill(Primary, connections.KindNote),
	}
	if prev := req.Previous.Node(req.FocusKey); prev != nil {
		primary.inherit(prev)
	} else {
		primary.X, primary.Y = b.canvas.Center()
	}
	g.Nodes[primary.ID] = primary

	var diags []Diagnostic
	invalid := 0
	record := func(i int, target string, r Reason) {
		diags = append(diags, Diagnostic{Index: i, TargetID: target, Reason: r})
		if r.invalid() {
			invalid++
		}
	}

	seen := make(map[string]bool)
	first := true
	for i, c := range req.Connections {
		target := strings.TrimSpace(c.TargetID)
		switch {
		case target == "":
			record(i, c.TargetID, ReasonBlankTarget)
			continue
		case target == req.FocusKey:
			record(i, target, ReasonSelfReference)
			continue
		case !c.Kind.Valid():
			record(i, target, ReasonUnknownKind)
			continue
		case math.IsNaN(c.Score) || math.IsInf(c.Score, 0):
			record(i, target, ReasonNonFiniteScore)
			continue
		}

		score := clamp01(c.Score)
		if score < req.Threshold || !req.Filter.Allows(c.Kind) {
			continue
		}

		// Only records that survive the threshold and filter claim an id.
		if seen[target] {
			record(i, target, ReasonDuplicateTarget)
			continue
		}
		seen[target] = true

		n := &Node{
			ID:          target,
			DisplayName: DisplayName(target),
			Category:    Secondary,
			Kind:        c.Kind,
			FillColor:   BaseFill(Secondary, c.Kind),
		}
		if prev := req.Previous.Node(target); prev != nil {
			n.inherit(prev)
		} else {
			n.X, n.Y = b.randomPosition()
		}
		g.Nodes[target] = n
		g.Edges = append(g.Edges, Edge{SourceID: primary.ID, TargetID: target, Weight: score})

		if first {
			g.MinScore, g.MaxScore = score, score
			first = false
		} else {
			g.MinScore = math.Min(g.MinScore, score)
			g.MaxScore = math.Max(g.MaxScore, score)
		}
	}

	for _, e := range Validate(g) {
		record(-1, e.TargetID, ReasonDanglingEdge)
	}

	result := BuildResult{
		Graph:       g,
		Diagnostics: diags,
		Empty:       len(g.Edges) == 0,
	}

	total := len(req.Connections)
	if invalid >= 3 && invalid*2 > total {
		return result, fmt.Errorf("%w: %d of %d records invalid", ErrSystemicValidation, invalid, total)
	}
	return result, nil
}

// randomPosition places a never-seen node somewhere on the canvas.
func (b *Builder) randomPosition() (float64, float64) {
	cx, cy := b.canvas.Center()
	return cx + (b.rng.Float64()-0.5)*b.canvas.Width, cy + (b.rng.Float64()-0.5)*b.canvas.Height
}

// Validate drops edges whose endpoints are not in the node set and returns
// the dropped edges.
func Validate(g *Graph) []Edge {
	var dropped []Edge
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if g.Nodes[e.SourceID] == nil || g.Nodes[e.TargetID] == nil {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return dropped
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
