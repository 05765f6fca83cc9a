package render

import (
	"sort"

	"github.com/npratt/relgraph/internal/config"
	"github.com/npratt/relgraph/internal/graph"
	"github.com/npratt/relgraph/internal/highlight"
)

// LabelColor is the fill of node and weight labels.
const LabelColor = "#a3aecb"

// labelGap is the space between a node's edge and its label anchor.
const labelGap = 2

// LabelOffsets supplies decluttering offsets for node labels.
type LabelOffsets interface {
	LabelOffset(id string) (float64, float64)
}

// Diff is the outcome of one reconciliation, by node id and edge key.
type Diff struct {
	Entering   []string
	Persisting []string
	Exiting    []string

	EdgesEntering   []string
	EdgesPersisting []string
	EdgesExiting    []string
}

// Reconciler keeps a Surface in step with successive graphs. Elements are
// matched by identity: new ones are created, surviving ones are only
// restyled, and vanished ones are removed.
type Reconciler struct {
	surface Surface
	display config.DisplayConfig
	offsets LabelOffsets

	g         *graph.Graph
	styles    highlight.Styles
	transform Transform

	nodes map[string]bool
	edges map[string]bool
}

// NewReconciler creates a Reconciler drawing onto surface.
func NewReconciler(surface Surface, display config.DisplayConfig) *Reconciler {
	return &Reconciler{
		surface:   surface,
		display:   display,
		transform: Identity,
		nodes:     make(map[string]bool),
		edges:     make(map[string]bool),
	}
}

// SetLabelOffsets registers the source of label decluttering offsets.
func (r *Reconciler) SetLabelOffsets(o LabelOffsets) {
	r.offsets = o
}

// Reconcile diffs g against the elements currently on the surface.
func (r *Reconciler) Reconcile(g *graph.Graph, styles highlight.Styles) Diff {
	var d Diff
	r.g = g
	r.styles = styles

	next := make(map[string]bool, len(g.Nodes))
	for _, id := range g.IDs() {
		next[id] = true
	}
	nextEdges := make(map[string]graph.Edge, len(g.Edges))
	for _, e := range g.Edges {
		nextEdges[e.Key()] = e
	}

	for _, key := range sortedKeys(r.edges) {
		if _, ok := nextEdges[key]; !ok {
			r.surface.Remove(EdgeKey(key))
			r.surface.Remove(WeightKey(key))
			delete(r.edges, key)
			d.EdgesExiting = append(d.EdgesExiting, key)
		}
	}
	for _, id := range sortedKeys(r.nodes) {
		if !next[id] {
			r.surface.Remove(NodeKey(id))
			r.surface.Remove(LabelKey(id))
			delete(r.nodes, id)
			d.Exiting = append(d.Exiting, id)
		}
	}

	for _, e := range g.Edges {
		key := e.Key()
		if r.edges[key] {
			r.restyleEdge(e)
			d.EdgesPersisting = append(d.EdgesPersisting, key)
			continue
		}
		r.createEdge(e)
		r.edges[key] = true
		d.EdgesEntering = append(d.EdgesEntering, key)
	}

	for _, id := range g.IDs() {
		n := g.Nodes[id]
		if r.nodes[id] {
			r.restyleNode(n)
			d.Persisting = append(d.Persisting, id)
			continue
		}
		r.createNode(n)
		r.nodes[id] = true
		d.Entering = append(d.Entering, id)
	}

	return d
}

// Positions moves every element to its node's current position. It is the
// simulation tick hook.
func (r *Reconciler) Positions(g *graph.Graph) {
	if g == nil || g != r.g {
		return
	}
	for id, n := range g.Nodes {
		if !r.nodes[id] {
			continue
		}
		r.surface.Move(NodeKey(id), Geometry{X: n.X, Y: n.Y})
		r.surface.Move(LabelKey(id), r.labelGeometry(n))
	}
	for _, e := range g.Edges {
		if !r.edges[e.Key()] {
			continue
		}
		geom, mid, ok := r.edgeGeometry(e)
		if !ok {
			continue
		}
		r.surface.Move(EdgeKey(e.Key()), geom)
		r.surface.Move(WeightKey(e.Key()), mid)
	}
}

// ApplyStyles restyles every element from new overlay styles.
func (r *Reconciler) ApplyStyles(s highlight.Styles) {
	r.styles = s
	r.restyleAll()
}

// SetDisplay changes visual settings and restyles everything.
func (r *Reconciler) SetDisplay(d config.DisplayConfig) {
	r.display = d
	r.restyleAll()
}

// SetTransform forwards a zoom/pan change and refreshes the zoom-dependent
// label fade.
func (r *Reconciler) SetTransform(t Transform) {
	r.transform = t
	r.surface.SetTransform(t)
	r.restyleAll()
}

// Transform returns the current zoom/pan.
func (r *Reconciler) Transform() Transform {
	return r.transform
}

// Clear removes every element.
func (r *Reconciler) Clear() {
	for key := range r.edges {
		r.surface.Remove(EdgeKey(key))
		r.surface.Remove(WeightKey(key))
	}
	for id := range r.nodes {
		r.surface.Remove(NodeKey(id))
		r.surface.Remove(LabelKey(id))
	}
	r.edges = make(map[string]bool)
	r.nodes = make(map[string]bool)
	r.g = nil
}

func (r *Reconciler) restyleAll() {
	if r.g == nil {
		return
	}
	for _, e := range r.g.Edges {
		if r.edges[e.Key()] {
			r.restyleEdge(e)
		}
	}
	for id, n := range r.g.Nodes {
		if r.nodes[id] {
			r.restyleNode(n)
		}
	}
}

func (r *Reconciler) createNode(n *graph.Node) {
	node, label := r.nodeStyles(n)
	r.surface.Create(NodeKey(n.ID), Shape{Kind: Circle, Layer: LayerNodes, Style: node, Geometry: Geometry{X: n.X, Y: n.Y}})
	r.surface.Create(LabelKey(n.ID), Shape{Kind: Text, Layer: LayerLabels, Style: label, Geometry: r.labelGeometry(n)})
}

func (r *Reconciler) restyleNode(n *graph.Node) {
	node, label := r.nodeStyles(n)
	r.surface.Restyle(NodeKey(n.ID), node)
	r.surface.Restyle(LabelKey(n.ID), label)
}

func (r *Reconciler) createEdge(e graph.Edge) {
	line, weight := r.edgeStyles(e)
	geom, mid, _ := r.edgeGeometry(e)
	r.surface.Create(EdgeKey(e.Key()), Shape{Kind: Line, Layer: LayerEdges, Style: line, Geometry: geom})
	r.surface.Create(WeightKey(e.Key()), Shape{Kind: Text, Layer: LayerWeights, Style: weight, Geometry: mid})
}

func (r *Reconciler) restyleEdge(e graph.Edge) {
	line, weight := r.edgeStyles(e)
	r.surface.Restyle(EdgeKey(e.Key()), line)
	r.surface.Restyle(WeightKey(e.Key()), weight)
}

func (r *Reconciler) nodeStyles(n *graph.Node) (Style, Style) {
	st, ok := r.styles.Nodes[n.ID]
	if !ok {
		st = highlight.NodeStyle{Opacity: 1, Fill: n.FillColor, StrokeWidth: 0.3, LabelOpacity: 1}
	}

	node := Style{
		Fill:        st.Fill,
		Stroke:      st.Stroke,
		StrokeWidth: st.StrokeWidth,
		Opacity:     st.Opacity,
		Radius:      r.display.NodeSize,
	}

	text := n.DisplayName
	if !st.FullLabel {
		text = FormatLabel(text, r.display.MaxLabelCharacters)
	}
	opacity := st.LabelOpacity * LabelOpacity(r.transform.K, r.display.TextFadeThreshold)
	if st.FullLabel {
		opacity = 1
	}
	label := Style{
		Fill:    LabelColor,
		Opacity: opacity,
		Text:    text,
	}
	return node, label
}

func (r *Reconciler) edgeStyles(e graph.Edge) (Style, Style) {
	st, ok := r.styles.Edges[e.Key()]
	if !ok {
		st = highlight.EdgeStyle{Opacity: 1, Stroke: highlight.ColorLink}
	}

	line := Style{
		Stroke:      st.Stroke,
		StrokeWidth: graph.LinkStrokeWeight(e.Weight, r.g.MinScore, r.g.MaxScore, r.display.MinLinkThickness, r.display.MaxLinkThickness),
		Opacity:     st.Opacity,
	}
	weight := Style{
		Fill:    LabelColor,
		Opacity: st.Opacity,
		Text:    FormatWeight(e.Weight),
		Hidden:  !st.ShowWeight,
	}
	return line, weight
}

func (r *Reconciler) labelGeometry(n *graph.Node) Geometry {
	var dx, dy float64
	if r.offsets != nil {
		dx, dy = r.offsets.LabelOffset(n.ID)
	}
	return Geometry{X: n.X + dx, Y: n.Y + r.display.NodeSize + labelGap + dy}
}

func (r *Reconciler) edgeGeometry(e graph.Edge) (Geometry, Geometry, bool) {
	src, tgt := r.g.Node(e.SourceID), r.g.Node(e.TargetID)
	if src == nil || tgt == nil {
		return Geometry{}, Geometry{}, false
	}
	line := Geometry{X: src.X, Y: src.Y, X2: tgt.X, Y2: tgt.Y}
	mid := Geometry{X: (src.X + tgt.X) / 2, Y: (src.Y + tgt.Y) / 2}
	return line, mid, true
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
