// Package highlight tracks pointer-driven selection and hover state on graph
// nodes and derives the styles that follow from it.
package highlight

import (
	"math"

	"github.com/npratt/relgraph/internal/graph"
)

// Overlay colors.
const (
	ColorSelected    = "#f3ee5d"
	ColorHighlighted = "#d46ebe"
	ColorLink        = "#4c7787"
	StrokeSelected   = "#ffff00"
	StrokeHovered    = "#ffffff"
)

// FadedOpacity is applied to nodes, labels and edges pushed into the
// background while another node is hovered.
const FadedOpacity = 0.1

// NodeStyle is the derived appearance of one node and its label.
type NodeStyle struct {
	Opacity      float64
	Fill         string
	Stroke       string // Empty means no outline
	StrokeWidth  float64
	LabelOpacity float64
	FullLabel    bool // Show the untruncated label
}

// EdgeStyle is the derived appearance of one edge and its weight label.
type EdgeStyle struct {
	Opacity    float64
	Stroke     string
	ShowWeight bool
}

// Styles maps node ids and edge keys to their styles.
type Styles struct {
	Nodes map[string]NodeStyle
	Edges map[string]EdgeStyle
}

// StyleSink receives style updates whenever overlay state changes.
type StyleSink interface {
	ApplyStyles(Styles)
}

// Navigator is the host side of pointer navigation.
type Navigator interface {
	Open(id string)
	Preview(id string)
}

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

type boxState struct {
	startX, startY float64
	rect           Rect
	additive       bool
	before         map[string]bool // Selection when the box started
}

// Controller owns the selected and highlighted flags of the current graph.
type Controller struct {
	g       *graph.Graph
	hovered string
	box     *boxState

	sink StyleSink
	nav  Navigator
}

// New creates a Controller. Either collaborator may be nil.
func New(sink StyleSink, nav Navigator) *Controller {
	return &Controller{sink: sink, nav: nav}
}

// SetGraph attaches a newly built graph. A hover on a node that no longer
// exists is dropped; an in-progress box selection is abandoned. Styles are
// not pushed; callers read Styles once their surface holds the new graph.
func (c *Controller) SetGraph(g *graph.Graph) {
	c.g = g
	c.box = nil
	if c.hovered != "" && g.Node(c.hovered) == nil {
		c.hovered = ""
		c.clearHighlights()
	}
}

// Hovered returns the id under the pointer, or "".
func (c *Controller) Hovered() string {
	return c.hovered
}

// Enter handles the pointer entering node id.
func (c *Controller) Enter(id string) {
	n := c.g.Node(id)
	if n == nil {
		return
	}
	if c.nav != nil {
		c.nav.Preview(id)
	}
	if n.IsPrimary() {
		return
	}

	c.hovered = id
	neighbors := c.g.Neighbors(id)
	for nid, m := range c.g.Nodes {
		m.Highlighted = nid == id || neighbors[nid] || (m.Highlighted && m.Selected)
	}
	c.push()
}

// Leave handles the pointer leaving node id.
func (c *Controller) Leave(id string) {
	if c.hovered != id {
		return
	}
	c.hovered = ""
	c.clearHighlights()
	c.push()
}

// clearHighlights drops every highlight flag not protected by a selection.
func (c *Controller) clearHighlights() {
	if c.g == nil {
		return
	}
	for _, n := range c.g.Nodes {
		if !n.Selected {
			n.Highlighted = false
		}
	}
}

// Click toggles selection of id. Without additive every other selection is
// cleared first. Clicking a Secondary node also asks the host to open it.
func (c *Controller) Click(id string, additive bool) {
	n := c.g.Node(id)
	if n == nil {
		return
	}
	if !additive {
		for nid, m := range c.g.Nodes {
			if nid != id {
				m.Selected = false
			}
		}
	}
	n.Selected = !n.Selected
	c.push()

	if !n.IsPrimary() && c.nav != nil {
		c.nav.Open(id)
	}
}

// ClickCanvas handles a click on empty space. Without a modifier every
// selection is cleared.
func (c *Controller) ClickCanvas(modifier bool) {
	if modifier || c.g == nil {
		return
	}
	for _, n := range c.g.Nodes {
		n.Selected = false
	}
	c.push()
}

// BoxStart begins a rubber-band selection at world point (x, y).
func (c *Controller) BoxStart(x, y float64, additive bool) {
	if c.g == nil {
		return
	}
	before := make(map[string]bool)
	for id, n := range c.g.Nodes {
		before[id] = n.Selected
	}
	c.box = &boxState{
		startX:   x,
		startY:   y,
		rect:     Rect{MinX: x, MinY: y, MaxX: x, MaxY: y},
		additive: additive,
		before:   before,
	}
}

// BoxMove stretches the rubber band to (x, y) and reselects: nodes inside
// are selected; nodes outside keep their earlier selection only when the box
// is additive.
func (c *Controller) BoxMove(x, y float64) {
	b := c.box
	if b == nil {
		return
	}
	b.rect = Rect{
		MinX: math.Min(b.startX, x),
		MinY: math.Min(b.startY, y),
		MaxX: math.Max(b.startX, x),
		MaxY: math.Max(b.startY, y),
	}
	for id, n := range c.g.Nodes {
		switch {
		case b.rect.Contains(n.X, n.Y):
			n.Selected = true
		case b.additive:
			n.Selected = b.before[id]
		default:
			n.Selected = false
		}
	}
	c.push()
}

// BoxEnd finishes the rubber-band selection.
func (c *Controller) BoxEnd() {
	c.box = nil
}

// Box returns the rubber band rectangle while a box selection is active.
func (c *Controller) Box() (Rect, bool) {
	if c.box == nil {
		return Rect{}, false
	}
	return c.box.rect, true
}

// Refresh pushes the current styles to the sink.
func (c *Controller) Refresh() {
	c.push()
}

func (c *Controller) push() {
	if c.sink != nil && c.g != nil {
		c.sink.ApplyStyles(c.Styles())
	}
}

// Styles derives the style of every node and edge from the overlay state.
func (c *Controller) Styles() Styles {
	s := Styles{
		Nodes: make(map[string]NodeStyle),
		Edges: make(map[string]EdgeStyle),
	}
	if c.g == nil {
		return s
	}

	hovering := c.hovered != ""
	for id, n := range c.g.Nodes {
		st := NodeStyle{
			Opacity:      1,
			Fill:         n.FillColor,
			StrokeWidth:  0.3,
			LabelOpacity: 1,
		}
		switch {
		case n.IsPrimary():
			st.Fill = graph.ColorPrimary
		case n.Selected:
			st.Fill = ColorSelected
		case n.Highlighted:
			st.Fill = ColorHighlighted
		}
		if n.Selected {
			st.Stroke = StrokeSelected
			st.StrokeWidth = 2
		}
		if hovering && !n.IsPrimary() && !n.Selected && !n.Highlighted {
			st.Opacity = FadedOpacity
		}
		if hovering && !n.IsPrimary() && !n.Highlighted {
			st.LabelOpacity = FadedOpacity
		}
		if id == c.hovered {
			st.Stroke = StrokeHovered
			st.FullLabel = true
		}
		s.Nodes[id] = st
	}

	for _, e := range c.g.Edges {
		st := EdgeStyle{Opacity: 1, Stroke: ColorLink}
		if hovering {
			if e.Touches(c.hovered) {
				st.ShowWeight = true
			} else {
				st.Opacity = FadedOpacity
			}
		}
		s.Edges[e.Key()] = st
	}
	return s
}
