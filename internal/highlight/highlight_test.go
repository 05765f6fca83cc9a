package highlight

import (
	"testing"

	"github.com/npratt/relgraph/internal/connections"
	"github.com/npratt/relgraph/internal/graph"
)

type recordingSink struct {
	calls int
	last  Styles
}

func (r *recordingSink) ApplyStyles(s Styles) {
	r.calls++
	r.last = s
}

type recordingNav struct {
	opened   []string
	previews []string
}

func (r *recordingNav) Open(id string)    { r.opened = append(r.opened, id) }
func (r *recordingNav) Preview(id string) { r.previews = append(r.previews, id) }

// threeNodeGraph returns {P, A, B} with edges (P,A,0.9) and (P,B,0.2).
func threeNodeGraph() *graph.Graph {
	return &graph.Graph{
		PrimaryID: "P",
		Nodes: map[string]*graph.Node{
			"P": {ID: "P", Category: graph.Primary, FillColor: graph.ColorPrimary, X: 0, Y: 0},
			"A": {ID: "A", Category: graph.Secondary, Kind: connections.KindBlock, FillColor: graph.ColorBlock, X: 10, Y: 10},
			"B": {ID: "B", Category: graph.Secondary, Kind: connections.KindNote, FillColor: graph.ColorNote, X: 50, Y: 50},
		},
		Edges: []graph.Edge{
			{SourceID: "P", TargetID: "A", Weight: 0.9},
			{SourceID: "P", TargetID: "B", Weight: 0.2},
		},
		MinScore: 0.2,
		MaxScore: 0.9,
	}
}

func newTestController() (*Controller, *graph.Graph, *recordingSink, *recordingNav) {
	sink := &recordingSink{}
	nav := &recordingNav{}
	c := New(sink, nav)
	g := threeNodeGraph()
	c.SetGraph(g)
	return c, g, sink, nav
}

func highlighted(g *graph.Graph) map[string]bool {
	out := make(map[string]bool)
	for id, n := range g.Nodes {
		if n.Highlighted {
			out[id] = true
		}
	}
	return out
}

func TestEnterLeave_HighlightCorrectness(t *testing.T) {
	c, g, sink, _ := newTestController()

	c.Enter("A")

	got := highlighted(g)
	if len(got) != 2 || !got["A"] || !got["P"] {
		t.Errorf("highlighted = %v, want exactly {A, P}", got)
	}
	if op := sink.last.Nodes["B"].Opacity; op != FadedOpacity {
		t.Errorf("B opacity = %v, want %v", op, FadedOpacity)
	}
	if op := sink.last.Nodes["P"].Opacity; op != 1 {
		t.Errorf("primary opacity = %v, want 1", op)
	}
	if !sink.last.Nodes["A"].FullLabel {
		t.Error("hovered node should show its full label")
	}
	if st := sink.last.Edges["P->A"]; st.Opacity != 1 || !st.ShowWeight {
		t.Errorf("touching edge style = %+v, want opaque with weight label", st)
	}
	if st := sink.last.Edges["P->B"]; st.Opacity != FadedOpacity || st.ShowWeight {
		t.Errorf("other edge style = %+v, want faded without weight label", st)
	}

	c.Leave("A")

	if got := highlighted(g); len(got) != 0 {
		t.Errorf("highlighted after leave = %v, want none", got)
	}
	for id, st := range sink.last.Nodes {
		if st.Opacity != 1 || st.LabelOpacity != 1 {
			t.Errorf("node %s opacity = %v/%v after leave, want 1", id, st.Opacity, st.LabelOpacity)
		}
		if st.FullLabel {
			t.Errorf("node %s still shows full label", id)
		}
	}
	for key, st := range sink.last.Edges {
		if st.Opacity != 1 || st.ShowWeight {
			t.Errorf("edge %s style = %+v after leave", key, st)
		}
	}
}

func TestEnter_PrimaryIgnoredButPreviewed(t *testing.T) {
	c, g, _, nav := newTestController()

	c.Enter("P")

	if c.Hovered() != "" {
		t.Errorf("Hovered() = %q, want none", c.Hovered())
	}
	if got := highlighted(g); len(got) != 0 {
		t.Errorf("highlighted = %v, want none", got)
	}
	if len(nav.previews) != 1 || nav.previews[0] != "P" {
		t.Errorf("previews = %v, want [P]", nav.previews)
	}
}

func TestEnter_UnknownNode(t *testing.T) {
	c, _, sink, nav := newTestController()
	before := sink.calls

	c.Enter("ghost")

	if sink.calls != before || len(nav.previews) != 0 {
		t.Error("unknown node should be ignored")
	}
}

func TestLeave_KeepsSelectedHighlight(t *testing.T) {
	c, g, _, _ := newTestController()
	g.Nodes["B"].Selected = true
	g.Nodes["B"].Highlighted = true

	c.Enter("A")
	c.Leave("A")

	if !g.Nodes["B"].Highlighted {
		t.Error("selected node should keep its highlight")
	}
	if g.Nodes["A"].Highlighted || g.Nodes["P"].Highlighted {
		t.Error("unselected highlights should be cleared")
	}
}

func TestLeave_OtherNodeIgnored(t *testing.T) {
	c, g, _, _ := newTestController()

	c.Enter("A")
	c.Leave("B")

	if !g.Nodes["A"].Highlighted {
		t.Error("leaving a node that is not hovered should not clear highlights")
	}
}

func TestClick(t *testing.T) {
	c, g, _, nav := newTestController()

	c.Click("A", false)
	if !g.Nodes["A"].Selected {
		t.Error("A should be selected")
	}
	if len(nav.opened) != 1 || nav.opened[0] != "A" {
		t.Errorf("opened = %v, want [A]", nav.opened)
	}

	c.Click("B", true)
	if !g.Nodes["A"].Selected || !g.Nodes["B"].Selected {
		t.Error("additive click should keep A and select B")
	}

	c.Click("B", false)
	if g.Nodes["A"].Selected {
		t.Error("non-additive click should clear other selections")
	}
	if g.Nodes["B"].Selected {
		t.Error("second click on B should toggle it off")
	}

	c.Click("P", false)
	if !g.Nodes["P"].Selected {
		t.Error("primary should be selectable")
	}
	if len(nav.opened) != 3 {
		t.Errorf("opened = %v, clicking the primary should not navigate", nav.opened)
	}
}

func TestClickCanvas(t *testing.T) {
	c, g, _, _ := newTestController()
	g.Nodes["A"].Selected = true
	g.Nodes["B"].Selected = true

	c.ClickCanvas(true)
	if !g.Nodes["A"].Selected {
		t.Error("click with modifier should keep selections")
	}

	c.ClickCanvas(false)
	if len(g.Selected()) != 0 {
		t.Errorf("selected = %v, want none", g.Selected())
	}
}

func TestBoxSelection(t *testing.T) {
	tests := []struct {
		name     string
		additive bool
		want     map[string]bool
	}{
		{"replace", false, map[string]bool{"P": true, "A": true}},
		{"additive", true, map[string]bool{"P": true, "A": true, "B": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, g, _, _ := newTestController()
			g.Nodes["B"].Selected = true

			// Drawn from bottom-right to top-left.
			c.BoxStart(20, 20, tt.additive)
			c.BoxMove(-5, -5)

			r, ok := c.Box()
			if !ok || r.MinX != -5 || r.MaxX != 20 {
				t.Errorf("Box() = %+v, %v", r, ok)
			}

			c.BoxEnd()
			if _, ok := c.Box(); ok {
				t.Error("box should be gone after BoxEnd")
			}

			for id, n := range g.Nodes {
				if n.Selected != tt.want[id] {
					t.Errorf("%s selected = %v, want %v", id, n.Selected, tt.want[id])
				}
			}
		})
	}
}

func TestBoxMove_ShrinkRestoresPrevious(t *testing.T) {
	c, g, _, _ := newTestController()

	c.BoxStart(-1, -1, true)
	c.BoxMove(60, 60)
	if len(g.Selected()) != 3 {
		t.Fatalf("selected = %v, want all", g.Selected())
	}

	c.BoxMove(5, 5)
	if got := g.Selected(); len(got) != 1 || got[0] != "P" {
		t.Errorf("selected = %v, want [P] after shrinking the box", got)
	}
}

func TestStyles_Selection(t *testing.T) {
	c, g, _, _ := newTestController()
	g.Nodes["A"].Selected = true

	st := c.Styles().Nodes

	if st["A"].Fill != ColorSelected || st["A"].Stroke != StrokeSelected || st["A"].StrokeWidth != 2 {
		t.Errorf("selected style = %+v", st["A"])
	}
	if st["B"].Fill != graph.ColorNote || st["B"].Stroke != "" || st["B"].StrokeWidth != 0.3 {
		t.Errorf("resting style = %+v", st["B"])
	}
}

func TestStyles_SelectedNodeNotFaded(t *testing.T) {
	c, g, sink, _ := newTestController()
	g.Nodes["B"].Selected = true
	g.Edges = g.Edges[:1] // A and B no longer related

	c.Enter("A")

	if op := sink.last.Nodes["B"].Opacity; op != 1 {
		t.Errorf("selected node opacity = %v while hovering, want 1", op)
	}
}

func TestSetGraph_DropsVanishedHover(t *testing.T) {
	c, _, _, _ := newTestController()
	c.Enter("A")

	next := threeNodeGraph()
	delete(next.Nodes, "A")
	next.Edges = next.Edges[1:]
	c.SetGraph(next)

	if c.Hovered() != "" {
		t.Errorf("Hovered() = %q, want none", c.Hovered())
	}
}
