// Package graph builds the validated node/edge graph shown around a focus
// document and rescales relevance scores for layout and styling.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npratt/relgraph/internal/connections"
)

// Category distinguishes the focus node from every other node.
type Category int

const (
	// Primary is the focused document. Exactly one per graph.
	Primary Category = iota
	// Secondary is any related document or fragment.
	Secondary
)

// String returns a string representation of the Category.
func (c Category) String() string {
	switch c {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Base fill colors.
const (
	ColorPrimary = "#7c8594"
	ColorNote    = "#7c8594"
	ColorBlock   = "#926ec9"
)

// Filter selects which connection kinds become nodes.
type Filter string

const (
	FilterBlock Filter = "block"
	FilterNote  Filter = "note"
	FilterBoth  Filter = "both"
)

// ParseFilter converts a config value to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterBlock, FilterNote, FilterBoth:
		return f, nil
	default:
		return "", fmt.Errorf("unknown connection kind filter %q", s)
	}
}

// Allows reports whether a connection of kind k passes the filter.
func (f Filter) Allows(k connections.Kind) bool {
	switch f {
	case FilterBoth:
		return k.Valid()
	case FilterBlock:
		return k == connections.KindBlock
	case FilterNote:
		return k == connections.KindNote
	default:
		return false
	}
}

// Node is a document or fragment in the graph.
type Node struct {
	ID          string
	DisplayName string
	Category    Category
	Kind        connections.Kind

	X, Y   float64
	VX, VY float64

	// Set while dragging or when every node is pinned. A pinned coordinate
	// overrides the simulation for that node.
	PinnedX *float64
	PinnedY *float64

	Selected    bool
	Highlighted bool
	FillColor   string
}

// IsPrimary reports whether n is the focus node.
func (n *Node) IsPrimary() bool {
	return n.Category == Primary
}

// IsPinned reports whether either coordinate is pinned.
func (n *Node) IsPinned() bool {
	return n.PinnedX != nil || n.PinnedY != nil
}

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.PinnedX = &x
	n.PinnedY = &y
	n.X, n.Y = x, y
	n.VX, n.VY = 0, 0
}

// Unpin releases both coordinates.
func (n *Node) Unpin() {
	n.PinnedX = nil
	n.PinnedY = nil
}

// inherit copies simulation and overlay state from a node of a previous graph.
func (n *Node) inherit(prev *Node) {
	n.X, n.Y = prev.X, prev.Y
	n.VX, n.VY = prev.VX, prev.VY
	if prev.PinnedX != nil {
		x := *prev.PinnedX
		n.PinnedX = &x
	}
	if prev.PinnedY != nil {
		y := *prev.PinnedY
		n.PinnedY = &y
	}
	n.Selected = prev.Selected
	n.Highlighted = prev.Highlighted
}

// Edge is a scored connection from the Primary node to a Secondary node.
// Rendering treats it as undirected.
type Edge struct {
	SourceID string
	TargetID string
	Weight   float64
}

// Key returns the identity key used to match edges across rebuilds.
func (e Edge) Key() string {
	return e.SourceID + "->" + e.TargetID
}

// Touches reports whether id is an endpoint of e.
func (e Edge) Touches(id string) bool {
	return e.SourceID == id || e.TargetID == id
}

// Other returns the endpoint opposite id.
func (e Edge) Other(id string) string {
	if e.SourceID == id {
		return e.TargetID
	}
	return e.SourceID
}

// Graph is the node/edge set for one focus document. A rebuild produces a new
// Graph; callers swap it in whole.
type Graph struct {
	Nodes     map[string]*Node
	Edges     []Edge
	PrimaryID string
	MinScore  float64
	MaxScore  float64
}

// Primary returns the focus node.
func (g *Graph) Primary() *Node {
	return g.Nodes[g.PrimaryID]
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	if g == nil {
		return nil
	}
	return g.Nodes[id]
}

// IDs returns every node id in sorted order.
func (g *Graph) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SecondaryIDs returns the sorted ids of every Secondary node.
func (g *Graph) SecondaryIDs() []string {
	var ids []string
	for _, id := range g.IDs() {
		if id != g.PrimaryID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Neighbors returns the set of nodes sharing an edge with id.
func (g *Graph) Neighbors(id string) map[string]bool {
	out := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Touches(id) {
			out[e.Other(id)] = true
		}
	}
	return out
}

// Degree returns the number of edges touching id.
func (g *Graph) Degree(id string) int {
	n := 0
	for _, e := range g.Edges {
		if e.Touches(id) {
			n++
		}
	}
	return n
}

// Selected returns the sorted ids of selected nodes.
func (g *Graph) Selected() []string {
	var ids []string
	for _, id := range g.IDs() {
		if g.Nodes[id].Selected {
			ids = append(ids, id)
		}
	}
	return ids
}

// DisplayName derives a node label from its id: the part after the last '#'
// for fragments, otherwise the file name, with wiki-link brackets removed.
func DisplayName(id string) string {
	name := id
	if i := strings.LastIndex(id, "#"); i >= 0 {
		name = id[i+1:]
	} else if i := strings.LastIndex(id, "/"); i >= 0 {
		name = id[i+1:]
	}
	return strings.NewReplacer("[", "", "]", "").Replace(name)
}

// BaseFill returns the resting fill color for a node.
func BaseFill(c Category, k connections.Kind) string {
	if c == Primary {
		return ColorPrimary
	}
	if k == connections.KindBlock {
		return ColorBlock
	}
	return ColorNote
}
