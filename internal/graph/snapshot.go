package graph

// Snapshot is a serializable view of a graph, used for headless output.
type Snapshot struct {
	Focus    string         `json:"focus" yaml:"focus"`
	MinScore float64        `json:"minScore" yaml:"minScore"`
	MaxScore float64        `json:"maxScore" yaml:"maxScore"`
	Nodes    []NodeSnapshot `json:"nodes" yaml:"nodes"`
	Edges    []EdgeSnapshot `json:"edges" yaml:"edges"`
}

// NodeSnapshot is the serializable state of one node.
type NodeSnapshot struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label" yaml:"label"`
	Category string  `json:"category" yaml:"category"`
	Kind     string  `json:"kind" yaml:"kind"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Pinned   bool    `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	Selected bool    `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// EdgeSnapshot is the serializable state of one edge.
type EdgeSnapshot struct {
	Source       string  `json:"source" yaml:"source"`
	Target       string  `json:"target" yaml:"target"`
	Weight       float64 `json:"weight" yaml:"weight"`
	TargetLength float64 `json:"targetLength" yaml:"targetLength"`
}

// Snapshot captures g with nodes in id order. base is the spring base
// distance used to report each edge's target length.
func (g *Graph) Snapshot(base float64) Snapshot {
	s := Snapshot{
		Focus:    g.PrimaryID,
		MinScore: g.MinScore,
		MaxScore: g.MaxScore,
		Nodes:    make([]NodeSnapshot, 0, len(g.Nodes)),
		Edges:    make([]EdgeSnapshot, 0, len(g.Edges)),
	}
	for _, id := range g.IDs() {
		n := g.Nodes[id]
		s.Nodes = append(s.Nodes, NodeSnapshot{
			ID:       n.ID,
			Label:    n.DisplayName,
			Category: n.Category.String(),
			Kind:     string(n.Kind),
			X:        n.X,
			Y:        n.Y,
			Pinned:   n.IsPinned(),
			Selected: n.Selected,
		})
	}
	for _, e := range g.Edges {
		s.Edges = append(s.Edges, EdgeSnapshot{
			Source:       e.SourceID,
			Target:       e.TargetID,
			Weight:       e.Weight,
			TargetLength: TargetEdgeLength(e.Weight, g.MinScore, g.MaxScore, base),
		})
	}
	return s
}
