package layout

import (
	"time"

	"github.com/npratt/relgraph/internal/graph"
)

// dragState tracks one pointer drag. When the grabbed node is selected every
// selected node moves with it.
type dragState struct {
	id     string
	lastX  float64
	lastY  float64
	group  []*graph.Node
	pinned map[string]bool // Nodes that were already pinned before the drag
}

// Dragging reports whether a drag is in progress.
func (s *Simulation) Dragging() bool {
	return s.drag != nil
}

// DragStart pins the node under the pointer (and its selection group) at
// its current position.
func (s *Simulation) DragStart(id string, now time.Time) {
	n := s.g.Node(id)
	if n == nil {
		return
	}
	if s.drag != nil {
		s.release(s.drag)
	}

	d := &dragState{id: id, lastX: n.X, lastY: n.Y, pinned: make(map[string]bool)}
	if n.Selected {
		for _, m := range s.order {
			if m.Selected {
				d.group = append(d.group, m)
			}
		}
	} else {
		d.group = []*graph.Node{n}
	}

	for _, m := range d.group {
		if m.IsPinned() {
			d.pinned[m.ID] = true
		}
		m.Pin(m.X, m.Y)
	}

	s.drag = d
	s.Reheat(now)
}

// DragMove moves the dragged node to (x, y). Group members move by the same
// delta.
func (s *Simulation) DragMove(id string, x, y float64, now time.Time) {
	d := s.drag
	if d == nil || d.id != id {
		return
	}

	dx, dy := x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	for _, m := range d.group {
		x, y := m.X, m.Y
		if m.PinnedX != nil && m.PinnedY != nil {
			x, y = *m.PinnedX, *m.PinnedY
		}
		m.Pin(x+dx, y+dy)
	}
	s.Reheat(now)
}

// DragEnd releases the drag. Nodes return to free movement unless pin-all is
// on or they were pinned before the drag began.
func (s *Simulation) DragEnd(id string, now time.Time) {
	d := s.drag
	if d == nil || d.id != id {
		return
	}

	s.release(d)
	s.Reheat(now)
}

// release unpins the members of d that the drag pinned and clears the drag.
func (s *Simulation) release(d *dragState) {
	if !s.pinAll {
		for _, m := range d.group {
			if !d.pinned[m.ID] {
				m.Unpin()
			}
		}
	}
	s.drag = nil
}

// rebindDrag points an active drag at the nodes of a freshly built graph.
// Members missing from g are dropped. If the grabbed node itself is gone the
// drag ends and the surviving members are released.
func (s *Simulation) rebindDrag(g *graph.Graph) {
	d := s.drag
	if d == nil {
		return
	}
	group := d.group[:0]
	for _, m := range d.group {
		if n := g.Node(m.ID); n != nil {
			group = append(group, n)
		}
	}
	d.group = group
	if g.Node(d.id) == nil {
		s.release(d)
	}
}

// PinAll pins every node at its current position, or releases every pin.
func (s *Simulation) PinAll(on bool, now time.Time) {
	s.pinAll = on
	if s.g != nil {
		for _, n := range s.order {
			switch {
			case on:
				n.Pin(n.X, n.Y)
			case s.inDrag(n.ID):
				// stays under the pointer until DragEnd
			default:
				n.Unpin()
			}
		}
	}
	if !on {
		s.Reheat(now)
	}
}

func (s *Simulation) inDrag(id string) bool {
	if s.drag == nil {
		return false
	}
	for _, m := range s.drag.group {
		if m.ID == id {
			return true
		}
	}
	return false
}

// PinnedAll reports whether pin-all is on.
func (s *Simulation) PinnedAll() bool {
	return s.pinAll
}
