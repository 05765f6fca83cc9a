package layout

import (
	"math"

	"github.com/npratt/relgraph/internal/graph"
)

// applyCenter pulls toward the canvas center. In CenterPrimary mode only the
// Primary node moves, directly by position; in CenterAll mode every node's
// velocity is nudged toward the center on both axes.
func (s *Simulation) applyCenter() {
	cx, cy := s.canvas.Center()
	k := s.params.CenterForce * s.alpha

	if s.params.CenterMode == CenterAll {
		for _, n := range s.order {
			n.VX += (cx - n.X) * k
			n.VY += (cy - n.Y) * k
		}
		return
	}

	p := s.g.Primary()
	if p == nil || p.IsPinned() {
		return
	}
	p.X += (cx - p.X) * k
	p.Y += (cy - p.Y) * k
}

// applyRepulsion applies pairwise inverse-square repulsion.
func (s *Simulation) applyRepulsion() {
	strength := -s.params.RepelForce
	if strength == 0 {
		return
	}

	for i, a := range s.order {
		for _, b := range s.order[i+1:] {
			dx, dy := b.X-a.X, b.Y-a.Y
			if dx == 0 {
				dx = s.jiggle()
			}
			if dy == 0 {
				dy = s.jiggle()
			}
			l := dx*dx + dy*dy
			if l < 1 {
				l = math.Sqrt(l)
			}
			w := strength * s.alpha / l
			a.VX += dx * w
			a.VY += dy * w
			b.VX -= dx * w
			b.VY -= dy * w
		}
	}
}

// applyLinks pulls each edge toward its target length. The correction is
// split by endpoint degree so the less connected end moves more.
func (s *Simulation) applyLinks() {
	g := s.g
	for _, e := range g.Edges {
		src, tgt := g.Nodes[e.SourceID], g.Nodes[e.TargetID]
		if src == nil || tgt == nil {
			continue
		}

		dx := tgt.X + tgt.VX - src.X - src.VX
		dy := tgt.Y + tgt.VY - src.Y - src.VY
		if dx == 0 {
			dx = s.jiggle()
		}
		if dy == 0 {
			dy = s.jiggle()
		}
		l := math.Hypot(dx, dy)
		target := graph.TargetEdgeLength(e.Weight, g.MinScore, g.MaxScore, s.params.LinkDistance)
		k := (l - target) / l * s.alpha * s.params.LinkForce
		dx, dy = dx*k, dy*k

		bias := s.bias(e)
		tgt.VX -= dx * bias
		tgt.VY -= dy * bias
		src.VX += dx * (1 - bias)
		src.VY += dy * (1 - bias)
	}
}

// bias returns the share of an edge correction applied to its target.
func (s *Simulation) bias(e graph.Edge) float64 {
	ds, dt := s.degree[e.SourceID], s.degree[e.TargetID]
	if ds+dt == 0 {
		return 0.5
	}
	return float64(ds) / float64(ds+dt)
}

// applyCollision separates overlapping nodes. Radii are equal, so each
// node of a colliding pair takes half the correction.
func (s *Simulation) applyCollision() {
	const strength = 0.7
	r := 2 * s.params.collideRadius()

	for i, a := range s.order {
		ax, ay := a.X+a.VX, a.Y+a.VY
		for _, b := range s.order[i+1:] {
			dx := ax - b.X - b.VX
			dy := ay - b.Y - b.VY
			l := dx*dx + dy*dy
			if l >= r*r {
				continue
			}
			if dx == 0 {
				dx = s.jiggle()
				l += dx * dx
			}
			if dy == 0 {
				dy = s.jiggle()
				l += dy * dy
			}
			l = math.Sqrt(l)
			k := (r - l) / l * strength
			dx, dy = dx*k, dy*k
			a.VX += dx * 0.5
			a.VY += dy * 0.5
			b.VX -= dx * 0.5
			b.VY -= dy * 0.5
		}
	}
}
