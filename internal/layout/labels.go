package layout

import (
	"math"
	"unicode/utf8"
)

const (
	labelGap     = 2    // Space between node edge and label top
	labelPush    = 0.5  // Fraction of an overlap resolved per tick
	labelMargin  = 1    // Extra separation added per push
	labelRelax   = 0.85 // Offset retained per tick when nothing overlaps
	labelEllipse = 3    // Width of "..." in characters
)

type labelOffset struct {
	DX, DY float64
}

type labelBox struct {
	off                      *labelOffset
	left, right, top, bottom float64
}

// LabelOffset returns the decluttering offset of a node's label relative to
// its resting anchor below the node.
func (s *Simulation) LabelOffset(id string) (float64, float64) {
	if l, ok := s.labels[id]; ok {
		return l.DX, l.DY
	}
	return 0, 0
}

// labelWidth estimates the rendered width of a node's truncated label.
func (s *Simulation) labelWidth(name string) float64 {
	chars := utf8.RuneCountInString(name)
	if limit := s.params.MaxLabelCharacters; limit > 0 && chars > limit {
		chars = limit + labelEllipse
	}
	return float64(chars) * s.params.LabelCharWidth
}

// declutterLabels nudges overlapping label boxes apart along the axis of
// least overlap. Labels that overlap nothing relax back toward their anchor.
func (s *Simulation) declutterLabels() {
	if s.params.LabelCharWidth <= 0 || s.params.LabelHeight <= 0 {
		return
	}

	boxes := make([]labelBox, 0, len(s.order))
	for _, n := range s.order {
		off := s.labels[n.ID]
		if off == nil {
			off = &labelOffset{}
			s.labels[n.ID] = off
		}
		w := s.labelWidth(n.DisplayName)
		cx := n.X + off.DX
		top := n.Y + s.params.NodeSize + labelGap + off.DY
		boxes = append(boxes, labelBox{
			off:    off,
			left:   cx - w/2,
			right:  cx + w/2,
			top:    top,
			bottom: top + s.params.LabelHeight,
		})
	}

	moved := make([]bool, len(boxes))
	for i := range boxes {
		a := &boxes[i]
		for j := i + 1; j < len(boxes); j++ {
			b := &boxes[j]
			ox := math.Min(a.right, b.right) - math.Max(a.left, b.left)
			oy := math.Min(a.bottom, b.bottom) - math.Max(a.top, b.top)
			if ox <= 0 || oy <= 0 {
				continue
			}
			moved[i], moved[j] = true, true

			if ox < oy {
				shift := (ox*labelPush + labelMargin) / 2
				if a.left+a.right < b.left+b.right {
					shift = -shift
				}
				a.off.DX += shift
				b.off.DX -= shift
			} else {
				shift := (oy*labelPush + labelMargin) / 2
				if a.top < b.top {
					shift = -shift
				}
				a.off.DY += shift
				b.off.DY -= shift
			}
		}
	}

	for i, b := range boxes {
		if !moved[i] {
			b.off.DX *= labelRelax
			b.off.DY *= labelRelax
		}
	}
}
