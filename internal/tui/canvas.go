package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/relgraph/internal/graph"
	"github.com/npratt/relgraph/internal/highlight"
	"github.com/npratt/relgraph/internal/render"
)

// One terminal cell covers cellWidth x cellHeight world units at zoom 1.
const (
	cellWidth  = 6
	cellHeight = 12
)

// fadedBelow is the opacity under which elements are drawn faint.
const fadedBelow = 0.5

// Canvas is a render.Surface that keeps shapes in memory and rasterizes
// them into terminal cells on demand.
type Canvas struct {
	shapes    map[render.Key]render.Shape
	transform render.Transform
	box       *highlight.Rect
}

// NewCanvas creates an empty Canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		shapes:    make(map[render.Key]render.Shape),
		transform: render.Identity,
	}
}

// Create implements render.Surface.
func (c *Canvas) Create(key render.Key, shape render.Shape) {
	c.shapes[key] = shape
}

// Restyle implements render.Surface.
func (c *Canvas) Restyle(key render.Key, style render.Style) {
	if sh, ok := c.shapes[key]; ok {
		sh.Style = style
		c.shapes[key] = sh
	}
}

// Move implements render.Surface.
func (c *Canvas) Move(key render.Key, geom render.Geometry) {
	if sh, ok := c.shapes[key]; ok {
		sh.Geometry = geom
		c.shapes[key] = sh
	}
}

// Remove implements render.Surface.
func (c *Canvas) Remove(key render.Key) {
	delete(c.shapes, key)
}

// SetTransform implements render.Surface.
func (c *Canvas) SetTransform(t render.Transform) {
	c.transform = t
}

// SetBox sets or clears the rubber band overlay.
func (c *Canvas) SetBox(r *highlight.Rect) {
	c.box = r
}

// Len returns the number of live shapes.
func (c *Canvas) Len() int {
	return len(c.shapes)
}

// Shape returns the shape stored under key.
func (c *Canvas) Shape(key render.Key) (render.Shape, bool) {
	sh, ok := c.shapes[key]
	return sh, ok
}

// World returns the world-space size of a cols x rows cell area.
func World(cols, rows int) graph.Canvas {
	return graph.Canvas{Width: float64(cols * cellWidth), Height: float64(rows * cellHeight)}
}

// CellToWorld returns the world point under the center of a cell.
func (c *Canvas) CellToWorld(col, row int) (float64, float64) {
	sx, sy := cellToScreen(col, row)
	return c.transform.Invert(sx, sy)
}

// WorldToCell returns the cell containing a world point.
func (c *Canvas) WorldToCell(x, y float64) (int, int) {
	sx, sy := c.transform.Apply(x, y)
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

func cellToScreen(col, row int) (float64, float64) {
	return float64(col)*cellWidth + cellWidth/2, float64(row)*cellHeight + cellHeight/2
}

// Render draws every visible shape into a cols x rows block of text.
func (c *Canvas) Render(cols, rows int) string {
	grid := newGrid(cols, rows)

	keys := make([]render.Key, 0, len(c.shapes))
	for k, sh := range c.shapes {
		if sh.Style.Hidden || sh.Style.Opacity <= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := c.shapes[keys[i]], c.shapes[keys[j]]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		sh := c.shapes[k]
		switch sh.Kind {
		case render.Line:
			c.drawLine(grid, sh)
		case render.Circle:
			c.drawCircle(grid, sh)
		case render.Text:
			c.drawText(grid, sh)
		}
	}
	if c.box != nil {
		c.drawBox(grid, *c.box)
	}
	return grid.String()
}

func (c *Canvas) drawLine(grid *charGrid, sh render.Shape) {
	x0, y0 := c.WorldToCell(sh.Geometry.X, sh.Geometry.Y)
	x1, y1 := c.WorldToCell(sh.Geometry.X2, sh.Geometry.Y2)
	r := lineRune(x1-x0, y1-y0)
	if sh.Style.Opacity < fadedBelow {
		r = '·'
	}
	style := cellStyle{fg: sh.Style.Stroke, faint: sh.Style.Opacity < fadedBelow}

	// Bresenham; endpoints belong to the nodes.
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	x, y := x0, y0
	for {
		if (x != x0 || y != y0) && (x != x1 || y != y1) {
			grid.set(x, y, r, style)
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// lineRune picks a glyph approximating the slope of a segment. Cells are
// about twice as tall as wide, so the diagonal band is widened accordingly.
func lineRune(dx, dy int) rune {
	adx, ady := abs(dx), abs(dy)
	switch {
	case ady*4 < adx:
		return '─'
	case adx < ady:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *Canvas) drawCircle(grid *charGrid, sh render.Shape) {
	col, row := c.WorldToCell(sh.Geometry.X, sh.Geometry.Y)
	r := '●'
	if sh.Style.Stroke != "" {
		r = '◉'
	}
	grid.set(col, row, r, cellStyle{
		fg:    sh.Style.Fill,
		bold:  sh.Style.Stroke == highlight.StrokeHovered,
		faint: sh.Style.Opacity < fadedBelow,
	})
}

func (c *Canvas) drawText(grid *charGrid, sh render.Shape) {
	if sh.Style.Text == "" {
		return
	}
	col, row := c.WorldToCell(sh.Geometry.X, sh.Geometry.Y)
	text := []rune(sh.Style.Text)
	start := col - len(text)/2
	style := cellStyle{fg: sh.Style.Fill, faint: sh.Style.Opacity < fadedBelow}
	for i, r := range text {
		grid.set(start+i, row, r, style)
	}
}

func (c *Canvas) drawBox(grid *charGrid, r highlight.Rect) {
	x0, y0 := c.WorldToCell(r.MinX, r.MinY)
	x1, y1 := c.WorldToCell(r.MaxX, r.MaxY)
	style := cellStyle{fg: highlight.ColorSelected}
	for x := x0; x <= x1; x++ {
		grid.set(x, y0, '┄', style)
		grid.set(x, y1, '┄', style)
	}
	for y := y0; y <= y1; y++ {
		grid.set(x0, y, '┆', style)
		grid.set(x1, y, '┆', style)
	}
}

// cellStyle is the comparable form of a cell's lipgloss style.
type cellStyle struct {
	fg    string
	bold  bool
	faint bool
}

func (s cellStyle) lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.fg != "" {
		st = st.Foreground(lipgloss.Color(s.fg))
	}
	return st.Bold(s.bold).Faint(s.faint)
}

// charGrid is a 2D character grid for rendering.
type charGrid struct {
	width  int
	height int
	cells  [][]rune
	styles [][]cellStyle
}

// newGrid creates a new character grid filled with spaces.
func newGrid(width, height int) *charGrid {
	width, height = max(0, width), max(0, height)
	cells := make([][]rune, height)
	styles := make([][]cellStyle, height)
	for y := range height {
		cells[y] = make([]rune, width)
		styles[y] = make([]cellStyle, width)
		for x := range width {
			cells[y][x] = ' '
		}
	}
	return &charGrid{
		width:  width,
		height: height,
		cells:  cells,
		styles: styles,
	}
}

// set writes a rune and its style, ignoring positions off the grid.
func (g *charGrid) set(x, y int, r rune, s cellStyle) {
	if x >= 0 && x < g.width && y >= 0 && y < g.height {
		g.cells[y][x] = r
		g.styles[y][x] = s
	}
}

// String converts the grid to text, styling runs of equally styled cells.
func (g *charGrid) String() string {
	cache := make(map[cellStyle]lipgloss.Style)
	lines := make([]string, 0, g.height)
	for y, row := range g.cells {
		var sb strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && g.styles[y][x] == g.styles[y][start] {
				continue
			}
			run := string(row[start:x])
			st := g.styles[y][start]
			if st == (cellStyle{}) {
				sb.WriteString(run)
			} else {
				ls, ok := cache[st]
				if !ok {
					ls = st.lipgloss()
					cache[st] = ls
				}
				sb.WriteString(ls.Render(run))
			}
			start = x
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
