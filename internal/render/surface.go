// Package render keeps a drawing surface in step with the graph by
// reconciling visual elements against node and edge identity.
package render

// Key identifies one visual element on a Surface.
type Key string

// Element keys. Each node owns a circle and a label; each edge owns a line
// and a weight label.
func NodeKey(id string) Key    { return Key("node:" + id) }
func LabelKey(id string) Key   { return Key("label:" + id) }
func EdgeKey(key string) Key   { return Key("edge:" + key) }
func WeightKey(key string) Key { return Key("weight:" + key) }

// ShapeKind is the primitive drawn for an element.
type ShapeKind int

const (
	Circle ShapeKind = iota
	Line
	Text
)

// String returns a string representation of the ShapeKind.
func (k ShapeKind) String() string {
	switch k {
	case Circle:
		return "circle"
	case Line:
		return "line"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Drawing layers, bottom first.
const (
	LayerEdges = iota
	LayerWeights
	LayerNodes
	LayerLabels
)

// Style holds the visual attributes of an element.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Radius      float64
	Text        string
	Hidden      bool
}

// Geometry places an element in world coordinates. Lines use both points;
// circles and text use the first.
type Geometry struct {
	X, Y   float64
	X2, Y2 float64
}

// Shape is everything needed to create an element.
type Shape struct {
	Kind     ShapeKind
	Layer    int
	Style    Style
	Geometry Geometry
}

// Transform maps world coordinates to screen coordinates:
// screen = world*K + (X, Y).
type Transform struct {
	K    float64
	X, Y float64
}

// Identity is the transform with no zoom or pan.
var Identity = Transform{K: 1}

// Apply converts a world point to screen coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert converts a screen point to world coordinates.
func (t Transform) Invert(x, y float64) (float64, float64) {
	if t.K == 0 {
		return x - t.X, y - t.Y
	}
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

// ZoomAt scales by factor around the screen point (sx, sy), keeping that
// point fixed. k is clamped to [minK, maxK].
func (t Transform) ZoomAt(factor, sx, sy, minK, maxK float64) Transform {
	k := t.K * factor
	if k < minK {
		k = minK
	}
	if k > maxK {
		k = maxK
	}
	wx, wy := t.Invert(sx, sy)
	return Transform{K: k, X: sx - wx*k, Y: sy - wy*k}
}

// Pan shifts the transform by a screen-space delta.
func (t Transform) Pan(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}

// Surface is a 2D drawing target.
type Surface interface {
	Create(key Key, shape Shape)
	Restyle(key Key, style Style)
	Move(key Key, geom Geometry)
	Remove(key Key)
	SetTransform(t Transform)
}
