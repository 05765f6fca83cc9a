package render

import (
	"math"
	"testing"
)

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want string
	}{
		{"short", 18, "short"},
		{"exactly-eighteen-c", 18, "exactly-eighteen-c"},
		{"this label is far too long", 18, "this label is far ..."},
		{"ünïcödé-lâbel", 5, "ünïcö..."},
		{"unlimited", 0, "unlimited"},
	}

	for _, tt := range tests {
		if got := FormatLabel(tt.name, tt.max); got != tt.want {
			t.Errorf("FormatLabel(%q, %d) = %q, want %q", tt.name, tt.max, got, tt.want)
		}
	}
}

func TestFormatWeight(t *testing.T) {
	if got := FormatWeight(0.8765); got != "0.88" {
		t.Errorf("FormatWeight = %q, want 0.88", got)
	}
}

func TestLabelOpacity(t *testing.T) {
	tests := []struct {
		k, threshold, want float64
	}{
		{0.05, 1.1, 0},
		{0.1, 1.1, 0},
		{0.6, 1.1, 0.5},
		{1.1, 1.1, 1},
		{4, 1.1, 1},
		{0.5, 0.1, 1},
	}

	for _, tt := range tests {
		if got := LabelOpacity(tt.k, tt.threshold); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("LabelOpacity(%v, %v) = %v, want %v", tt.k, tt.threshold, got, tt.want)
		}
	}
}

func TestTransform(t *testing.T) {
	tr := Transform{K: 2, X: 10, Y: -5}

	sx, sy := tr.Apply(3, 4)
	if sx != 16 || sy != 3 {
		t.Errorf("Apply = (%v,%v), want (16,3)", sx, sy)
	}
	if wx, wy := tr.Invert(sx, sy); wx != 3 || wy != 4 {
		t.Errorf("Invert = (%v,%v), want (3,4)", wx, wy)
	}

	z := tr.ZoomAt(2, 16, 3, 0.1, 3)
	if z.K != 3 {
		t.Errorf("zoom K = %v, want clamp at 3", z.K)
	}
	if wx, wy := z.Invert(16, 3); math.Abs(wx-3) > 1e-9 || math.Abs(wy-4) > 1e-9 {
		t.Errorf("zoom moved the anchor: (%v,%v)", wx, wy)
	}

	if p := tr.Pan(5, 5); p.X != 15 || p.Y != 0 || p.K != 2 {
		t.Errorf("Pan = %+v", p)
	}
}
