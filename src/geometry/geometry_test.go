package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectFromPointsNormalizes(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want Rect
	}{
		{"top-left to bottom-right", Pt(10, 10), Pt(110, 60), R(10, 10, 100, 50)},
		{"bottom-right to top-left", Pt(110, 60), Pt(10, 10), R(10, 10, 100, 50)},
		{"mixed", Pt(110, 10), Pt(10, 60), R(10, 10, 100, 50)},
		{"same point", Pt(5, 5), Pt(5, 5), R(5, 5, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RectFromPoints(tt.a, tt.b))
		})
	}
}

func TestRotatePoint(t *testing.T) {
	c := Pt(0, 0)
	p := RotatePoint(Pt(10, 0), c, math.Pi/2)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 10, p.Y, 1e-9)

	back := RotatePoint(p, c, -math.Pi/2)
	assert.InDelta(t, 10, back.X, 1e-9)
	assert.InDelta(t, 0, back.Y, 1e-9)

	assert.Equal(t, Pt(3, 4), RotatePoint(Pt(3, 4), Pt(1, 1), 0))
}

func TestRotatePointIsDeterministic(t *testing.T) {
	a := RotatePoint(Pt(12.5, -3.25), Pt(1, 2), 0.7)
	b := RotatePoint(Pt(12.5, -3.25), Pt(1, 2), 0.7)
	assert.Equal(t, a, b)
}

func TestBoundingBox(t *testing.T) {
	_, ok := BoundingBox(nil)
	assert.False(t, ok)

	r, ok := BoundingBox([]Point{Pt(4, 7)})
	require.True(t, ok)
	assert.Equal(t, R(4, 7, 0, 0), r)

	r, ok = BoundingBox([]Point{Pt(4, 7), Pt(-2, 9), Pt(10, 1)})
	require.True(t, ok)
	assert.Equal(t, R(-2, 1, 12, 8), r)
}

func TestInsetAndContains(t *testing.T) {
	r := R(10, 10, 20, 20)
	assert.False(t, r.Contains(Pt(8, 8)))
	assert.True(t, r.Inset(-4).Contains(Pt(8, 8)))
	assert.True(t, r.Contains(Pt(30, 30)))
	assert.Equal(t, Pt(20, 20), r.Center())
}

func TestRotatedBounds(t *testing.T) {
	r := R(0, 0, 20, 10)
	b := RotatedBounds(r, math.Pi/2)
	assert.InDelta(t, 5, b.X, 1e-9)
	assert.InDelta(t, -5, b.Y, 1e-9)
	assert.InDelta(t, 10, b.Width, 1e-9)
	assert.InDelta(t, 20, b.Height, 1e-9)
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, 3*math.Pi/2, NormalizeAngle(-math.Pi/2), 1e-12)
}
