package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertRect(t *testing.T, want, got Rect) {
	t.Helper()
	assert.InDelta(t, want.Left, got.Left, 1e-9, "left")
	assert.InDelta(t, want.Top, got.Top, 1e-9, "top")
	assert.InDelta(t, want.Right, got.Right, 1e-9, "right")
	assert.InDelta(t, want.Bottom, got.Bottom, 1e-9, "bottom")
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  Rect
	}{
		{"line", &Line{Pt(10, 0), Pt(0, 5)}, Rect{0, 0, 10, 5}},
		{"circle", &Circle{Pt(1, 1), 2}, Rect{-1, -1, 3, 3}},
		{"quarter arc", &CircleArc{Circle{Pt(0, 0), 5}, 0, HalfPi}, Rect{0, 0, 5, 5}},
		{"half arc", &CircleArc{Circle{Pt(0, 0), 5}, math.Pi, math.Pi}, Rect{-5, -5, 5, 0}},
		{"ellipse", NewEllipse(Pt(0, 0), 8, 4, 0), Rect{-8, -4, 8, 4}},
		{"upright ellipse", NewEllipse(Pt(0, 0), 8, 4, HalfPi), Rect{-4, -8, 4, 8}},
		{"quarter elliptical arc", NewEllipticalArc(Pt(0, 0), 8, 4, 0, 0, HalfPi), Rect{0, 0, 8, 4}},
		{"left elliptical arc", NewEllipticalArc(Pt(0, 0), 8, 4, 0, HalfPi, math.Pi), Rect{-8, -4, 0, 4}},
		{"rotated elliptical arc", NewEllipticalArc(Pt(0, 0), 8, 4, HalfPi, 0, HalfPi), Rect{0, 0, 4, 8}},
		{"full elliptical arc", NewEllipticalArc(Pt(1, 1), 8, 4, 0, 0, TwoPi), Rect{-7, -3, 9, 5}},
		{"bezier", &Bezier{Pt(0, 0), Pt(5, 10), Pt(10, 0)}, Rect{0, 0, 10, 5}},
		{"point", &PointShape{Pt(3, 4)}, Rect{3, 4, 3, 4}},
		{"reversed rect", &Rect{10, 10, 0, 0}, Rect{0, 0, 10, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRect(t, tt.want, tt.shape.Bounds())
		})
	}
}

func TestRect(t *testing.T) {
	r := Rect{0, 0, 10, 10}

	assert.True(t, r.Encloses(Rect{1, 1, 9, 9}))
	assert.False(t, r.Encloses(Rect{0, 1, 9, 9}), "touching the edge is not enclosed")
	assert.True(t, r.Contains(Pt(10, 10)))
	assert.False(t, r.Contains(Pt(10.1, 5)))
	assert.Equal(t, Pt(5, 5), r.Center())
	assert.True(t, Rect{0, 0, 0, 10}.IsEmpty())
	assert.Equal(t, Rect{-1, 0, 10, 12}, r.Union(Rect{-1, 2, 3, 12}))
	assert.Equal(t, Rect{3, 4, 7, 8}, RectAround(Pt(5, 6), 2))
}

func TestTranslated(t *testing.T) {
	t.Run("line", func(t *testing.T) {
		got := Translated(&Line{Pt(0, 0), Pt(1, 1)}, 2, 3)
		assert.Equal(t, &Line{Pt(2, 3), Pt(3, 4)}, got)
	})

	t.Run("ellipse keeps its coefficients consistent", func(t *testing.T) {
		got := Translated(NewEllipse(Pt(0, 0), 8, 4, 0), 10, 0).(*Ellipse)
		assert.Equal(t, Pt(10, 0), got.Center)
		assertPoints(t, []Point{Pt(18, 0), Pt(2, 0)}, EllipseLine(got, &Line{Pt(0, 0), Pt(20, 0)}))
	})

	t.Run("arc keeps its sweep", func(t *testing.T) {
		got := Translated(&CircleArc{Circle{Pt(0, 0), 1}, 1, 2}, -1, -1).(*CircleArc)
		assert.Equal(t, Pt(-1, -1), got.Center)
		assert.Equal(t, 1.0, got.StartAngle)
		assert.Equal(t, 2.0, got.DeltaAngle)
	})

	t.Run("rect", func(t *testing.T) {
		assert.Equal(t, &Rect{1, 1, 11, 11}, Translated(&Rect{0, 0, 10, 10}, 1, 1))
	})
}

func TestMatrix(t *testing.T) {
	m := Translate(5, 0).Multiply(Rotate(HalfPi))
	p := m.TransformPoint(Pt(1, 0))
	assert.InDelta(t, 5, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)

	assert.Equal(t, Pt(2, 3), Identity().TransformPoint(Pt(2, 3)))
}
