package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCirclePoint(t *testing.T) {
	c := &Circle{Center: Pt(0, 0), Radius: 5}
	h := 5 * math.Sqrt(3) / 2

	tests := []struct {
		name string
		from Point
		want []Point
	}{
		{"on the x axis", Pt(10, 0), []Point{Pt(2.5, -h), Pt(2.5, h)}},
		{"on the y axis", Pt(0, 10), []Point{Pt(h, 2.5), Pt(-h, 2.5)}},
		{"inside", Pt(1, 0), nil},
		{"centre", Pt(0, 0), nil},
		{"on the circle", Pt(5, 0), []Point{Pt(5, 0)}},
		{"on the circle off axis", Pt(3, 4), []Point{Pt(3, 4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CirclePoint(c, tt.from)
			require.Len(t, got, len(tt.want))
			for _, w := range tt.want {
				assert.True(t, containsPoint(got, w, 1e-9), "missing %v in %v", w, got)
			}
		})
	}

	t.Run("tangent lines are perpendicular to the radius", func(t *testing.T) {
		from := Pt(7, 7)
		got := CirclePoint(c, from)
		require.Len(t, got, 2)
		for _, p := range got {
			assert.InDelta(t, 5, p.DistanceTo(c.Center), 1e-9)
			radius := p.Sub(c.Center)
			tangent := from.Sub(p)
			assert.InDelta(t, 0, radius.X*tangent.X+radius.Y*tangent.Y, 1e-9)
		}
	})
}

func TestCircleArcPoint(t *testing.T) {
	// lower half on screen: angles 0 through π
	arc := &CircleArc{Circle: Circle{Pt(0, 0), 5}, StartAngle: 0, DeltaAngle: math.Pi}
	got := CircleArcPoint(arc, Pt(10, 0))
	require.Len(t, got, 1)
	assert.InDelta(t, 2.5, got[0].X, 1e-9)
	assert.InDelta(t, 5*math.Sqrt(3)/2, got[0].Y, 1e-9)
}

func TestEllipsePoint(t *testing.T) {
	t.Run("on the ellipse", func(t *testing.T) {
		e := NewEllipse(Pt(0, 0), 2, 1, 0)
		got := EllipsePoint(e, Pt(2, 0))
		require.Len(t, got, 1)
		assert.Equal(t, Pt(2, 0), got[0])
	})

	t.Run("vertical polar line", func(t *testing.T) {
		e := NewEllipse(Pt(0, 0), 2, 1, 0)
		got := EllipsePoint(e, Pt(4, 0))
		require.Len(t, got, 2)
		h := math.Sqrt(3) / 2
		assert.True(t, containsPoint(got, Pt(1, h), 1e-9), "got %v", got)
		assert.True(t, containsPoint(got, Pt(1, -h), 1e-9), "got %v", got)
	})

	t.Run("centre", func(t *testing.T) {
		e := NewEllipse(Pt(0, 0), 2, 1, 0)
		assert.Empty(t, EllipsePoint(e, Pt(0, 0)))
	})

	t.Run("no coefficients", func(t *testing.T) {
		assert.Empty(t, EllipsePoint(&Ellipse{Center: Pt(0, 0), RX: 2, RY: 1}, Pt(4, 0)))
	})

	t.Run("rotated", func(t *testing.T) {
		e := NewEllipse(Pt(10, 20), 30, 10, math.Pi/6)
		from := Pt(60, 20)
		got := EllipsePoint(e, from)
		require.Len(t, got, 2)

		k := e.Coeffs
		P := k.A*from.X + k.B*from.Y + k.D
		Q := k.B*from.X + k.C*from.Y + k.F
		R := k.D*from.X + k.F*from.Y + k.G
		scale := 64 * e.area() * e.area()
		for _, p := range got {
			assert.InDelta(t, 0, k.Eval(p)*scale, 1e-6, "%v is not on the ellipse", p)
			assert.InDelta(t, 0, (P*p.X+Q*p.Y+R)*scale, 1e-6, "%v is not on the polar line", p)
		}
	})
}

func TestEllipticalArcPoint(t *testing.T) {
	arc := NewEllipticalArc(Pt(0, 0), 2, 1, 0, math.Pi, math.Pi)
	got := EllipticalArcPoint(arc, Pt(4, 0))
	require.Len(t, got, 1)
	assert.InDelta(t, 1, got[0].X, 1e-9)
	assert.InDelta(t, -math.Sqrt(3)/2, got[0].Y, 1e-9)
}

func containsPoint(pts []Point, p Point, tol float64) bool {
	for _, q := range pts {
		if math.Abs(q.X-p.X) <= tol && math.Abs(q.Y-p.Y) <= tol {
			return true
		}
	}
	return false
}
