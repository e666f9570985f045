package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEllipseCoefficients(t *testing.T) {
	e := NewEllipse(Pt(4, -2), 6, 3, math.Pi/3)

	for _, a := range []float64{0, 0.7, 2, 4} {
		p := e.PointAt(a)
		assert.InDelta(t, 0, e.Coeffs.Eval(p)*64*18*18, 1e-9, "point at %v", a)
	}
	assert.Less(t, e.Coeffs.Eval(e.Center), 0.0)
	assert.Greater(t, e.Coeffs.Eval(Pt(100, 100)), 0.0)
}

func TestNewEllipseDegenerate(t *testing.T) {
	assert.True(t, NewEllipse(Pt(0, 0), 0, 3, 0).Coeffs.IsZero())
	assert.True(t, (&Circle{Radius: -1}).Conic().IsZero())
}

func TestEllipsePointAt(t *testing.T) {
	e := NewEllipse(Pt(0, 0), 8, 4, 0)

	assertPoints(t, []Point{Pt(8, 0)}, []Point{e.PointAt(0)})
	assertPoints(t, []Point{Pt(-8, 0)}, []Point{e.PointAt(math.Pi)})

	// The polar angle is preserved.
	p := e.PointAt(math.Pi / 4)
	assert.InDelta(t, p.X, p.Y, 1e-9)
	assert.Greater(t, p.X, 0.0)
}

func TestEllipseFromQuad(t *testing.T) {
	tests := []struct {
		name       string
		w, x, y, z Point
		center     Point
		rx, ry     float64
	}{
		{"square", Pt(0, 0), Pt(0, 10), Pt(10, 10), Pt(10, 0), Pt(5, 5), 5, 5},
		{"square reversed", Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10), Pt(5, 5), 5, 5},
		{"wide rect", Pt(0, 0), Pt(0, 10), Pt(20, 10), Pt(20, 0), Pt(10, 5), 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := EllipseFromQuad(tt.w, tt.x, tt.y, tt.z)
			require.NoError(t, err)
			assert.InDelta(t, tt.center.X, e.Center.X, 1e-9)
			assert.InDelta(t, tt.center.Y, e.Center.Y, 1e-9)
			assert.InDelta(t, tt.rx, e.RX, 1e-9)
			assert.InDelta(t, tt.ry, e.RY, 1e-9)
		})
	}

	t.Run("collapsed", func(t *testing.T) {
		_, err := EllipseFromQuad(Pt(0, 0), Pt(0, 0), Pt(0, 0), Pt(0, 0))
		assert.ErrorIs(t, err, ErrDegenerateQuad)
	})
}

func TestEllipseFromQuadMatchesNewEllipse(t *testing.T) {
	e, err := EllipseFromQuad(Pt(0, 0), Pt(0, 10), Pt(20, 10), Pt(20, 0))
	require.NoError(t, err)

	// Both constructions share one normalization, so the kernels see the
	// same ellipse either way.
	got := EllipseLine(e, &Line{Pt(-5, 5), Pt(25, 5)})
	want := EllipseLine(NewEllipse(Pt(10, 5), 10, 5, 0), &Line{Pt(-5, 5), Pt(25, 5)})
	require.Len(t, got, 2)
	for _, p := range want {
		assert.True(t, containsPoint(got, p, 1e-6), "missing %v in %v", p, got)
	}
}
