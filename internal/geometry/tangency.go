package geometry

import "math"

const (
	tangencyAlpha = 1.86e29
	tangencyBeta  = -5.304
)

// EllipsePoint returns the points where lines through p touch the ellipse.
//
// The slope condition from implicit differentiation puts every tangent point
// on the polar line P·x + Q·y + R = 0; substituting that into the conic gives
// a quadratic in x (or in y when Q is zero, i.e. the polar line is vertical).
// A point on the ellipse is its own single tangent point, an interior point
// has none. A point at the conic's centre (P = Q = 0) has no polar line and
// yields nothing.
func EllipsePoint(e *Ellipse, p Point) []Point {
	k := e.Coeffs
	if k.IsZero() {
		return nil
	}

	a, b, c, d, f, g := k.A, k.B, k.C, k.D, k.F, k.G
	x0, y0 := p.X, p.Y

	P := a*x0 + b*y0 + d
	Q := b*x0 + c*y0 + f
	R := d*x0 + f*y0 + g

	var A, B, C float64
	switch {
	case P == 0 && Q == 0:
		return nil
	case Q == 0:
		A = c
		B = 2 * (f - (b*R)/P)
		C = (a*R*R)/(P*P) - (2*d*R)/P + g
	default:
		A = a - (2*b*P)/Q + (c*P*P)/(Q*Q)
		B = 2 * (d - (b*R+f*P)/Q + (c*P*R)/(Q*Q))
		C = g - (2*f*R)/Q + (c*R*R)/(Q*Q)
	}
	if A == 0 {
		return nil
	}

	disc := B*B - 4*A*C
	switch {
	case EqualsTol(disc, 0, discTolerance(tangencyAlpha, tangencyBeta, e.area())):
		return []Point{p}
	case disc > 0:
		r := math.Sqrt(disc)
		u1 := (-B + r) / (2 * A)
		u2 := (-B - r) / (2 * A)
		if Q == 0 {
			x := -R / P
			return []Point{{x, u1}, {x, u2}}
		}
		return []Point{
			{u1, -(P*u1 + R) / Q},
			{u2, -(P*u2 + R) / Q},
		}
	}
	return nil
}

// EllipticalArcPoint keeps the tangent points inside the arc's sweep.
func EllipticalArcPoint(a *EllipticalArc, p Point) []Point {
	return filter(EllipsePoint(&a.Ellipse, p), a.contains)
}

// CirclePoint returns the tangent points on c for lines through p.
func CirclePoint(c *Circle, p Point) []Point {
	return EllipsePoint(c.asEllipse(), p)
}

// CircleArcPoint keeps the circle tangent points inside the arc's sweep.
func CircleArcPoint(a *CircleArc, p Point) []Point {
	return filter(CirclePoint(&a.Circle, p), a.contains)
}
