package geometry

import "math"

const (
	// circleDiscTolerance is the band around zero inside which a circle-line
	// discriminant counts as a single tangential root.
	circleDiscTolerance = 1e-25

	ellipseLineAlpha = 2.19e35
	ellipseLineBeta  = -5.673
)

// discTolerance returns alpha·area^beta / 1e41, the empirically fitted
// discriminant tolerance for an ellipse of the given area (rx·ry).
func discTolerance(alpha, beta, area float64) float64 {
	if area <= 0 {
		return 0
	}
	return alpha * math.Pow(area, beta) / 10e40
}

// quadraticRoots returns the real roots of A·t² + B·t + C = 0, first the
// "+" root then the "-" root. A discriminant for which zero reports true is a
// single double root. A vanishing A falls back to the linear solution.
func quadraticRoots(A, B, C float64, zero func(disc float64) bool) []float64 {
	if A == 0 {
		if B == 0 {
			return nil
		}
		return []float64{-C / B}
	}

	disc := B*B - 4*A*C
	switch {
	case zero(disc):
		return []float64{-B / (2 * A)}
	case disc > 0:
		r := math.Sqrt(disc)
		return []float64{(-B + r) / (2 * A), (-B - r) / (2 * A)}
	}
	return nil
}

// alongSegment maps parameters in [0, 1] to points on l.
func alongSegment(l *Line, ts []float64) []Point {
	var pts []Point
	for _, t := range ts {
		if Between(t, 0, 1) {
			pts = append(pts, l.At(t))
		}
	}
	return pts
}

func filter(pts []Point, keep func(Point) bool) []Point {
	var out []Point
	for _, p := range pts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// LineLine intersects two segments using Cramer's rule on their implicit
// forms a·x + b·y = c. Parallel segments never intersect.
func LineLine(l1, l2 *Line) []Point {
	a1 := l1.P2.Y - l1.P1.Y
	b1 := l1.P1.X - l1.P2.X
	c1 := a1*l1.P1.X + b1*l1.P1.Y

	a2 := l2.P2.Y - l2.P1.Y
	b2 := l2.P1.X - l2.P2.X
	c2 := a2*l2.P1.X + b2*l2.P1.Y

	det := a1*b2 - a2*b1
	if Equals(det, 0) {
		return nil
	}

	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	if l1.spans(x, y) && l2.spans(x, y) {
		return []Point{{x, y}}
	}
	return nil
}

// CircleLine intersects a circle with a segment parametrized as
// P1 + t·(P2 - P1).
func CircleLine(c *Circle, l *Line) []Point {
	if l.degenerate() {
		return nil
	}

	d := l.P2.Sub(l.P1)
	f := l.P1.Sub(c.Center)

	A := d.X*d.X + d.Y*d.Y
	B := 2 * (f.X*d.X + f.Y*d.Y)
	C := f.X*f.X + f.Y*f.Y - c.Radius*c.Radius

	return alongSegment(l, quadraticRoots(A, B, C, func(disc float64) bool {
		return EqualsTol(disc, 0, circleDiscTolerance)
	}))
}

// CircleArcLine keeps the circle-line solutions that fall inside the arc's
// sweep.
func CircleArcLine(a *CircleArc, l *Line) []Point {
	return filter(CircleLine(&a.Circle, l), a.contains)
}

// EllipseLine substitutes the segment's parametrization into the ellipse's
// conic equation. An ellipse without coefficients intersects nothing.
func EllipseLine(e *Ellipse, l *Line) []Point {
	k := e.Coeffs
	if k.IsZero() || l.degenerate() {
		return nil
	}

	a, b, c, d, f, g := k.A, k.B, k.C, k.D, k.F, k.G
	x1, y1 := l.P1.X, l.P1.Y
	x2, y2 := l.P2.X, l.P2.Y

	A := c*y2*y2 - 2*c*y1*y2 + 2*b*x2*y2 - 2*b*x1*y2 + c*y1*y1 - 2*b*x2*y1 + 2*b*x1*y1 + a*x2*x2 - 2*a*x1*x2 + a*x1*x1
	B := 2*c*y1*y2 + 2*b*x1*y2 + 2*f*y2 - 2*c*y1*y1 + 2*b*x2*y1 - 4*b*x1*y1 - 2*f*y1 + 2*a*x1*x2 + 2*d*x2 - 2*a*x1*x1 - 2*d*x1
	C := c*y1*y1 + 2*b*x1*y1 + 2*f*y1 + a*x1*x1 + 2*d*x1 + g

	tol := discTolerance(ellipseLineAlpha, ellipseLineBeta, e.area())
	return alongSegment(l, quadraticRoots(A, B, C, func(disc float64) bool {
		return EqualsTol(disc, 0, tol)
	}))
}

// EllipticalArcLine keeps the ellipse-line solutions that fall inside the
// arc's sweep.
func EllipticalArcLine(a *EllipticalArc, l *Line) []Point {
	return filter(EllipseLine(&a.Ellipse, l), a.contains)
}

// BezierLine substitutes the quadratic curve into the line's implicit
// equation. Roots must lie on the curve (t in [0, 1]) and the resulting
// point inside the segment's bounding box.
func BezierLine(bz *Bezier, l *Line) []Point {
	x0, y0 := bz.P1.X, bz.P1.Y
	x1, y1 := bz.P2.X, bz.P2.Y
	x2, y2 := bz.P3.X, bz.P3.Y
	x3, y3 := l.P1.X, l.P1.Y
	x4, y4 := l.P2.X, l.P2.Y

	A := (x2-2*x1+x0)*y4 + (-x2+2*x1-x0)*y3 + (x3-x4)*y2 + (2*x4-2*x3)*y1 + (x3-x4)*y0
	B := (2*x1-2*x0)*y4 + (2*x0-2*x1)*y3 + (2*x3-2*x4)*y1 + (2*x4-2*x3)*y0
	C := (x0-x3)*y4 + (x4-x0)*y3 + (x3-x4)*y0

	var pts []Point
	for _, t := range quadraticRoots(A, B, C, func(disc float64) bool { return Equals(disc, 0) }) {
		if !Between(t, 0, 1) {
			continue
		}
		if p := bz.At(t); l.spans(p.X, p.Y) {
			pts = append(pts, p)
		}
	}
	return pts
}

// CircleCircle intersects two circles through their radical axis. Distances
// are floored to 6 decimals before classification; tangent circles (d equal
// to the radius sum or difference) meet in exactly one point, concentric
// circles in none.
func CircleCircle(c1, c2 *Circle) []Point {
	d := FloorToDecimal(c1.Center.DistanceTo(c2.Center), 6)
	rsum := FloorToDecimal(c1.Radius+c2.Radius, 6)
	rdiff := FloorToDecimal(math.Abs(c1.Radius-c2.Radius), 6)

	dx := c2.Center.X - c1.Center.X
	dy := c2.Center.Y - c1.Center.Y

	switch {
	case d == 0:
		return nil
	case Equals(rsum, d) || Equals(rdiff, d):
		ratio := c1.Radius / d
		return []Point{{c1.Center.X + ratio*dx, c1.Center.Y + ratio*dy}}
	case d < rsum && d > rdiff:
		r1sq := c1.Radius * c1.Radius
		r2sq := c2.Radius * c2.Radius

		a := (r1sq - r2sq + d*d) / (2 * d)
		h := math.Sqrt(math.Max(r1sq-a*a, 0))

		mid := Point{c1.Center.X + a/d*dx, c1.Center.Y + a/d*dy}
		ox, oy := h/d*dx, h/d*dy
		return []Point{
			{mid.X + oy, mid.Y - ox},
			{mid.X - oy, mid.Y + ox},
		}
	}
	return nil
}

// CircleArcCircle keeps the circle-circle solutions inside the arc's sweep.
func CircleArcCircle(a *CircleArc, c *Circle) []Point {
	return filter(CircleCircle(&a.Circle, c), a.contains)
}

// CircleArcCircleArc keeps the circle-circle solutions inside both sweeps.
func CircleArcCircleArc(a1, a2 *CircleArc) []Point {
	return filter(CircleCircle(&a1.Circle, &a2.Circle), func(p Point) bool {
		return a1.contains(p) && a2.contains(p)
	})
}

// againstEdges runs fn on each edge of r and concatenates the results.
func againstEdges(r *Rect, fn func(edge *Line) []Point) []Point {
	var pts []Point
	edges := r.Edges()
	for i := range edges {
		pts = append(pts, fn(&edges[i])...)
	}
	return pts
}

func LineRect(l *Line, r *Rect) []Point {
	return againstEdges(r, func(e *Line) []Point { return LineLine(l, e) })
}

func CircleRect(c *Circle, r *Rect) []Point {
	return againstEdges(r, func(e *Line) []Point { return CircleLine(c, e) })
}

func CircleArcRect(a *CircleArc, r *Rect) []Point {
	return againstEdges(r, func(e *Line) []Point { return CircleArcLine(a, e) })
}

func EllipseRect(el *Ellipse, r *Rect) []Point {
	return againstEdges(r, func(e *Line) []Point { return EllipseLine(el, e) })
}

func EllipticalArcRect(a *EllipticalArc, r *Rect) []Point {
	return againstEdges(r, func(e *Line) []Point { return EllipticalArcLine(a, e) })
}

func BezierRect(bz *Bezier, r *Rect) []Point {
	return againstEdges(r, func(e *Line) []Point { return BezierLine(bz, e) })
}

// RectRect intersects every edge of r1 with r2.
func RectRect(r1, r2 *Rect) []Point {
	return againstEdges(r1, func(e *Line) []Point { return LineRect(e, r2) })
}
