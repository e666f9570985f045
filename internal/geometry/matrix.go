package geometry

import "math"

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Rotate returns a rotation matrix (angle in radians, clockwise on screen).
func Rotate(radians float64) Matrix2D {
	cos, sin := math.Cos(radians), math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * o, which applies o first, then m.
func (m Matrix2D) Multiply(o Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(p Point) Point {
	return Point{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// Translated returns a copy of s moved by (dx, dy). Conic coefficients are
// recomputed for ellipses and elliptical arcs.
func Translated(s Shape, dx, dy float64) Shape {
	m := Translate(dx, dy)
	switch v := s.(type) {
	case *Line:
		return &Line{m.TransformPoint(v.P1), m.TransformPoint(v.P2)}
	case *Circle:
		return &Circle{m.TransformPoint(v.Center), v.Radius}
	case *CircleArc:
		return &CircleArc{Circle{m.TransformPoint(v.Center), v.Radius}, v.StartAngle, v.DeltaAngle}
	case *Ellipse:
		return NewEllipse(m.TransformPoint(v.Center), v.RX, v.RY, v.XRot)
	case *EllipticalArc:
		return NewEllipticalArc(m.TransformPoint(v.Center), v.RX, v.RY, v.XRot, v.StartAngle, v.DeltaAngle)
	case *Bezier:
		return &Bezier{m.TransformPoint(v.P1), m.TransformPoint(v.P2), m.TransformPoint(v.P3)}
	case *Rect:
		tl := m.TransformPoint(Point{v.Left, v.Top})
		br := m.TransformPoint(Point{v.Right, v.Bottom})
		return &Rect{tl.X, tl.Y, br.X, br.Y}
	case *PointShape:
		return &PointShape{m.TransformPoint(v.At)}
	}
	panic("geometry: cannot translate " + s.Kind().String())
}
