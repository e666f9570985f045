package geometry

import "math"

// Kind identifies a shape descriptor type. Kinds are declared in alphabetical
// order of their names, so comparing two Kinds gives the canonical argument
// order for the pairwise kernel functions.
type Kind uint8

const (
	KindBezier Kind = iota
	KindCircleArc
	KindCircle
	KindEllipticalArc
	KindEllipse
	KindLine
	KindPoint
	KindRect
	numKinds
)

var kindNames = [numKinds]string{
	KindBezier:        "bezier",
	KindCircleArc:     "carc",
	KindCircle:        "circle",
	KindEllipticalArc: "earc",
	KindEllipse:       "ellipse",
	KindLine:          "line",
	KindPoint:         "point",
	KindRect:          "rect",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Shape is a read-only descriptor handed to the kernel. Implementations are
// pointer types so callers can recognise their own shapes among the
// intersectors returned by the snap registry.
type Shape interface {
	Kind() Kind
	Bounds() Rect
}

// Line is a segment from P1 to P2.
type Line struct {
	P1 Point
	P2 Point
}

// Circle is a full circle.
type Circle struct {
	Center Point
	Radius float64
}

// CircleArc is the part of its circle swept from StartAngle through
// StartAngle+DeltaAngle. DeltaAngle may be negative.
type CircleArc struct {
	Circle
	StartAngle float64
	DeltaAngle float64
}

// Ellipse is described both by its geometric parameters and by the
// coefficients of its general conic equation. Build one with NewEllipse or
// EllipseFromQuad so the two stay consistent.
type Ellipse struct {
	Center Point
	RX     float64
	RY     float64
	XRot   float64
	Coeffs Conic
}

// EllipticalArc is the part of its ellipse whose polar angle about the centre
// lies in the sweep from StartAngle through StartAngle+DeltaAngle.
type EllipticalArc struct {
	Ellipse
	StartAngle float64
	DeltaAngle float64
}

// Bezier is a quadratic bézier curve with control points P1, P2, P3.
type Bezier struct {
	P1 Point
	P2 Point
	P3 Point
}

// PointShape wraps a single coordinate so it can take part in tangency tests.
type PointShape struct {
	At Point
}

func (*Line) Kind() Kind          { return KindLine }
func (*Circle) Kind() Kind        { return KindCircle }
func (*CircleArc) Kind() Kind     { return KindCircleArc }
func (*Ellipse) Kind() Kind       { return KindEllipse }
func (*EllipticalArc) Kind() Kind { return KindEllipticalArc }
func (*Bezier) Kind() Kind        { return KindBezier }
func (*PointShape) Kind() Kind    { return KindPoint }

// At returns the point at parameter t along the segment.
func (l *Line) At(t float64) Point {
	return Point{l.P1.X + t*(l.P2.X-l.P1.X), l.P1.Y + t*(l.P2.Y-l.P1.Y)}
}

func (l *Line) degenerate() bool {
	return l.P1.X == l.P2.X && l.P1.Y == l.P2.Y
}

// spans reports whether (x, y) lies within the segment's bounding box.
func (l *Line) spans(x, y float64) bool {
	return Between(x, l.P1.X, l.P2.X) && Between(y, l.P1.Y, l.P2.Y)
}

func (l *Line) Bounds() Rect {
	return NewRect(l.P1, l.P2)
}

func (c *Circle) Bounds() Rect {
	return Rect{
		Left:   c.Center.X - c.Radius,
		Top:    c.Center.Y - c.Radius,
		Right:  c.Center.X + c.Radius,
		Bottom: c.Center.Y + c.Radius,
	}
}

// StartPoint returns the arc's first endpoint.
func (a *CircleArc) StartPoint() Point {
	return a.pointAt(a.StartAngle)
}

// EndPoint returns the arc's last endpoint.
func (a *CircleArc) EndPoint() Point {
	return a.pointAt(a.StartAngle + a.DeltaAngle)
}

func (a *CircleArc) pointAt(angle float64) Point {
	return Point{a.Center.X + a.Radius*math.Cos(angle), a.Center.Y + a.Radius*math.Sin(angle)}
}

func (a *CircleArc) contains(p Point) bool {
	return AngleBetween(a.Center.AngleTo(p), a.StartAngle, a.StartAngle+a.DeltaAngle)
}

// Bounds covers both endpoints plus every axis extreme the sweep passes.
func (a *CircleArc) Bounds() Rect {
	r := NewRect(a.StartPoint(), a.EndPoint())
	for _, angle := range [...]float64{0, HalfPi, math.Pi, ThreeHalfPi} {
		if AngleBetween(angle, a.StartAngle, a.StartAngle+a.DeltaAngle) {
			r = r.Extend(a.pointAt(angle))
		}
	}
	return r
}

func (e *Ellipse) area() float64 {
	return e.RX * e.RY
}

func (e *Ellipse) Bounds() Rect {
	cos, sin := math.Cos(e.XRot), math.Sin(e.XRot)
	hw := math.Sqrt(e.RX*e.RX*cos*cos + e.RY*e.RY*sin*sin)
	hh := math.Sqrt(e.RX*e.RX*sin*sin + e.RY*e.RY*cos*cos)
	return Rect{
		Left:   e.Center.X - hw,
		Top:    e.Center.Y - hh,
		Right:  e.Center.X + hw,
		Bottom: e.Center.Y + hh,
	}
}

func (a *EllipticalArc) contains(p Point) bool {
	return AngleBetween(a.Center.AngleTo(p), a.StartAngle, a.StartAngle+a.DeltaAngle)
}

// Bounds covers both endpoints plus every axis extreme of the ellipse that
// the sweep passes.
func (a *EllipticalArc) Bounds() Rect {
	end := a.StartAngle + a.DeltaAngle
	r := NewRect(a.PointAt(a.StartAngle), a.PointAt(end))
	for _, p := range a.extremes() {
		if AngleBetween(a.Center.AngleTo(p), a.StartAngle, end) {
			r = r.Extend(p)
		}
	}
	return r
}

// extremes returns the leftmost, rightmost, topmost and bottommost points of
// the ellipse, in no particular order.
func (e *Ellipse) extremes() [4]Point {
	cos, sin := math.Cos(e.XRot), math.Sin(e.XRot)
	at := func(t float64) Point {
		x, y := e.RX*math.Cos(t), e.RY*math.Sin(t)
		return Point{e.Center.X + x*cos - y*sin, e.Center.Y + x*sin + y*cos}
	}
	tx := math.Atan2(-e.RY*sin, e.RX*cos)
	ty := math.Atan2(e.RY*cos, e.RX*sin)
	return [4]Point{at(tx), at(tx + math.Pi), at(ty), at(ty + math.Pi)}
}

// At returns the point at parameter t along the curve.
func (b *Bezier) At(t float64) Point {
	u := 1 - t
	d, e, f := u*u, 2*u*t, t*t
	return Point{
		d*b.P1.X + e*b.P2.X + f*b.P3.X,
		d*b.P1.Y + e*b.P2.Y + f*b.P3.Y,
	}
}

// Bounds covers the endpoints plus the curve's extreme on each axis.
func (b *Bezier) Bounds() Rect {
	r := NewRect(b.P1, b.P3)
	for _, t := range [...]float64{
		extremum(b.P1.X, b.P2.X, b.P3.X),
		extremum(b.P1.Y, b.P2.Y, b.P3.Y),
	} {
		if t > 0 && t < 1 {
			r = r.Extend(b.At(t))
		}
	}
	return r
}

// extremum returns the parameter where a quadratic bézier coordinate has zero
// derivative, or -1 when the coordinate is monotonic.
func extremum(p0, p1, p2 float64) float64 {
	den := p0 - 2*p1 + p2
	if den == 0 {
		return -1
	}
	return (p0 - p1) / den
}

func (p *PointShape) Bounds() Rect {
	return Rect{Left: p.At.X, Top: p.At.Y, Right: p.At.X, Bottom: p.At.Y}
}
