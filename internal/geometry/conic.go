package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateQuad is returned when no ellipse can be inscribed in the
// given quadrilateral.
var ErrDegenerateQuad = errors.New("degenerate quadrilateral")

// Conic holds the coefficients of a·x² + 2b·xy + c·y² + 2d·x + 2f·y + g = 0.
//
// Coefficients built by this package share one normalization (that of the
// quadrilateral projection), which the area-scaled discriminant tolerances
// used by the ellipse kernels are fitted to.
type Conic struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	F float64 `json:"f"`
	G float64 `json:"g"`
}

// IsZero reports whether no coefficients have been set.
func (k Conic) IsZero() bool {
	return k == Conic{}
}

// Eval returns the left-hand side of the conic equation at p.
func (k Conic) Eval(p Point) float64 {
	x, y := p.X, p.Y
	return k.A*x*x + 2*k.B*x*y + k.C*y*y + 2*k.D*x + 2*k.F*y + k.G
}

// conicFor returns the normalized coefficients of the ellipse with the given
// centre, radii and rotation.
func conicFor(center Point, rx, ry, xrot float64) Conic {
	if rx <= 0 || ry <= 0 {
		return Conic{}
	}

	cos, sin := math.Cos(xrot), math.Sin(xrot)
	irx, iry := 1/(rx*rx), 1/(ry*ry)

	a := cos*cos*irx + sin*sin*iry
	b := cos * sin * (irx - iry)
	c := sin*sin*irx + cos*cos*iry
	d := -(a*center.X + b*center.Y)
	f := -(b*center.X + c*center.Y)
	g := a*center.X*center.X + 2*b*center.X*center.Y + c*center.Y*center.Y - 1

	area := rx * ry
	k := 1 / (64 * area * area)
	return Conic{a * k, b * k, c * k, d * k, f * k, g * k}
}

// NewEllipse returns an ellipse with its conic coefficients filled in.
func NewEllipse(center Point, rx, ry, xrot float64) *Ellipse {
	return &Ellipse{
		Center: center,
		RX:     rx,
		RY:     ry,
		XRot:   xrot,
		Coeffs: conicFor(center, rx, ry, xrot),
	}
}

// NewEllipticalArc returns an arc of the ellipse NewEllipse would build.
func NewEllipticalArc(center Point, rx, ry, xrot, start, delta float64) *EllipticalArc {
	return &EllipticalArc{
		Ellipse:    *NewEllipse(center, rx, ry, xrot),
		StartAngle: start,
		DeltaAngle: delta,
	}
}

// Conic returns the circle's coefficients, normalized like an ellipse's.
func (c *Circle) Conic() Conic {
	return conicFor(c.Center, c.Radius, c.Radius, 0)
}

func (c *Circle) asEllipse() *Ellipse {
	return &Ellipse{Center: c.Center, RX: c.Radius, RY: c.Radius, Coeffs: c.Conic()}
}

// PointAt returns the point on the ellipse at polar angle a about its centre.
func (e *Ellipse) PointAt(a float64) Point {
	a = math.Mod(a-e.XRot, TwoPi)

	// Parametric angle for polar angle a, moved into a's quadrant.
	abs := math.Abs(a)
	t := math.Atan(e.RX * math.Tan(a) / e.RY)
	if abs > HalfPi && abs <= ThreeHalfPi {
		t += math.Pi
	} else {
		t += TwoPi
	}

	m := Translate(e.Center.X, e.Center.Y).Multiply(Rotate(e.XRot))
	return m.TransformPoint(Point{e.RX * math.Cos(t), e.RY * math.Sin(t)})
}

// EllipseFromQuad returns the ellipse inscribed in the convex quadrilateral
// w, x, y, z (corners in anticlockwise order), tangent to all four sides.
func EllipseFromQuad(w, x, y, z Point) (*Ellipse, error) {
	W0, W1 := w.X, w.Y
	X0, X1 := x.X, x.Y
	Y0, Y1 := y.X, y.Y
	Z0, Z1 := z.X, z.Y

	// Projection taking the unit square's inscribed circle onto the quad.
	s := mat.NewDense(3, 3, []float64{
		X0*Y0*Z1 - W0*Y0*Z1 - X0*Y1*Z0 + W0*Y1*Z0 - W0*X1*Z0 + W1*X0*Z0 + W0*X1*Y0 - W1*X0*Y0,
		W0*Y0*Z1 - W0*X0*Z1 - X0*Y1*Z0 + X1*Y0*Z0 - W1*Y0*Z0 + W1*X0*Z0 + W0*X0*Y1 - W0*X1*Y0,
		X0*Y0*Z1 - W0*X0*Z1 - W0*Y1*Z0 - X1*Y0*Z0 + W1*Y0*Z0 + W0*X1*Z0 + W0*X0*Y1 - W1*X0*Y0,

		X1*Y0*Z1 - W1*Y0*Z1 - W0*X1*Z1 + W1*X0*Z1 - X1*Y1*Z0 + W1*Y1*Z0 + W0*X1*Y1 - W1*X0*Y1,
		-X0*Y1*Z1 + W0*Y1*Z1 + X1*Y0*Z1 - W0*X1*Z1 - W1*Y1*Z0 + W1*X1*Z0 + W1*X0*Y1 - W1*X1*Y0,
		X0*Y1*Z1 - W0*Y1*Z1 + W1*Y0*Z1 - W1*X0*Z1 - X1*Y1*Z0 + W1*X1*Z0 + W0*X1*Y1 - W1*X1*Y0,

		X0*Z1 - W0*Z1 - X1*Z0 + W1*Z0 - X0*Y1 + W0*Y1 + X1*Y0 - W1*Y0,
		Y0*Z1 - X0*Z1 - Y1*Z0 + X1*Z0 + W0*Y1 - W1*Y0 - W0*X1 + W1*X0,
		Y0*Z1 - W0*Z1 - Y1*Z0 + W1*Z0 + X0*Y1 - X1*Y0 + W0*X1 - W1*X0,
	})

	var t mat.Dense
	if err := t.Inverse(s); err != nil {
		return nil, fmt.Errorf("invert projection: %w", ErrDegenerateQuad)
	}

	J, K, L := t.At(0, 0), t.At(0, 1), t.At(0, 2)
	M, N, O := t.At(1, 0), t.At(1, 1), t.At(1, 2)
	P, Q, R := t.At(2, 0), t.At(2, 1), t.At(2, 2)

	k := Conic{
		A: J*J + M*M - P*P,
		B: J*K + M*N - P*Q,
		C: K*K + N*N - Q*Q,
		D: J*L + M*O - P*R,
		F: K*L + N*O - Q*R,
		G: L*L + O*O - R*R,
	}

	disc := k.B*k.B - k.A*k.C
	if disc == 0 {
		return nil, ErrDegenerateQuad
	}

	center := Point{(k.C*k.D - k.B*k.F) / disc, (k.A*k.F - k.B*k.D) / disc}

	num := 2 * (k.A*k.F*k.F + k.C*k.D*k.D + k.G*k.B*k.B - 2*k.B*k.D*k.F - k.A*k.C*k.G)
	root := math.Sqrt((k.A-k.C)*(k.A-k.C) + 4*k.B*k.B)
	rx := math.Sqrt(num / (disc * (root - (k.A + k.C))))
	ry := math.Sqrt(num / (disc * (-root - (k.A + k.C))))
	if math.IsNaN(rx) || math.IsNaN(ry) || math.IsInf(rx, 0) || math.IsInf(ry, 0) {
		return nil, ErrDegenerateQuad
	}

	var xrot float64
	switch {
	case k.B == 0 && k.A < k.C:
		xrot = 0
	case k.B == 0:
		xrot = HalfPi
	case k.A < k.C:
		xrot = 0.5 * math.Atan(2*k.B/(k.A-k.C))
	default:
		xrot = HalfPi + 0.5*math.Atan(2*k.B/(k.A-k.C))
	}

	return &Ellipse{Center: center, RX: rx, RY: ry, XRot: xrot, Coeffs: k}, nil
}
