package geometry

import "math"

const (
	// Precision is the number of decimal places coordinates are compared at.
	Precision = 3

	// Epsilon is the tolerance used by Equals and Between: half a unit in the
	// last decimal place of Precision.
	Epsilon = 0.5e-3

	TwoPi        = 2 * math.Pi
	HalfPi       = math.Pi / 2
	ThreeHalfPi  = 3 * math.Pi / 2
	lookupFactor = 1e3
)

// Point is an immutable 2D coordinate. Points are passed by value so the
// spatial index and its callers never share storage.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Equals reports whether both coordinate deltas are within Epsilon.
func (p Point) Equals(q Point) bool {
	return Equals(p.X, q.X) && Equals(p.Y, q.Y)
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// AngleTo returns the angle in [0, 2π) of the vector from p to q, measured
// from the positive x axis. The y axis points down, so π/2 is straight down.
func (p Point) AngleTo(q Point) float64 {
	dx := q.X - p.X
	if Equals(dx, 0) {
		if q.Y > p.Y {
			return HalfPi
		}
		return ThreeHalfPi
	}

	a := math.Atan((q.Y - p.Y) / dx)
	if q.X < p.X {
		a += math.Pi
	} else if q.Y < p.Y {
		a += TwoPi
	}
	return a
}

// Equals reports whether x and y differ by no more than Epsilon.
func Equals(x, y float64) bool {
	return math.Abs(x-y) <= Epsilon
}

// EqualsTol reports whether x and y differ by no more than tol.
func EqualsTol(x, y, tol float64) bool {
	return math.Abs(x-y) <= tol
}

// Between reports whether x lies in the closed interval spanned by u and v,
// padded by Epsilon on both ends. u and v may be given in either order.
func Between(x, u, v float64) bool {
	lo, hi := math.Min(u, v), math.Max(u, v)
	return x >= lo-Epsilon && x <= hi+Epsilon
}

// AngleBetween reports whether angle n lies within the sweep from a to b,
// taking wraparound into account. The bounds may be given in either order and
// need not be normalized. A sweep of 2π or more contains every angle.
func AngleBetween(n, a, b float64) bool {
	if b < a {
		a, b = b, a
	}
	if b-a >= TwoPi {
		return true
	}

	n = math.Mod(n, TwoPi)
	a = math.Mod(a, TwoPi)
	b = math.Mod(b, TwoPi)

	if a < 0 {
		a += TwoPi
		b += TwoPi
	}
	if b < a {
		b += TwoPi
	}
	if n < 0 {
		n += TwoPi
	}

	return (n >= a && n <= b) || (n+TwoPi >= a && n+TwoPi <= b)
}

// RoundToMultiple rounds x to the nearest multiple of n, halves rounding up.
func RoundToMultiple(x, n float64) float64 {
	return math.Floor(x/n+0.5) * n
}

// RoundToDecimal rounds x to the given number of decimal places, halves
// rounding up.
func RoundToDecimal(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(x*scale+0.5) / scale
}

// FloorToDecimal truncates x toward negative infinity at the given number of
// decimal places.
func FloorToDecimal(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(x*scale) / scale
}

// LookupKey returns p's coordinates rounded to Precision decimals, as
// integers. Two points with the same key are the same snap point.
func LookupKey(p Point) [2]int64 {
	return [2]int64{
		int64(math.Floor(p.X*lookupFactor + 0.5)),
		int64(math.Floor(p.Y*lookupFactor + 0.5)),
	}
}
