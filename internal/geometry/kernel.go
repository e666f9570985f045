package geometry

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPair is returned when no kernel function exists for a pair
// of shape kinds.
var ErrUnsupportedPair = errors.New("unsupported shape pair")

// pair is an ordered pair of kinds with lo <= hi.
type pair struct {
	lo, hi Kind
}

type pairFunc func(a, b Shape) []Point

var intersections = map[pair]pairFunc{
	{KindBezier, KindLine}: func(a, b Shape) []Point { return BezierLine(a.(*Bezier), b.(*Line)) },
	{KindBezier, KindRect}: func(a, b Shape) []Point { return BezierRect(a.(*Bezier), b.(*Rect)) },

	{KindCircleArc, KindCircleArc}: func(a, b Shape) []Point { return CircleArcCircleArc(a.(*CircleArc), b.(*CircleArc)) },
	{KindCircleArc, KindCircle}:    func(a, b Shape) []Point { return CircleArcCircle(a.(*CircleArc), b.(*Circle)) },
	{KindCircleArc, KindLine}:      func(a, b Shape) []Point { return CircleArcLine(a.(*CircleArc), b.(*Line)) },
	{KindCircleArc, KindRect}:      func(a, b Shape) []Point { return CircleArcRect(a.(*CircleArc), b.(*Rect)) },

	{KindCircle, KindCircle}: func(a, b Shape) []Point { return CircleCircle(a.(*Circle), b.(*Circle)) },
	{KindCircle, KindLine}:   func(a, b Shape) []Point { return CircleLine(a.(*Circle), b.(*Line)) },
	{KindCircle, KindRect}:   func(a, b Shape) []Point { return CircleRect(a.(*Circle), b.(*Rect)) },

	{KindEllipticalArc, KindLine}: func(a, b Shape) []Point { return EllipticalArcLine(a.(*EllipticalArc), b.(*Line)) },
	{KindEllipticalArc, KindRect}: func(a, b Shape) []Point { return EllipticalArcRect(a.(*EllipticalArc), b.(*Rect)) },

	{KindEllipse, KindLine}: func(a, b Shape) []Point { return EllipseLine(a.(*Ellipse), b.(*Line)) },
	{KindEllipse, KindRect}: func(a, b Shape) []Point { return EllipseRect(a.(*Ellipse), b.(*Rect)) },

	{KindLine, KindLine}: func(a, b Shape) []Point { return LineLine(a.(*Line), b.(*Line)) },
	{KindLine, KindRect}: func(a, b Shape) []Point { return LineRect(a.(*Line), b.(*Rect)) },

	{KindRect, KindRect}: func(a, b Shape) []Point { return RectRect(a.(*Rect), b.(*Rect)) },
}

var tangencies = map[pair]pairFunc{
	{KindCircleArc, KindPoint}:     func(a, b Shape) []Point { return CircleArcPoint(a.(*CircleArc), b.(*PointShape).At) },
	{KindCircle, KindPoint}:        func(a, b Shape) []Point { return CirclePoint(a.(*Circle), b.(*PointShape).At) },
	{KindEllipticalArc, KindPoint}: func(a, b Shape) []Point { return EllipticalArcPoint(a.(*EllipticalArc), b.(*PointShape).At) },
	{KindEllipse, KindPoint}:       func(a, b Shape) []Point { return EllipsePoint(a.(*Ellipse), b.(*PointShape).At) },
}

// canonical orders a and b by kind. Shapes of the same kind keep their
// order, so callers must always test in a fixed order to get reproducible
// results near degenerate configurations.
func canonical(a, b Shape) (Shape, Shape) {
	if b.Kind() < a.Kind() {
		return b, a
	}
	return a, b
}

func dispatch(table map[pair]pairFunc, op string, a, b Shape) ([]Point, error) {
	if a == nil || b == nil {
		panic("geometry: " + op + " called with a nil shape")
	}
	a, b = canonical(a, b)
	fn, ok := table[pair{a.Kind(), b.Kind()}]
	if !ok {
		return nil, fmt.Errorf("%s %s/%s: %w", op, a.Kind(), b.Kind(), ErrUnsupportedPair)
	}
	return fn(a, b), nil
}

// Intersect returns the points lying on both shapes, accepting the shapes in
// either order.
func Intersect(a, b Shape) ([]Point, error) {
	return dispatch(intersections, "intersect", a, b)
}

// Tangents returns the tangent points on a curve for lines through a point
// shape, accepting the shapes in either order.
func Tangents(a, b Shape) ([]Point, error) {
	return dispatch(tangencies, "tangents", a, b)
}

// Supports reports whether Intersect handles the pair of kinds.
func Supports(a, b Kind) bool {
	if b < a {
		a, b = b, a
	}
	_, ok := intersections[pair{a, b}]
	return ok
}

// SupportsTangency reports whether Tangents handles the pair of kinds.
func SupportsTangency(a, b Kind) bool {
	if b < a {
		a, b = b, a
	}
	_, ok := tangencies[pair{a, b}]
	return ok
}
