// Package snap keeps the set of intersection and tangency points of a drawing
// and answers nearest-snap-point queries against it.
package snap

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/alberti/alberti/backend-go/internal/geometry"
	"github.com/alberti/alberti/backend-go/internal/spatial"
)

// Action says what TestIntersections and TestTangencies do with the points
// they find.
type Action int

const (
	// Insert adds the points to the index immediately.
	Insert Action = iota
	// Delete removes the points immediately.
	Delete
	// BulkDelete queues the points for removal at the next Flush.
	BulkDelete
	// Nop leaves the index untouched.
	Nop
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case BulkDelete:
		return "bulk-delete"
	case Nop:
		return "nop"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Registry owns the spatial index of snap points for one open document.
// It is not safe for concurrent use.
type Registry struct {
	points     *spatial.Index
	pending    []geometry.Point
	snapRadius float64
	scale      float64
}

// New returns an empty registry. snapRadius is the screen-space snap
// distance at zoom 1 and minZoom the smallest zoom factor the viewer allows;
// together they fix the bucket width so every zoom level can be searched.
func New(snapRadius, minZoom float64) *Registry {
	if !(snapRadius > 0) || !(minZoom > 0) {
		panic(fmt.Sprintf("snap: invalid radius %v or minimum zoom %v", snapRadius, minZoom))
	}
	return &Registry{
		points:     spatial.New(snapRadius / minZoom * 2),
		snapRadius: snapRadius,
		scale:      1,
	}
}

type kernelFunc func(a, b geometry.Shape) ([]geometry.Point, error)

// TestIntersections intersects query with each candidate in order and
// applies action to every point found. It returns the candidates that
// produced at least one point, and all the points. Nil candidates and kind
// pairs the kernel does not handle are skipped.
func (r *Registry) TestIntersections(query geometry.Shape, candidates []geometry.Shape, action Action) ([]geometry.Shape, []geometry.Point) {
	return r.test(geometry.Intersect, query, candidates, action)
}

// TestTangencies is TestIntersections for tangent points: one of each pair
// must be a point shape, the other a circle, ellipse or arc of either.
func (r *Registry) TestTangencies(query geometry.Shape, candidates []geometry.Shape, action Action) ([]geometry.Shape, []geometry.Point) {
	return r.test(geometry.Tangents, query, candidates, action)
}

func (r *Registry) test(fn kernelFunc, query geometry.Shape, candidates []geometry.Shape, action Action) ([]geometry.Shape, []geometry.Point) {
	var intersectors []geometry.Shape
	var all []geometry.Point

	for _, c := range candidates {
		if isNil(c) {
			continue
		}

		pts, err := fn(query, c)
		if err != nil {
			if errors.Is(err, geometry.ErrUnsupportedPair) {
				slog.Debug("skip snap test", "error", err)
				continue
			}
			panic(err)
		}
		if len(pts) == 0 {
			continue
		}

		intersectors = append(intersectors, c)
		all = append(all, pts...)

		switch action {
		case Insert:
			for _, p := range pts {
				r.points.Insert(p)
			}
		case Delete:
			r.points.Remove(pts...)
		case BulkDelete:
			r.pending = append(r.pending, pts...)
		}
	}

	return intersectors, all
}

// isNil reports whether s is nil or a typed nil pointer.
func isNil(s geometry.Shape) bool {
	if s == nil {
		return true
	}
	switch v := s.(type) {
	case *geometry.Line:
		return v == nil
	case *geometry.Circle:
		return v == nil
	case *geometry.CircleArc:
		return v == nil
	case *geometry.Ellipse:
		return v == nil
	case *geometry.EllipticalArc:
		return v == nil
	case *geometry.Bezier:
		return v == nil
	case *geometry.Rect:
		return v == nil
	case *geometry.PointShape:
		return v == nil
	}
	return false
}

// Flush removes every point queued by BulkDelete in one batch.
func (r *Registry) Flush() {
	if len(r.pending) == 0 {
		return
	}
	slog.Debug("flush snap points", "count", len(r.pending))
	r.points.Remove(r.pending...)
	r.pending = nil
}

// Pending returns the number of points waiting for Flush.
func (r *Registry) Pending() int {
	return len(r.pending)
}

// Len returns the number of distinct snap points.
func (r *Registry) Len() int {
	return r.points.Len()
}

// Count returns the reference count of the snap point at p.
func (r *Registry) Count(p geometry.Point) int {
	return r.points.Count(p)
}

// SearchRadius returns the current model-space snap radius.
func (r *Registry) SearchRadius() float64 {
	return math.Min(r.snapRadius/r.scale, r.points.MaxRadius())
}

// SetSearchRadiusScale divides the snap radius by scale, normally the zoom
// factor, so the snap distance stays constant on screen. Scales below the
// minimum zoom are clamped by the index's radius limit.
func (r *Registry) SetSearchRadiusScale(scale float64) {
	if !(scale > 0) {
		panic(fmt.Sprintf("snap: search radius scale must be positive, got %v", scale))
	}
	r.scale = scale
}

// NearestNeighbor returns the snap point closest to p within the search
// radius.
func (r *Registry) NearestNeighbor(p geometry.Point) (geometry.Point, bool) {
	return r.nearest(p, nil)
}

// NearestNeighborExcluding is NearestNeighbor ignoring any point equal to
// exclude, typically the point being dragged.
func (r *Registry) NearestNeighborExcluding(p, exclude geometry.Point) (geometry.Point, bool) {
	return r.nearest(p, &exclude)
}

func (r *Registry) nearest(p geometry.Point, exclude *geometry.Point) (geometry.Point, bool) {
	var best geometry.Point
	found := false
	bestDist := math.Inf(1)

	for _, q := range r.points.Search(p, r.SearchRadius()) {
		if exclude != nil && q.Equals(*exclude) {
			continue
		}
		if d := p.DistanceTo(q); d < bestDist {
			best, bestDist, found = q, d, true
		}
	}
	return best, found
}
