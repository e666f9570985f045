package geometry

import "math"

// Rect is an axis-aligned rectangle. As a shape it stands for its four
// boundary edges; as a value it doubles as a bounding box.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewRect returns the smallest rect containing both points.
func NewRect(p, q Point) Rect {
	return Rect{
		Left:   math.Min(p.X, q.X),
		Top:    math.Min(p.Y, q.Y),
		Right:  math.Max(p.X, q.X),
		Bottom: math.Max(p.Y, q.Y),
	}
}

// RectAround returns the square of half-width radius centred on p.
func RectAround(p Point, radius float64) Rect {
	return Rect{p.X - radius, p.Y - radius, p.X + radius, p.Y + radius}
}

func (*Rect) Kind() Kind { return KindRect }

func (r *Rect) Bounds() Rect {
	return r.Normalized()
}

// Normalized returns r with Left <= Right and Top <= Bottom.
func (r Rect) Normalized() Rect {
	return NewRect(Point{r.Left, r.Top}, Point{r.Right, r.Bottom})
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{(r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2}
}

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Encloses reports whether o lies strictly inside r.
func (r Rect) Encloses(o Rect) bool {
	return r.Left < o.Left && r.Right > o.Right && r.Top < o.Top && r.Bottom > o.Bottom
}

// Extend returns the smallest rect containing r and p.
func (r Rect) Extend(p Point) Rect {
	return Rect{
		Left:   math.Min(r.Left, p.X),
		Top:    math.Min(r.Top, p.Y),
		Right:  math.Max(r.Right, p.X),
		Bottom: math.Max(r.Bottom, p.Y),
	}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(o Rect) Rect {
	return r.Extend(Point{o.Left, o.Top}).Extend(Point{o.Right, o.Bottom})
}

// Edges returns the boundary segments in the order top, right, bottom, left.
func (r Rect) Edges() [4]Line {
	tl := Point{r.Left, r.Top}
	tr := Point{r.Right, r.Top}
	br := Point{r.Right, r.Bottom}
	bl := Point{r.Left, r.Bottom}
	return [4]Line{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}
