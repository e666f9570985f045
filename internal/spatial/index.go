// Package spatial provides a uniform-grid point index for radius-bounded
// snap lookups.
//
// Points are stored in square buckets of a fixed width. A search looks at the
// query's own bucket and at most three neighbours, so the search radius may
// never exceed half the bucket width. Each distinct point (compared at
// geometry.Precision decimals) is stored once and reference counted, making
// the index a multiset.
package spatial

import (
	"fmt"
	"math"

	"github.com/alberti/alberti/backend-go/internal/geometry"
)

type cell [2]int64

type slot struct {
	p    geometry.Point
	live bool
}

type bucket struct {
	slots []slot
	dirty bool
}

type entry struct {
	count int
	cell  cell
	slot  int
}

// Index is a bucketed 2D point index. It is not safe for concurrent use.
type Index struct {
	width   float64
	buckets map[cell]*bucket
	lookup  map[[2]int64]*entry
}

// New returns an empty index with the given bucket width. A good width is
// twice the largest radius future searches will use.
func New(bucketWidth float64) *Index {
	if !(bucketWidth > 0) {
		panic(fmt.Sprintf("spatial: bucket width must be positive, got %v", bucketWidth))
	}
	return &Index{
		width:   bucketWidth,
		buckets: make(map[cell]*bucket),
		lookup:  make(map[[2]int64]*entry),
	}
}

// Width returns the bucket width.
func (ix *Index) Width() float64 {
	return ix.width
}

// MaxRadius returns the largest radius Search accepts.
func (ix *Index) MaxRadius() float64 {
	return ix.width / 2
}

// Len returns the number of distinct points stored.
func (ix *Index) Len() int {
	return len(ix.lookup)
}

// Buckets returns the number of non-empty buckets.
func (ix *Index) Buckets() int {
	return len(ix.buckets)
}

// Count returns how many times p has been inserted and not yet removed.
func (ix *Index) Count(p geometry.Point) int {
	if e, ok := ix.lookup[geometry.LookupKey(p)]; ok {
		return e.count
	}
	return 0
}

func (ix *Index) cellOf(x, y float64) cell {
	return cell{
		int64(math.Floor(x/ix.width + 0.5)),
		int64(math.Floor(y/ix.width + 0.5)),
	}
}

// Insert adds p. Inserting a point already present (at lookup precision) only
// bumps its reference count.
func (ix *Index) Insert(p geometry.Point) {
	key := geometry.LookupKey(p)
	if e, ok := ix.lookup[key]; ok {
		e.count++
		return
	}

	c := ix.cellOf(p.X, p.Y)
	b, ok := ix.buckets[c]
	if !ok {
		b = &bucket{}
		ix.buckets[c] = b
	}
	b.slots = append(b.slots, slot{p: p, live: true})
	ix.lookup[key] = &entry{count: 1, cell: c, slot: len(b.slots) - 1}
}

// Search returns copies of every stored point whose distance to q along each
// axis is at most radius. The test is a box, not a circle; callers wanting the
// Euclidean nearest point must post-filter.
func (ix *Index) Search(q geometry.Point, radius float64) []geometry.Point {
	half := ix.width / 2
	if radius > half {
		panic(fmt.Sprintf("spatial: search radius %v exceeds half the bucket width %v", radius, half))
	}

	home := ix.cellOf(q.X, q.Y)
	dx := q.X - float64(home[0])*ix.width
	dy := q.Y - float64(home[1])*ix.width

	// The home bucket plus any neighbour whose shared edge lies within
	// radius of q. Rounding halves up puts q at most w/2 below a cell
	// centre, so a zero offset leans toward the positive neighbour.
	cells := []cell{home}
	nx := math.Abs(dx)+radius >= half
	ny := math.Abs(dy)+radius >= half
	sx, sy := sign(dx), sign(dy)
	if nx {
		cells = append(cells, cell{home[0] + sx, home[1]})
		if ny {
			cells = append(cells, cell{home[0] + sx, home[1] + sy})
		}
	}
	if ny {
		cells = append(cells, cell{home[0], home[1] + sy})
	}

	var near []geometry.Point
	for _, c := range cells {
		b, ok := ix.buckets[c]
		if !ok {
			continue
		}
		for _, s := range b.slots {
			if s.live && math.Abs(s.p.X-q.X) <= radius && math.Abs(s.p.Y-q.Y) <= radius {
				near = append(near, s.p)
			}
		}
	}
	return near
}

func sign(d float64) int64 {
	if d < 0 {
		return -1
	}
	return 1
}

// Remove drops one reference to each given point. Points whose count reaches
// zero are cleared from their buckets, which are compacted once after the
// whole batch. Unknown points are ignored.
func (ix *Index) Remove(points ...geometry.Point) {
	var dirty []cell
	for _, p := range points {
		key := geometry.LookupKey(p)
		e, ok := ix.lookup[key]
		if !ok {
			continue
		}
		e.count--
		if e.count > 0 {
			continue
		}

		b := ix.buckets[e.cell]
		b.slots[e.slot].live = false
		if !b.dirty {
			b.dirty = true
			dirty = append(dirty, e.cell)
		}
		delete(ix.lookup, key)
	}

	for _, c := range dirty {
		ix.compact(c)
	}
}

func (ix *Index) compact(c cell) {
	b := ix.buckets[c]
	kept := b.slots[:0]
	for _, s := range b.slots {
		if !s.live {
			continue
		}
		ix.lookup[geometry.LookupKey(s.p)].slot = len(kept)
		kept = append(kept, s)
	}

	if len(kept) == 0 {
		delete(ix.buckets, c)
		return
	}
	clear(b.slots[len(kept):])
	b.slots = kept
	b.dirty = false
}
