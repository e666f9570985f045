// Package layers owns the shapes of an open drawing. It keeps the snap point
// registry in step with the visible shapes and records every mutation in the
// undo history.
package layers

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/geometry"
	"github.com/alberti/alberti/backend-go/internal/history"
	"github.com/alberti/alberti/backend-go/internal/snap"
	"github.com/alberti/alberti/backend-go/internal/typeid"
)

type layer struct {
	id     string
	name   string
	hidden bool
	shapes []*shape
}

type shape struct {
	id    string
	geom  geometry.Shape
	style document.Style
	layer *layer
	seq   uint64 // order of entry into the drawing
}

// LayerInfo describes a layer for listings.
type LayerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Shapes  int    `json:"shapes"`
}

// Manager is the editing model of one drawing. Preconditions (unknown or
// duplicate IDs, hiding or deleting the last usable layer) are programming
// errors and panic; callers validate input first. A Manager is not safe for
// concurrent use.
type Manager struct {
	layers  []*layer
	current *layer
	hidden  int

	shapes map[string]*shape
	byGeom map[geometry.Shape]*shape
	seq    uint64

	snap *snap.Registry
	log  *history.Log
	ids  IDGenerator
	opts options
}

// New returns a manager holding one empty layer, with recording enabled and
// the history marked clean.
func New(opts ...Option) *Manager {
	o := options{
		historySize: 100,
		snapRadius:  20,
		minZoom:     0.2,
		ids:         typeid.Generator{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		log:  history.New(o.historySize),
		ids:  o.ids,
		opts: o,
	}
	m.reset()

	l := &layer{id: m.ids.NewLayerID(), name: "Layer 1"}
	m.attachLayer(l, 0)
	m.current = l

	m.log.Enable()
	m.log.SetCleanState()
	return m
}

func (m *Manager) reset() {
	m.layers = nil
	m.current = nil
	m.hidden = 0
	m.shapes = make(map[string]*shape)
	m.byGeom = make(map[geometry.Shape]*shape)
	m.snap = snap.New(m.opts.snapRadius, m.opts.minZoom)
}

// Load replaces the manager's contents with doc. Loading is not undoable:
// the history is cleared and marked clean.
func (m *Manager) Load(doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	m.log.Disable()
	defer m.log.Enable()

	m.reset()
	r, reserve := m.ids.(reserver)
	for i, dl := range doc.Layers {
		l := &layer{id: dl.ID, name: dl.Name, hidden: !dl.Visible}
		if reserve {
			r.Reserve(l.id)
		}
		m.attachLayer(l, i)
		if l.hidden {
			m.hidden++
		}
		if l.id == doc.CurrentLayer {
			m.current = l
		}

		for _, n := range dl.Shapes {
			g, err := document.DecodeShape(n)
			if err != nil {
				return fmt.Errorf("load shape %s: %w", n.ID, err)
			}
			if reserve {
				r.Reserve(n.ID)
			}
			m.insertShape(&shape{id: n.ID, geom: g, style: n.Style}, l)
		}
	}

	m.log.Clear()
	m.log.SetCleanState()
	slog.Debug("load document", "layers", len(m.layers), "shapes", len(m.shapes), "snapPoints", m.snap.Len())
	return nil
}

// Document returns the drawing's current contents. Identity fields (ID,
// name, timestamps) are left for the caller to fill in.
func (m *Manager) Document() (*document.Document, error) {
	doc := &document.Document{
		Version:      1,
		CurrentLayer: m.current.id,
		Layers:       make([]document.Layer, 0, len(m.layers)),
	}
	for _, l := range m.layers {
		dl := document.Layer{ID: l.id, Name: l.name, Visible: !l.hidden, Shapes: make([]document.ShapeNode, 0, len(l.shapes))}
		for _, s := range l.shapes {
			n, err := document.EncodeShape(s.id, s.geom, s.style)
			if err != nil {
				return nil, fmt.Errorf("encode shape %s: %w", s.id, err)
			}
			dl.Shapes = append(dl.Shapes, n)
		}
		doc.Layers = append(doc.Layers, dl)
	}
	return doc, nil
}

// visible lists the shapes of visible layers, bottom layer first and in
// insertion order within a layer, skipping any layer in except.
func (m *Manager) visible(except *layer) []*shape {
	var out []*shape
	for _, l := range m.layers {
		if l.hidden || l == except {
			continue
		}
		out = append(out, l.shapes...)
	}
	return out
}

func (m *Manager) visibleShapes(except *layer) []geometry.Shape {
	return geoms(m.visible(except))
}

// testPairs runs the snap test between s and each of others with the newer
// shape of every pair as the query. A pair is then removed with the same
// argument order it was inserted with, and yields bit-identical points.
func (m *Manager) testPairs(s *shape, others []*shape, action snap.Action) {
	var older []geometry.Shape
	for _, o := range others {
		if o.seq < s.seq {
			older = append(older, o.geom)
			continue
		}
		m.snap.TestIntersections(o.geom, []geometry.Shape{s.geom}, action)
	}
	m.snap.TestIntersections(s.geom, older, action)
}

func geoms(shapes []*shape) []geometry.Shape {
	out := make([]geometry.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.geom
	}
	return out
}

// newShapeID draws IDs until one is unused, so a generator that restarts
// from scratch never collides with a loaded drawing.
func (m *Manager) newShapeID() string {
	for {
		if id := m.ids.NewShapeID(); !m.idTaken(id) {
			return id
		}
	}
}

func (m *Manager) newLayerID() string {
	for {
		if id := m.ids.NewLayerID(); !m.idTaken(id) {
			return id
		}
	}
}

// idTaken reports whether id names a shape or a layer. The two share one
// namespace in saved documents.
func (m *Manager) idTaken(id string) bool {
	if _, ok := m.shapes[id]; ok {
		return true
	}
	return m.HasLayer(id)
}

func (m *Manager) mustShape(id string) *shape {
	s, ok := m.shapes[id]
	if !ok {
		panic(fmt.Sprintf("layers: unknown shape %q", id))
	}
	return s
}

func (m *Manager) mustLayer(id string) *layer {
	for _, l := range m.layers {
		if l.id == id {
			return l
		}
	}
	panic(fmt.Sprintf("layers: unknown layer %q", id))
}

func (m *Manager) layerIndex(l *layer) int {
	return slices.Index(m.layers, l)
}

// insertShape appends s to l and, when l is visible, indexes its
// intersections with every other visible shape. s is tested before it joins
// the layer so it never meets itself. s becomes the newest shape, so it is
// the query of all its pairs.
func (m *Manager) insertShape(s *shape, l *layer) {
	if _, dup := m.shapes[s.id]; dup {
		panic(fmt.Sprintf("layers: duplicate shape %q", s.id))
	}

	m.seq++
	s.seq = m.seq
	if !l.hidden {
		m.snap.TestIntersections(s.geom, m.visibleShapes(nil), snap.Insert)
	}
	s.layer = l
	l.shapes = append(l.shapes, s)
	m.shapes[s.id] = s
	m.byGeom[s.geom] = s
}

// deleteShape detaches s and drops its intersections. With bulk set the
// points are only queued, and the caller must flush the registry.
func (m *Manager) deleteShape(s *shape, bulk bool) {
	if m.shapes[s.id] != s {
		panic(fmt.Sprintf("layers: unknown shape %q", s.id))
	}

	l := s.layer
	if i := slices.Index(l.shapes, s); i >= 0 {
		l.shapes = slices.Delete(l.shapes, i, i+1)
	}
	delete(m.shapes, s.id)
	delete(m.byGeom, s.geom)

	if !l.hidden {
		action := snap.Delete
		if bulk {
			action = snap.BulkDelete
		}
		m.testPairs(s, m.visible(nil), action)
	}
}

// reshape swaps the geometry of s in place, keeping its layer position.
func (m *Manager) reshape(s *shape, g geometry.Shape) {
	visible := !s.layer.hidden
	var others []*shape
	if visible {
		others = slices.DeleteFunc(m.visible(nil), func(o *shape) bool { return o == s })
		m.testPairs(s, others, snap.Delete)
	}

	delete(m.byGeom, s.geom)
	s.geom = g
	m.byGeom[g] = s

	if visible {
		m.testPairs(s, others, snap.Insert)
	}
}

func (m *Manager) attachLayer(l *layer, at int) {
	m.layers = slices.Insert(m.layers, at, l)
}

func (m *Manager) detachLayer(l *layer) {
	if i := m.layerIndex(l); i >= 0 {
		m.layers = slices.Delete(m.layers, i, i+1)
	}
}

// showLayer indexes the intersections of l's shapes with all visible shapes,
// counting each pair once.
func (m *Manager) showLayer(l *layer) {
	if !l.hidden {
		return
	}
	others := m.visible(l)
	for i, s := range l.shapes {
		m.testPairs(s, slices.Concat(others, l.shapes[:i]), snap.Insert)
	}
	l.hidden = false
	m.hidden--
}

// hideLayer is the inverse of showLayer.
func (m *Manager) hideLayer(l *layer) {
	if l.hidden {
		return
	}
	others := m.visible(l)
	for i, s := range l.shapes {
		m.testPairs(s, slices.Concat(others, l.shapes[i+1:]), snap.BulkDelete)
	}
	m.snap.Flush()
	l.hidden = true
	m.hidden++
}

// nearestVisible returns the closest visible layer to l other than l itself,
// searching upward first when up is set and downward otherwise, then the
// other way.
func (m *Manager) nearestVisible(l *layer, up bool) *layer {
	i := m.layerIndex(l)
	above := func() *layer {
		for j := i + 1; j < len(m.layers); j++ {
			if !m.layers[j].hidden {
				return m.layers[j]
			}
		}
		return nil
	}
	below := func() *layer {
		for j := i - 1; j >= 0; j-- {
			if !m.layers[j].hidden {
				return m.layers[j]
			}
		}
		return nil
	}

	first, second := below, above
	if up {
		first, second = above, below
	}
	if n := first(); n != nil {
		return n
	}
	return second()
}
