package layers

import (
	"fmt"

	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/geometry"
	"github.com/alberti/alberti/backend-go/internal/history"
	"github.com/alberti/alberti/backend-go/internal/snap"
)

// InsertShape adds g to the current layer and returns its new ID.
func (m *Manager) InsertShape(g geometry.Shape, style document.Style) string {
	return m.insertRecorded(g, style, m.current)
}

func (m *Manager) insertRecorded(g geometry.Shape, style document.Style, l *layer) string {
	if _, taken := m.byGeom[g]; taken {
		panic("layers: shape descriptor inserted twice")
	}
	s := &shape{id: m.newShapeID(), geom: g, style: style}

	m.log.Push(history.Action{
		Name: "Insert Shape",
		Redo: func() { m.insertShape(s, l) },
		Undo: func() { m.deleteShape(s, false) },
	})
	m.insertShape(s, l)
	return s.id
}

// PasteShapes inserts several shapes into the current layer as one undoable
// step. A single style applies to every shape; otherwise styles pair up
// with gs, and missing ones fall back to document.DefaultStyle.
func (m *Manager) PasteShapes(gs []geometry.Shape, styles ...document.Style) []string {
	ids := make([]string, 0, len(gs))
	m.log.RecordStart()
	defer m.log.RecordStop()

	for i, g := range gs {
		style := document.DefaultStyle
		switch {
		case len(styles) == 1:
			style = styles[0]
		case i < len(styles):
			style = styles[i]
		}
		ids = append(ids, m.insertRecorded(g, style, m.current))
	}
	return ids
}

// DeleteShapes removes the given shapes as one undoable step. Their
// intersection points are removed in a single batch.
func (m *Manager) DeleteShapes(ids ...string) {
	targets := make([]*shape, len(ids))
	for i, id := range ids {
		targets[i] = m.mustShape(id)
	}

	m.log.RecordStart()
	defer m.log.RecordStop()
	m.deleteBulk(targets)
}

func (m *Manager) deleteBulk(targets []*shape) {
	for _, s := range targets {
		l := s.layer
		m.log.Push(history.Action{
			Name: "Delete Shape",
			Redo: func() { m.deleteShape(s, true) },
			Undo: func() { m.insertShape(s, l) },
		})
		m.deleteShape(s, true)
	}

	m.log.Push(history.Action{
		Name: "Flush Intersections",
		Redo: m.snap.Flush,
	})
	m.snap.Flush()
}

// MoveShapes translates the given shapes by (dx, dy) as one undoable step.
func (m *Manager) MoveShapes(ids []string, dx, dy float64) {
	targets := make([]*shape, len(ids))
	for i, id := range ids {
		targets[i] = m.mustShape(id)
	}

	m.log.RecordStart()
	defer m.log.RecordStop()

	for _, s := range targets {
		from := s.geom
		to := geometry.Translated(from, dx, dy)
		m.log.Push(history.Action{
			Name: "Move Shape",
			Redo: func() { m.reshape(s, to) },
			Undo: func() { m.reshape(s, from) },
		})
		m.reshape(s, to)
	}
}

// InsertLayer adds an empty layer above the current one and makes it
// current. An empty name gets a numbered default.
func (m *Manager) InsertLayer(name string) string {
	if name == "" {
		name = fmt.Sprintf("Layer %d", len(m.layers)+1)
	}
	l := &layer{id: m.newLayerID(), name: name}
	at := m.layerIndex(m.current) + 1

	m.log.RecordStart()
	defer m.log.RecordStop()

	m.attachLayer(l, at)
	m.switchTo(l)
	m.log.Push(history.Action{
		Name: "Insert Layer",
		Redo: func() { m.attachLayer(l, at) },
		Undo: func() { m.detachLayer(l) },
	})
	return l.id
}

// DeleteCurrentLayer deletes the current layer and its shapes, then makes the
// nearest visible layer below (or else above) current. The only layer, or
// the only visible one, cannot be deleted.
func (m *Manager) DeleteCurrentLayer() {
	target := m.current
	if len(m.layers) < 2 {
		panic("layers: cannot delete the only layer")
	}
	next := m.nearestVisible(target, false)
	if next == nil {
		panic("layers: cannot delete the only visible layer")
	}
	at := m.layerIndex(target)

	m.log.RecordStart()
	defer m.log.RecordStop()

	// Newest first, so undo re-inserts in the original order.
	doomed := make([]*shape, len(target.shapes))
	for i, s := range target.shapes {
		doomed[len(doomed)-1-i] = s
	}
	m.deleteBulk(doomed)

	m.switchTo(next)
	m.log.Push(history.Action{
		Name: "Delete Current Layer",
		Redo: func() { m.detachLayer(target) },
		Undo: func() { m.attachLayer(target, at) },
	})
	m.detachLayer(target)
}

// SwitchToLayer makes the layer with the given ID current. Hidden layers
// cannot be current.
func (m *Manager) SwitchToLayer(id string) {
	m.switchTo(m.mustLayer(id))
}

// switchTo records a cascading layer change, so a run of switches (and the
// switch that follows inserting a layer) undoes as one step.
func (m *Manager) switchTo(l *layer) {
	if l == m.current {
		return
	}
	if l.hidden {
		panic(fmt.Sprintf("layers: cannot switch to hidden layer %q", l.id))
	}

	prev := m.current
	m.log.Push(history.Action{
		Name:     "Change Current Layer",
		Redo:     func() { m.current = l },
		Undo:     func() { m.current = prev },
		Cascades: true,
	})
	m.current = l
}

// SetLayerVisibility shows or hides a layer. Hiding the current layer makes
// the nearest visible layer above (or else below) current. At least one
// layer stays visible.
func (m *Manager) SetLayerVisibility(id string, visible bool) {
	l := m.mustLayer(id)

	if visible {
		if !l.hidden {
			return
		}
		m.showLayer(l)
		m.log.Push(history.Action{
			Name: "Show Layer",
			Redo: func() { m.showLayer(l) },
			Undo: func() { m.hideLayer(l) },
		})
		return
	}

	if l.hidden {
		return
	}
	if len(m.layers)-m.hidden < 2 {
		panic("layers: cannot hide the only visible layer")
	}

	m.hideLayer(l)

	m.log.RecordStart()
	defer m.log.RecordStop()

	if l == m.current {
		m.switchTo(m.nearestVisible(l, true))
	}
	m.log.Push(history.Action{
		Name: "Hide Layer",
		Redo: func() { m.hideLayer(l) },
		Undo: func() { m.showLayer(l) },
	})
}

// ShapesInRect returns the IDs of visible shapes strictly enclosed by r,
// followed by those crossing its edges.
func (m *Manager) ShapesInRect(r geometry.Rect) []string {
	r = r.Normalized()
	visible := m.visibleShapes(nil)

	var ids []string
	for _, g := range visible {
		if r.Encloses(g.Bounds()) {
			ids = append(ids, m.byGeom[g].id)
		}
	}

	crossing, _ := m.snap.TestIntersections(&r, visible, snap.Nop)
	for _, g := range crossing {
		ids = append(ids, m.byGeom[g].id)
	}
	return ids
}

// PickShapes returns the shapes within radius of p.
func (m *Manager) PickShapes(p geometry.Point, radius float64) []string {
	return m.ShapesInRect(geometry.RectAround(p, radius))
}

// NearestSnapPoint returns the intersection point closest to p within the
// current snap radius.
func (m *Manager) NearestSnapPoint(p geometry.Point) (geometry.Point, bool) {
	return m.snap.NearestNeighbor(p)
}

// NearestSnapPointExcluding is NearestSnapPoint ignoring exclude.
func (m *Manager) NearestSnapPointExcluding(p, exclude geometry.Point) (geometry.Point, bool) {
	return m.snap.NearestNeighborExcluding(p, exclude)
}

// TangentPoints returns the points on visible curves where a line through p
// would touch them.
func (m *Manager) TangentPoints(p geometry.Point) []geometry.Point {
	_, pts := m.snap.TestTangencies(&geometry.PointShape{At: p}, m.visibleShapes(nil), snap.Nop)
	return pts
}

// SetZoom keeps the on-screen snap distance constant at the given zoom.
func (m *Manager) SetZoom(zoom float64) {
	m.snap.SetSearchRadiusScale(zoom)
}

// Undo reverses the last step. It reports false when there is nothing to
// undo.
func (m *Manager) Undo() bool { return m.log.Undo() }

// Redo replays the last undone step.
func (m *Manager) Redo() bool { return m.log.Redo() }

// UndoName returns the label of the step Undo would reverse.
func (m *Manager) UndoName() (string, bool) { return m.log.UndoName() }

// RedoName returns the label of the step Redo would replay.
func (m *Manager) RedoName() (string, bool) { return m.log.RedoName() }

// IsClean reports whether the drawing matches its last saved state.
func (m *Manager) IsClean() bool { return m.log.IsClean() }

// MarkClean records the current state as saved.
func (m *Manager) MarkClean() { m.log.SetCleanState() }

// Shape returns the descriptor of a shape.
func (m *Manager) Shape(id string) (geometry.Shape, bool) {
	s, ok := m.shapes[id]
	if !ok {
		return nil, false
	}
	return s.geom, true
}

// ShapeLayer returns the ID of the layer holding a shape.
func (m *Manager) ShapeLayer(id string) (string, bool) {
	s, ok := m.shapes[id]
	if !ok {
		return "", false
	}
	return s.layer.id, true
}

// HasShape reports whether a shape with the given ID exists.
func (m *Manager) HasShape(id string) bool {
	_, ok := m.shapes[id]
	return ok
}

// HasLayer reports whether a layer with the given ID exists.
func (m *Manager) HasLayer(id string) bool {
	for _, l := range m.layers {
		if l.id == id {
			return true
		}
	}
	return false
}

// LayerVisible reports whether a layer exists and is shown.
func (m *Manager) LayerVisible(id string) bool {
	for _, l := range m.layers {
		if l.id == id {
			return !l.hidden
		}
	}
	return false
}

// Layers lists the layers bottom first.
func (m *Manager) Layers() []LayerInfo {
	out := make([]LayerInfo, len(m.layers))
	for i, l := range m.layers {
		out[i] = LayerInfo{ID: l.id, Name: l.name, Visible: !l.hidden, Shapes: len(l.shapes)}
	}
	return out
}

// CurrentLayer returns the current layer's ID.
func (m *Manager) CurrentLayer() string { return m.current.id }

// ShapeCount returns the number of shapes on all layers.
func (m *Manager) ShapeCount() int { return len(m.shapes) }

// SnapPointCount returns the number of distinct snap points.
func (m *Manager) SnapPointCount() int { return m.snap.Len() }

// HiddenLayerCount returns the number of hidden layers.
func (m *Manager) HiddenLayerCount() int { return m.hidden }
