package layers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/geometry"
)

func newManager(opts ...Option) *Manager {
	return New(append([]Option{WithIDGenerator(&Counter{})}, opts...)...)
}

func hline(y float64) *geometry.Line {
	return &geometry.Line{P1: geometry.Pt(0, y), P2: geometry.Pt(100, y)}
}

func vline(x float64) *geometry.Line {
	return &geometry.Line{P1: geometry.Pt(x, 0), P2: geometry.Pt(x, 100)}
}

// assertSnapConsistent recomputes the intersections of every pair of visible
// shapes and checks the registry holds exactly those points.
func assertSnapConsistent(t *testing.T, m *Manager) {
	t.Helper()

	visible := m.visible(nil)
	want := make(map[[2]int64]int)
	points := make(map[[2]int64]geometry.Point)
	for i := range visible {
		for j := 0; j < i; j++ {
			newer, older := visible[i], visible[j]
			if newer.seq < older.seq {
				newer, older = older, newer
			}
			pts, err := geometry.Intersect(newer.geom, older.geom)
			if err != nil {
				continue
			}
			for _, p := range pts {
				k := geometry.LookupKey(p)
				want[k]++
				points[k] = p
			}
		}
	}

	assert.Equal(t, len(want), m.SnapPointCount(), "distinct snap points")
	for k, n := range want {
		assert.Equal(t, n, m.snap.Count(points[k]), "references to %v", points[k])
	}
	assert.Equal(t, 0, m.snap.Pending(), "unflushed deletions")
}

func TestNewManager(t *testing.T) {
	m := newManager()

	assert.Equal(t, []LayerInfo{{ID: "l1", Name: "Layer 1", Visible: true}}, m.Layers())
	assert.Equal(t, "l1", m.CurrentLayer())
	assert.True(t, m.IsClean())
	assert.False(t, m.Undo())
}

func TestInsertShapeIndexesIntersections(t *testing.T) {
	m := newManager()

	id := m.InsertShape(hline(50), document.DefaultStyle)
	assert.Equal(t, "s1", id)
	assert.Equal(t, 0, m.SnapPointCount())

	m.InsertShape(vline(50), document.DefaultStyle)
	p, ok := m.NearestSnapPoint(geometry.Pt(52, 48))
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(50, 50), p)
	assert.False(t, m.IsClean())

	assertSnapConsistent(t, m)
}

func TestUndoRedoInsert(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(50), document.DefaultStyle)
	m.InsertShape(vline(50), document.DefaultStyle)

	name, _ := m.UndoName()
	assert.Equal(t, "Insert Shape", name)

	require.True(t, m.Undo())
	assert.Equal(t, 1, m.ShapeCount())
	assert.Equal(t, 0, m.SnapPointCount())

	require.True(t, m.Redo())
	assert.Equal(t, 2, m.ShapeCount())
	assertSnapConsistent(t, m)
}

func TestPasteIsOneStep(t *testing.T) {
	m := newManager()
	ids := m.PasteShapes([]geometry.Shape{hline(10), hline(20), vline(30)}, document.DefaultStyle)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)
	assertSnapConsistent(t, m)

	m.Undo()
	assert.Equal(t, 0, m.ShapeCount())
	assert.Equal(t, 0, m.SnapPointCount())
	assert.True(t, m.IsClean())
}

func TestDeleteShapesAndUndo(t *testing.T) {
	m := newManager()
	h := m.InsertShape(hline(50), document.DefaultStyle)
	v := m.InsertShape(vline(50), document.DefaultStyle)
	d := m.InsertShape(&geometry.Line{P1: geometry.Pt(0, 0), P2: geometry.Pt(100, 100)}, document.DefaultStyle)
	require.Equal(t, 3, m.snap.Count(geometry.Pt(50, 50)))

	m.DeleteShapes(v, d)
	assert.Equal(t, 1, m.ShapeCount())
	assert.Equal(t, 0, m.SnapPointCount())
	assertSnapConsistent(t, m)

	m.Undo()
	assert.True(t, m.HasShape(v))
	assert.True(t, m.HasShape(d))
	assertSnapConsistent(t, m)

	m.Redo()
	assert.False(t, m.HasShape(v))
	assert.True(t, m.HasShape(h))
	assertSnapConsistent(t, m)
}

func TestDeleteUnknownShapePanics(t *testing.T) {
	m := newManager()
	assert.Panics(t, func() { m.DeleteShapes("nope") })
}

func TestMoveShapes(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(50), document.DefaultStyle)
	v := m.InsertShape(vline(50), document.DefaultStyle)

	m.MoveShapes([]string{v}, 10, 0)
	assert.Equal(t, 0, m.snap.Count(geometry.Pt(50, 50)))
	p, ok := m.NearestSnapPoint(geometry.Pt(52, 50))
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(60, 50), p)
	assertSnapConsistent(t, m)

	m.Undo()
	g, _ := m.Shape(v)
	assert.Equal(t, vline(50), g)
	assertSnapConsistent(t, m)
}

func TestInsertLayerCascadesWithSwitch(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(50), document.DefaultStyle)

	l2 := m.InsertLayer("")
	assert.Equal(t, "l2", l2)
	assert.Equal(t, l2, m.CurrentLayer())
	assert.Equal(t, "Layer 2", m.Layers()[1].Name)

	m.SwitchToLayer("l1")
	assert.Equal(t, "l1", m.CurrentLayer())

	// Undoing the switch also undoes the layer insertion it follows.
	m.Undo()
	assert.Len(t, m.Layers(), 1)
	assert.Equal(t, "l1", m.CurrentLayer())
	assert.Equal(t, 1, m.ShapeCount())

	m.Redo()
	assert.Len(t, m.Layers(), 2)
	assert.Equal(t, "l1", m.CurrentLayer())
}

func TestShapesGoToCurrentLayer(t *testing.T) {
	m := newManager()
	m.InsertLayer("Top")
	id := m.InsertShape(hline(1), document.DefaultStyle)

	layer, ok := m.ShapeLayer(id)
	require.True(t, ok)
	assert.Equal(t, "l2", layer)
	assert.Equal(t, []LayerInfo{
		{ID: "l1", Name: "Layer 1", Visible: true},
		{ID: "l2", Name: "Top", Visible: true, Shapes: 1},
	}, m.Layers())
}

func TestDeleteCurrentLayer(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(50), document.DefaultStyle)
	m.InsertLayer("Top")
	a := m.InsertShape(vline(50), document.DefaultStyle)
	b := m.InsertShape(vline(70), document.DefaultStyle)
	require.Equal(t, 2, m.SnapPointCount())

	m.DeleteCurrentLayer()
	assert.Len(t, m.Layers(), 1)
	assert.Equal(t, "l1", m.CurrentLayer())
	assert.Equal(t, 0, m.SnapPointCount())

	m.Undo()
	assert.Len(t, m.Layers(), 2)
	assert.Equal(t, "l2", m.CurrentLayer())
	assertSnapConsistent(t, m)

	doc, err := m.Document()
	require.NoError(t, err)
	shapes := doc.Layers[1].Shapes
	require.Len(t, shapes, 2)
	assert.Equal(t, a, shapes[0].ID, "shapes come back in their original order")
	assert.Equal(t, b, shapes[1].ID)

	m.Redo()
	assert.Len(t, m.Layers(), 1)
	assert.Equal(t, "l1", m.CurrentLayer())
	assertSnapConsistent(t, m)
}

func TestDeleteBottomLayerMovesUp(t *testing.T) {
	m := newManager()
	m.InsertLayer("Top")
	m.SwitchToLayer("l1")

	m.DeleteCurrentLayer()
	assert.Equal(t, "l2", m.CurrentLayer())
}

func TestDeleteLastLayerPanics(t *testing.T) {
	m := newManager()
	assert.Panics(t, m.DeleteCurrentLayer)
}

func TestHideAndShowLayer(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(50), document.DefaultStyle)
	m.InsertShape(hline(60), document.DefaultStyle)
	m.InsertLayer("Top")
	m.InsertShape(vline(50), document.DefaultStyle)
	m.InsertShape(&geometry.Line{P1: geometry.Pt(0, 0), P2: geometry.Pt(100, 100)}, document.DefaultStyle)
	assertSnapConsistent(t, m)

	m.SetLayerVisibility("l2", false)
	assert.False(t, m.LayerVisible("l2"))
	assert.Equal(t, "l1", m.CurrentLayer(), "hiding the current layer moves off it")
	assert.Equal(t, 0, m.SnapPointCount())
	assert.Empty(t, m.PickShapes(geometry.Pt(50, 10), 2), "hidden shapes cannot be picked")

	m.SetLayerVisibility("l2", true)
	assert.True(t, m.LayerVisible("l2"))
	assertSnapConsistent(t, m)

	m.Undo() // show
	assert.False(t, m.LayerVisible("l2"))
	assertSnapConsistent(t, m)

	m.Undo() // hide, with its layer switch
	assert.True(t, m.LayerVisible("l2"))
	assert.Equal(t, "l2", m.CurrentLayer())
	assertSnapConsistent(t, m)
}

func TestHiddenLayerRules(t *testing.T) {
	m := newManager()
	m.InsertLayer("Top")
	m.SetLayerVisibility("l1", false)
	assert.Equal(t, 1, m.HiddenLayerCount())

	assert.Panics(t, func() { m.SetLayerVisibility("l2", false) }, "last visible layer")
	assert.Panics(t, func() { m.SwitchToLayer("l1") }, "hidden layer")
	assert.Panics(t, m.DeleteCurrentLayer, "only visible layer")
	assert.Panics(t, func() { m.SwitchToLayer("l9") }, "unknown layer")
}

func TestShapesInRect(t *testing.T) {
	m := newManager()
	inside := m.InsertShape(&geometry.Circle{Center: geometry.Pt(50, 50), Radius: 5}, document.DefaultStyle)
	crossing := m.InsertShape(hline(30), document.DefaultStyle)
	m.InsertShape(hline(90), document.DefaultStyle)

	got := m.ShapesInRect(geometry.Rect{Left: 80, Top: 80, Right: 20, Bottom: 20})
	assert.Equal(t, []string{inside, crossing}, got)

	assert.Equal(t, []string{crossing}, m.PickShapes(geometry.Pt(10, 31), 3))
	assert.Equal(t, 0, m.SnapPointCount(), "queries leave the snap points alone")
}

func TestTangentPoints(t *testing.T) {
	m := newManager()
	m.InsertShape(&geometry.Circle{Center: geometry.Pt(0, 0), Radius: 5}, document.DefaultStyle)
	m.InsertShape(hline(50), document.DefaultStyle)

	assert.Len(t, m.TangentPoints(geometry.Pt(10, 0)), 2)
	assert.Empty(t, m.TangentPoints(geometry.Pt(1, 0)))
}

func TestSetZoom(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(50), document.DefaultStyle)
	m.InsertShape(vline(50), document.DefaultStyle)

	_, ok := m.NearestSnapPoint(geometry.Pt(50, 65))
	assert.True(t, ok)

	m.SetZoom(2)
	_, ok = m.NearestSnapPoint(geometry.Pt(50, 65))
	assert.False(t, ok)
}

func TestDocumentRoundTrip(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(50), document.DefaultStyle)
	m.InsertLayer("Top")
	m.InsertShape(vline(50), document.DefaultStyle)
	m.InsertShape(geometry.NewEllipse(geometry.Pt(50, 50), 30, 10, 0), document.DefaultStyle)
	m.InsertLayer("Hidden")
	m.InsertShape(vline(10), document.DefaultStyle)
	m.SetLayerVisibility("l3", false)

	doc, err := m.Document()
	require.NoError(t, err)
	doc.ID, doc.Name = "drw_1", "Test"
	require.NoError(t, doc.Validate())

	loaded := newManager()
	require.NoError(t, loaded.Load(doc))
	assert.Equal(t, m.Layers(), loaded.Layers())
	assert.Equal(t, m.CurrentLayer(), loaded.CurrentLayer())
	assert.Equal(t, m.SnapPointCount(), loaded.SnapPointCount())
	assertSnapConsistent(t, loaded)

	assert.True(t, loaded.IsClean())
	assert.False(t, loaded.Undo(), "loading is not undoable")
}

// restartingIDs is a generator that knows nothing about loaded drawings.
type restartingIDs struct{ shapes, layers int }

func (g *restartingIDs) NewShapeID() string {
	g.shapes++
	return fmt.Sprintf("s%d", g.shapes)
}

func (g *restartingIDs) NewLayerID() string {
	g.layers++
	return fmt.Sprintf("l%d", g.layers)
}

func TestLoadedIDsAreNotReused(t *testing.T) {
	saved := newManager()
	saved.InsertShape(hline(50), document.DefaultStyle)
	saved.InsertShape(vline(50), document.DefaultStyle)
	saved.InsertLayer("Top")
	doc, err := saved.Document()
	require.NoError(t, err)
	doc.ID, doc.Name = "drw_1", "Test"

	tests := []struct {
		name string
		ids  IDGenerator
	}{
		{"counter", &Counter{}},
		{"generator without reserve", &restartingIDs{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(WithIDGenerator(tt.ids))
			require.NoError(t, m.Load(doc))

			id := m.InsertShape(hline(10), document.DefaultStyle)
			assert.Equal(t, "s3", id)
			assert.Equal(t, "l3", m.InsertLayer(""))
			assert.Equal(t, 3, m.ShapeCount())

			m.DeleteShapes(id)
			assert.Equal(t, "s4", m.InsertShape(hline(20), document.DefaultStyle))
		})
	}
}

func TestSnapPointsReleasedAfterChurn(t *testing.T) {
	m := newManager()
	var ids []string
	for i := range 4 {
		f := float64(i)
		ids = append(ids,
			m.InsertShape(&geometry.Line{P1: geometry.Pt(3.7*f, 0.3), P2: geometry.Pt(100-1.3*f, 97.1+f)}, document.DefaultStyle),
			m.InsertShape(&geometry.Circle{Center: geometry.Pt(45+f*2.3, 52+f*1.9), Radius: 17 + f*0.7}, document.DefaultStyle),
		)
	}
	require.Greater(t, m.SnapPointCount(), 0)
	assertSnapConsistent(t, m)

	m.MoveShapes([]string{ids[0], ids[3]}, 1.3, -0.7)
	assertSnapConsistent(t, m)
	m.InsertLayer("Top")
	m.InsertShape(&geometry.CircleArc{Circle: geometry.Circle{Center: geometry.Pt(48, 47), Radius: 21.3}, StartAngle: 0.4, DeltaAngle: 4.1}, document.DefaultStyle)
	m.SetLayerVisibility("l1", false)
	m.SetLayerVisibility("l1", true)
	assertSnapConsistent(t, m)

	// The oldest shapes leave first, while their newer partners stay.
	m.DeleteShapes(ids[:4]...)
	m.Undo()
	m.DeleteCurrentLayer()
	m.DeleteShapes(ids...)
	assert.Equal(t, 0, m.ShapeCount())
	assert.Equal(t, 0, m.SnapPointCount())
	assert.Equal(t, 0, m.snap.Pending())
}

func TestCounterReserve(t *testing.T) {
	c := &Counter{}
	for _, id := range []string{"s7", "l2", "s3", "shape_01h", "l", "x9", "s-1"} {
		c.Reserve(id)
	}
	assert.Equal(t, "s8", c.NewShapeID())
	assert.Equal(t, "l3", c.NewLayerID())
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(1), document.DefaultStyle)

	err := m.Load(&document.Document{})
	assert.ErrorIs(t, err, document.ErrInvalidDocument)
	assert.Equal(t, 1, m.ShapeCount(), "state is kept on failure")
}

func TestMarkClean(t *testing.T) {
	m := newManager()
	m.InsertShape(hline(1), document.DefaultStyle)
	m.MarkClean()
	assert.True(t, m.IsClean())

	m.InsertShape(hline(2), document.DefaultStyle)
	assert.False(t, m.IsClean())
	m.Undo()
	assert.True(t, m.IsClean())
}

func TestHistorySize(t *testing.T) {
	m := newManager(WithHistorySize(2))
	for i := 0; i < 4; i++ {
		m.InsertShape(hline(float64(i)), document.DefaultStyle)
	}
	for m.Undo() {
	}
	assert.Equal(t, 2, m.ShapeCount())
}
