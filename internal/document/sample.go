package document

import (
	"math"
	"time"

	"github.com/alberti/alberti/backend-go/internal/geometry"
	"github.com/alberti/alberti/backend-go/internal/typeid"
)

// NewSampleDocument returns a small two-layer drawing whose shapes cross each
// other, used to seed new drawings in development.
func NewSampleDocument(drawingID string) *Document {
	now := time.Now().UTC().Format(time.RFC3339)

	constructionID := typeid.NewLayerID()
	outlineID := typeid.NewLayerID()

	guide := DefaultStyle
	guide.Stroke = "#8888ff"
	guide.Opacity = 0.6

	construction := []geometry.Shape{
		&geometry.Line{P1: geometry.Pt(0, 200), P2: geometry.Pt(600, 200)},
		&geometry.Line{P1: geometry.Pt(300, 0), P2: geometry.Pt(300, 400)},
	}
	outline := []geometry.Shape{
		&geometry.Circle{Center: geometry.Pt(300, 200), Radius: 120},
		geometry.NewEllipse(geometry.Pt(300, 200), 220, 90, 0),
		&geometry.CircleArc{
			Circle:     geometry.Circle{Center: geometry.Pt(420, 200), Radius: 80},
			StartAngle: math.Pi / 2,
			DeltaAngle: math.Pi,
		},
		&geometry.Bezier{P1: geometry.Pt(100, 350), P2: geometry.Pt(300, 50), P3: geometry.Pt(500, 350)},
		&geometry.Rect{Left: 150, Top: 120, Right: 450, Bottom: 280},
	}

	return &Document{
		ID:           drawingID,
		Name:         "Untitled",
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
		CurrentLayer: outlineID,
		Layers: []Layer{
			{ID: constructionID, Name: "Construction", Visible: true, Shapes: sampleNodes(construction, guide)},
			{ID: outlineID, Name: "Outline", Visible: true, Shapes: sampleNodes(outline, DefaultStyle)},
		},
	}
}

func sampleNodes(shapes []geometry.Shape, style Style) []ShapeNode {
	nodes := make([]ShapeNode, 0, len(shapes))
	for _, s := range shapes {
		n, err := EncodeShape(typeid.NewShapeID(), s, style)
		if err != nil {
			panic(err)
		}
		nodes = append(nodes, n)
	}
	return nodes
}
