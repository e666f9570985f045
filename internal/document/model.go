package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownShapeType = errors.New("unknown shape type")
	ErrInvalidDocument  = errors.New("invalid document")
)

// Document is the persisted form of a drawing: an ordered stack of layers,
// bottom first, each holding its shapes in insertion order.
type Document struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Version      int     `json:"version"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
	CurrentLayer string  `json:"currentLayer"`
	Layers       []Layer `json:"layers"`
}

type Layer struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Visible bool        `json:"visible"`
	Shapes  []ShapeNode `json:"shapes"`
}

type ShapeType string

const (
	ShapeTypeBezier        ShapeType = "bezier"
	ShapeTypeCircleArc     ShapeType = "carc"
	ShapeTypeCircle        ShapeType = "circle"
	ShapeTypeEllipticalArc ShapeType = "earc"
	ShapeTypeEllipse       ShapeType = "ellipse"
	ShapeTypeLine          ShapeType = "line"
	ShapeTypePoint         ShapeType = "point"
	ShapeTypeRect          ShapeType = "rect"
)

type Style struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// DefaultStyle is applied to shapes created without one.
var DefaultStyle = Style{Stroke: "#000000", StrokeWidth: 1, Opacity: 1}

type ShapeNode struct {
	ID    string          `json:"id"`
	Type  ShapeType       `json:"type"`
	Style Style           `json:"style"`
	Data  json.RawMessage `json:"data"`
}

// NewEmptyDocument creates a document with a single visible layer.
func NewEmptyDocument(drawingID, name, layerID string) *Document {
	return &Document{
		ID:           drawingID,
		Name:         name,
		Version:      1,
		CreatedAt:    "", // Will be set by caller
		UpdatedAt:    "",
		CurrentLayer: layerID,
		Layers: []Layer{
			{ID: layerID, Name: "Layer 1", Visible: true, Shapes: []ShapeNode{}},
		},
	}
}

// Validate checks the structural rules a layer manager relies on: at least
// one layer, at least one of them visible, a visible current layer, unique
// IDs and decodable shapes.
func (d *Document) Validate() error {
	if len(d.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidDocument)
	}

	seen := make(map[string]bool)
	visible := 0
	current := false
	for _, l := range d.Layers {
		if l.ID == "" || seen[l.ID] {
			return fmt.Errorf("%w: missing or duplicate layer id %q", ErrInvalidDocument, l.ID)
		}
		seen[l.ID] = true
		if l.Visible {
			visible++
		}
		if l.ID == d.CurrentLayer {
			if !l.Visible {
				return fmt.Errorf("%w: current layer %q is hidden", ErrInvalidDocument, l.ID)
			}
			current = true
		}

		for _, n := range l.Shapes {
			if n.ID == "" || seen[n.ID] {
				return fmt.Errorf("%w: missing or duplicate shape id %q", ErrInvalidDocument, n.ID)
			}
			seen[n.ID] = true
			if _, err := DecodeShape(n); err != nil {
				return fmt.Errorf("%w: shape %q: %w", ErrInvalidDocument, n.ID, err)
			}
		}
	}

	if visible == 0 {
		return fmt.Errorf("%w: no visible layer", ErrInvalidDocument)
	}
	if !current {
		return fmt.Errorf("%w: unknown current layer %q", ErrInvalidDocument, d.CurrentLayer)
	}
	return nil
}

// ShapeCount returns the number of shapes on all layers.
func (d *Document) ShapeCount() int {
	n := 0
	for _, l := range d.Layers {
		n += len(l.Shapes)
	}
	return n
}
