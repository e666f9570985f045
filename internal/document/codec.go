package document

import (
	"encoding/json"
	"fmt"

	"github.com/alberti/alberti/backend-go/internal/geometry"
)

type lineData struct {
	P1 geometry.Point `json:"p1"`
	P2 geometry.Point `json:"p2"`
}

type circleData struct {
	Center geometry.Point `json:"center"`
	Radius float64        `json:"radius"`
}

type arcData struct {
	Center     geometry.Point `json:"center"`
	Radius     float64        `json:"radius"`
	StartAngle float64        `json:"startAngle"`
	DeltaAngle float64        `json:"deltaAngle"`
}

// ellipseData carries no conic coefficients; they are recomputed on decode.
type ellipseData struct {
	Center     geometry.Point `json:"center"`
	RX         float64        `json:"rx"`
	RY         float64        `json:"ry"`
	XRot       float64        `json:"xRot"`
	StartAngle float64        `json:"startAngle,omitempty"`
	DeltaAngle float64        `json:"deltaAngle,omitempty"`
}

type bezierData struct {
	P1 geometry.Point `json:"p1"`
	P2 geometry.Point `json:"p2"`
	P3 geometry.Point `json:"p3"`
}

type pointData struct {
	At geometry.Point `json:"at"`
}

// DecodeShape builds the geometry descriptor for a stored shape.
func DecodeShape(n ShapeNode) (geometry.Shape, error) {
	var (
		s   geometry.Shape
		err error
	)

	switch n.Type {
	case ShapeTypeLine:
		var d lineData
		err = json.Unmarshal(n.Data, &d)
		s = &geometry.Line{P1: d.P1, P2: d.P2}
	case ShapeTypeCircle:
		var d circleData
		err = json.Unmarshal(n.Data, &d)
		s = &geometry.Circle{Center: d.Center, Radius: d.Radius}
	case ShapeTypeCircleArc:
		var d arcData
		err = json.Unmarshal(n.Data, &d)
		s = &geometry.CircleArc{
			Circle:     geometry.Circle{Center: d.Center, Radius: d.Radius},
			StartAngle: d.StartAngle,
			DeltaAngle: d.DeltaAngle,
		}
	case ShapeTypeEllipse:
		var d ellipseData
		err = json.Unmarshal(n.Data, &d)
		s = geometry.NewEllipse(d.Center, d.RX, d.RY, d.XRot)
	case ShapeTypeEllipticalArc:
		var d ellipseData
		err = json.Unmarshal(n.Data, &d)
		s = geometry.NewEllipticalArc(d.Center, d.RX, d.RY, d.XRot, d.StartAngle, d.DeltaAngle)
	case ShapeTypeBezier:
		var d bezierData
		err = json.Unmarshal(n.Data, &d)
		s = &geometry.Bezier{P1: d.P1, P2: d.P2, P3: d.P3}
	case ShapeTypeRect:
		var r geometry.Rect
		err = json.Unmarshal(n.Data, &r)
		s = &r
	case ShapeTypePoint:
		var d pointData
		err = json.Unmarshal(n.Data, &d)
		s = &geometry.PointShape{At: d.At}
	default:
		return nil, fmt.Errorf("decode %q: %w", n.Type, ErrUnknownShapeType)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s data: %w", n.Type, err)
	}
	return s, nil
}

// EncodeShape stores a geometry descriptor under the given ID.
func EncodeShape(id string, s geometry.Shape, style Style) (ShapeNode, error) {
	var data any
	switch v := s.(type) {
	case *geometry.Line:
		data = lineData{v.P1, v.P2}
	case *geometry.Circle:
		data = circleData{v.Center, v.Radius}
	case *geometry.CircleArc:
		data = arcData{v.Center, v.Radius, v.StartAngle, v.DeltaAngle}
	case *geometry.Ellipse:
		data = ellipseData{Center: v.Center, RX: v.RX, RY: v.RY, XRot: v.XRot}
	case *geometry.EllipticalArc:
		data = ellipseData{v.Center, v.RX, v.RY, v.XRot, v.StartAngle, v.DeltaAngle}
	case *geometry.Bezier:
		data = bezierData{v.P1, v.P2, v.P3}
	case *geometry.Rect:
		data = *v
	case *geometry.PointShape:
		data = pointData{v.At}
	default:
		return ShapeNode{}, fmt.Errorf("encode %T: %w", s, ErrUnknownShapeType)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ShapeNode{}, fmt.Errorf("encode %s: %w", s.Kind(), err)
	}
	return ShapeNode{
		ID:    id,
		Type:  ShapeType(s.Kind().String()),
		Style: style,
		Data:  raw,
	}, nil
}
