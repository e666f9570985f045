package session

import (
	"encoding/json"

	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/geometry"
	"github.com/alberti/alberti/backend-go/internal/layers"
)

type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Editing requests
	TypeShapeInsert     = "shape.insert"
	TypeShapesPaste     = "shapes.paste"
	TypeShapesDelete    = "shapes.delete"
	TypeShapesMove      = "shapes.move"
	TypeShapesPick      = "shapes.pick"
	TypeShapesInRect    = "shapes.inRect"
	TypeLayerInsert     = "layer.insert"
	TypeLayerDelete     = "layer.delete"
	TypeLayerSwitch     = "layer.switch"
	TypeLayerVisibility = "layer.visibility"
	TypeSnapNearest     = "snap.nearest"
	TypeSnapTangents    = "snap.tangents"
	TypeSnapScale       = "snap.scale"
	TypeHistoryUndo     = "history.undo"
	TypeHistoryRedo     = "history.redo"
	TypeDocSave         = "doc.save"

	// Replies
	TypeWelcome = "welcome"
	TypeDocSync = "doc.sync"
	TypeOpAck   = "op.ack"
	TypeOpNack  = "op.nack"
	TypeError   = "error"
)

// ShapeInput is a shape sent by the editor. A missing style gets the
// default one.
type ShapeInput struct {
	Type  document.ShapeType `json:"type"`
	Style *document.Style    `json:"style,omitempty"`
	Data  json.RawMessage    `json:"data"`
}

type ShapeInsertPayload struct {
	Shape ShapeInput `json:"shape"`
}

type ShapesPastePayload struct {
	Shapes []ShapeInput `json:"shapes"`
}

type ShapesPayload struct {
	IDs []string `json:"ids"`
}

type ShapesMovePayload struct {
	IDs []string `json:"ids"`
	DX  float64  `json:"dx"`
	DY  float64  `json:"dy"`
}

type PickPayload struct {
	Point  geometry.Point `json:"point"`
	Radius float64        `json:"radius"`
}

type RectPayload struct {
	Rect geometry.Rect `json:"rect"`
}

type LayerInsertPayload struct {
	Name string `json:"name,omitempty"`
}

type LayerSwitchPayload struct {
	LayerID string `json:"layerId"`
}

type LayerVisibilityPayload struct {
	LayerID string `json:"layerId"`
	Visible bool   `json:"visible"`
}

type SnapNearestPayload struct {
	Point   geometry.Point  `json:"point"`
	Exclude *geometry.Point `json:"exclude,omitempty"`
}

type SnapTangentsPayload struct {
	Point geometry.Point `json:"point"`
}

type SnapScalePayload struct {
	Zoom float64 `json:"zoom"`
}

// State summarizes the editing model after a request.
type State struct {
	Layers       []layers.LayerInfo `json:"layers"`
	CurrentLayer string             `json:"currentLayer"`
	Shapes       int                `json:"shapes"`
	SnapPoints   int                `json:"snapPoints"`
	UndoName     string             `json:"undoName,omitempty"`
	RedoName     string             `json:"redoName,omitempty"`
	Clean        bool               `json:"clean"`
}

type AckPayload struct {
	IDs     []string         `json:"ids,omitempty"`
	Point   *geometry.Point  `json:"point,omitempty"`
	Points  []geometry.Point `json:"points,omitempty"`
	Version int              `json:"version,omitempty"`
	State   State            `json:"state"`
}

type NackPayload struct {
	Reason string `json:"reason"`
}

type WelcomePayload struct {
	ClientID  string             `json:"clientId"`
	DrawingID string             `json:"drawingId"`
	Document  *document.Document `json:"document"`
	State     State              `json:"state"`
}

// DocSyncPayload answers history requests. Applied is false when there was
// nothing to undo or redo.
type DocSyncPayload struct {
	Document *document.Document `json:"document"`
	Applied  bool               `json:"applied"`
	State    State              `json:"state"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func newMessage(typ string, seq int64, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Seq: seq, Payload: data}
}
