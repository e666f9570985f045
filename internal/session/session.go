// Package session hosts live editing sessions. Each open drawing has one
// session holding a layer manager, driven by exactly one websocket client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/geometry"
	"github.com/alberti/alberti/backend-go/internal/layers"
)

var (
	ErrSessionBusy = errors.New("drawing is already open in another session")
	ErrClosed      = errors.New("session closed")
)

// DocumentStore loads and saves drawing documents.
type DocumentStore interface {
	LoadDocument(ctx context.Context, drawingID string) (*document.Document, error)
	SaveDocument(ctx context.Context, drawingID string, doc *document.Document) error
}

// Session is the in-memory editing state of one drawing. All access to the
// layer manager goes through the session's mutex.
type Session struct {
	mu        sync.Mutex
	drawingID string
	name      string
	createdAt string
	version   int
	manager   *layers.Manager
	store     DocumentStore
	attached  bool // guarded by Hub.mu
	closed    bool
}

// New builds a session editing doc. Hubs create sessions for the server;
// the browser build creates one directly.
func New(drawingID string, doc *document.Document, store DocumentStore, opts ...layers.Option) (*Session, error) {
	m := layers.New(opts...)
	if err := m.Load(doc); err != nil {
		return nil, err
	}
	return &Session{
		drawingID: drawingID,
		name:      doc.Name,
		createdAt: doc.CreatedAt,
		version:   doc.Version,
		manager:   m,
		store:     store,
	}, nil
}

func (s *Session) DrawingID() string { return s.drawingID }

// Welcome returns the greeting sent to a client when it joins.
func (s *Session) Welcome(clientID string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.documentLocked()
	if err != nil {
		return newMessage(TypeError, 0, ErrorPayload{Error: err.Error()})
	}
	return newMessage(TypeWelcome, 0, WelcomePayload{
		ClientID:  clientID,
		DrawingID: s.drawingID,
		Document:  doc,
		State:     s.stateLocked(),
	})
}

// Apply handles one request and returns the reply for the client.
func (s *Session) Apply(ctx context.Context, msg *Message) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nack(msg, ErrClosed)
	}

	reply, err := s.applyLocked(ctx, msg)
	if err != nil {
		slog.Debug("request rejected", "drawing", s.drawingID, "type", msg.Type, "error", err)
		return nack(msg, err)
	}
	return reply
}

func (s *Session) applyLocked(ctx context.Context, msg *Message) (*Message, error) {
	m := s.manager
	ack := AckPayload{}

	switch msg.Type {
	case TypeShapeInsert:
		var p ShapeInsertPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		g, style, err := p.Shape.decode()
		if err != nil {
			return nil, err
		}
		ack.IDs = []string{m.InsertShape(g, style)}

	case TypeShapesPaste:
		var p ShapesPastePayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if len(p.Shapes) == 0 {
			return nil, errors.New("no shapes to paste")
		}
		gs := make([]geometry.Shape, len(p.Shapes))
		styles := make([]document.Style, len(p.Shapes))
		for i, in := range p.Shapes {
			g, st, err := in.decode()
			if err != nil {
				return nil, fmt.Errorf("shape %d: %w", i, err)
			}
			gs[i], styles[i] = g, st
		}
		ack.IDs = m.PasteShapes(gs, styles...)

	case TypeShapesDelete:
		var p ShapesPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if err := s.checkShapes(p.IDs); err != nil {
			return nil, err
		}
		m.DeleteShapes(p.IDs...)
		ack.IDs = p.IDs

	case TypeShapesMove:
		var p ShapesMovePayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if err := s.checkShapes(p.IDs); err != nil {
			return nil, err
		}
		m.MoveShapes(p.IDs, p.DX, p.DY)
		ack.IDs = p.IDs

	case TypeShapesPick:
		var p PickPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if p.Radius <= 0 {
			return nil, errors.New("radius must be positive")
		}
		ack.IDs = m.PickShapes(p.Point, p.Radius)

	case TypeShapesInRect:
		var p RectPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		ack.IDs = m.ShapesInRect(p.Rect)

	case TypeLayerInsert:
		var p LayerInsertPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		ack.IDs = []string{m.InsertLayer(p.Name)}

	case TypeLayerDelete:
		if len(m.Layers()) < 2 {
			return nil, errors.New("cannot delete the only layer")
		}
		if len(m.Layers())-m.HiddenLayerCount() < 2 {
			return nil, errors.New("cannot delete the only visible layer")
		}
		m.DeleteCurrentLayer()

	case TypeLayerSwitch:
		var p LayerSwitchPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if !m.HasLayer(p.LayerID) {
			return nil, fmt.Errorf("unknown layer %q", p.LayerID)
		}
		if !m.LayerVisible(p.LayerID) {
			return nil, fmt.Errorf("layer %q is hidden", p.LayerID)
		}
		m.SwitchToLayer(p.LayerID)

	case TypeLayerVisibility:
		var p LayerVisibilityPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if !m.HasLayer(p.LayerID) {
			return nil, fmt.Errorf("unknown layer %q", p.LayerID)
		}
		if !p.Visible && m.LayerVisible(p.LayerID) && len(m.Layers())-m.HiddenLayerCount() < 2 {
			return nil, errors.New("cannot hide the only visible layer")
		}
		m.SetLayerVisibility(p.LayerID, p.Visible)

	case TypeSnapNearest:
		var p SnapNearestPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		var (
			pt geometry.Point
			ok bool
		)
		if p.Exclude != nil {
			pt, ok = m.NearestSnapPointExcluding(p.Point, *p.Exclude)
		} else {
			pt, ok = m.NearestSnapPoint(p.Point)
		}
		if ok {
			ack.Point = &pt
		}

	case TypeSnapTangents:
		var p SnapTangentsPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		ack.Points = m.TangentPoints(p.Point)

	case TypeSnapScale:
		var p SnapScalePayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		if p.Zoom <= 0 {
			return nil, errors.New("zoom must be positive")
		}
		m.SetZoom(p.Zoom)

	case TypeHistoryUndo, TypeHistoryRedo:
		var applied bool
		if msg.Type == TypeHistoryUndo {
			applied = m.Undo()
		} else {
			applied = m.Redo()
		}
		doc, err := s.documentLocked()
		if err != nil {
			return nil, err
		}
		slog.Debug("replay history", "drawing", s.drawingID, "type", msg.Type, "applied", applied)
		return newMessage(TypeDocSync, msg.Seq, DocSyncPayload{Document: doc, Applied: applied, State: s.stateLocked()}), nil

	case TypeDocSave:
		if err := s.saveLocked(ctx); err != nil {
			return nil, err
		}
		ack.Version = s.version

	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}

	ack.State = s.stateLocked()
	return newMessage(TypeOpAck, msg.Seq, ack), nil
}

// SaveIfDirty stores the document when it has changed since the last save.
func (s *Session) SaveIfDirty(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manager.IsClean() {
		return nil
	}
	return s.saveLocked(ctx)
}

// IsClean reports whether the session has no unsaved changes.
func (s *Session) IsClean() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.IsClean()
}

func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) saveLocked(ctx context.Context) error {
	doc, err := s.documentLocked()
	if err != nil {
		return err
	}
	if err := s.store.SaveDocument(ctx, s.drawingID, doc); err != nil {
		return fmt.Errorf("save drawing %s: %w", s.drawingID, err)
	}
	s.version = doc.Version
	s.manager.MarkClean()
	slog.Info("drawing saved", "drawing", s.drawingID, "version", s.version)
	return nil
}

func (s *Session) documentLocked() (*document.Document, error) {
	doc, err := s.manager.Document()
	if err != nil {
		return nil, err
	}
	doc.ID = s.drawingID
	doc.Name = s.name
	doc.CreatedAt = s.createdAt
	doc.Version = s.version
	return doc, nil
}

func (s *Session) stateLocked() State {
	m := s.manager
	st := State{
		Layers:       m.Layers(),
		CurrentLayer: m.CurrentLayer(),
		Shapes:       m.ShapeCount(),
		SnapPoints:   m.SnapPointCount(),
		Clean:        m.IsClean(),
	}
	st.UndoName, _ = m.UndoName()
	st.RedoName, _ = m.RedoName()
	return st
}

func (s *Session) checkShapes(ids []string) error {
	if len(ids) == 0 {
		return errors.New("no shape ids")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !s.manager.HasShape(id) {
			return fmt.Errorf("unknown shape %q", id)
		}
		if seen[id] {
			return fmt.Errorf("shape %q listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

func (in ShapeInput) decode() (geometry.Shape, document.Style, error) {
	style := document.DefaultStyle
	if in.Style != nil {
		style = *in.Style
	}
	g, err := document.DecodeShape(document.ShapeNode{Type: in.Type, Style: style, Data: in.Data})
	if err != nil {
		return nil, style, err
	}
	return g, style, nil
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return nil
}

func nack(msg *Message, err error) *Message {
	return newMessage(TypeOpNack, msg.Seq, NackPayload{Reason: err.Error()})
}
