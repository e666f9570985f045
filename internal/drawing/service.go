// Package drawing serves drawing metadata and snapshots over HTTP, along
// with stateless geometry queries.
package drawing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alberti/alberti/backend-go/internal/auth"
	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/store"
	"github.com/alberti/alberti/backend-go/internal/typeid"
)

var (
	ErrNotFound  = fmt.Errorf("drawing %w", auth.ErrNotFound)
	ErrForbidden = fmt.Errorf("drawing access %w", auth.ErrForbidden)
)

// Store is the subset of store.Store the drawing service needs.
type Store interface {
	CreateDrawingWithSnapshot(ctx context.Context, arg store.CreateDrawingParams, snapshotID string, doc []byte) (store.Drawing, error)
	GetDrawing(ctx context.Context, id string) (store.Drawing, error)
	ListDrawingsForOwner(ctx context.Context, ownerID string) ([]store.Drawing, error)
	DeleteDrawing(ctx context.Context, id string) error
	GetLatestSnapshot(ctx context.Context, drawingID string) (store.Snapshot, error)
	SaveSnapshot(ctx context.Context, id, drawingID string, doc []byte) (store.Snapshot, error)
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

type Drawing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Create stores a new drawing owned by ownerID together with its first
// snapshot, either a single empty layer or the sample drawing.
func (s *Service) Create(ctx context.Context, name, ownerID string, sample bool) (*Drawing, error) {
	drawingID := typeid.NewDrawingID()

	var doc *document.Document
	if sample {
		doc = document.NewSampleDocument(drawingID)
		doc.Name = name
	} else {
		doc = document.NewEmptyDocument(drawingID, name, typeid.NewLayerID())
		doc.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}

	dbDrawing, err := s.store.CreateDrawingWithSnapshot(ctx, store.CreateDrawingParams{
		ID:      drawingID,
		Name:    name,
		OwnerID: ownerID,
	}, typeid.NewSnapshotID(), data)
	if err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}

	return toDrawing(dbDrawing), nil
}

func (s *Service) Get(ctx context.Context, drawingID, userID string) (*Drawing, error) {
	d, err := s.authorize(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}
	return toDrawing(d), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Drawing, error) {
	dbDrawings, err := s.store.ListDrawingsForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	drawings := make([]Drawing, len(dbDrawings))
	for i, d := range dbDrawings {
		drawings[i] = *toDrawing(d)
	}
	return drawings, nil
}

func (s *Service) Delete(ctx context.Context, drawingID, userID string) error {
	if _, err := s.authorize(ctx, drawingID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteDrawing(ctx, drawingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete drawing: %w", err)
	}
	return nil
}

func (s *Service) GetLatestSnapshot(ctx context.Context, drawingID, userID string) (json.RawMessage, error) {
	if _, err := s.authorize(ctx, drawingID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, drawingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Document, nil
}

// Authorize checks that userID may open drawingID for editing.
func (s *Service) Authorize(ctx context.Context, drawingID, userID string) error {
	_, err := s.authorize(ctx, drawingID, userID)
	return err
}

// LoadDocument returns the latest saved document of a drawing. A drawing
// with no snapshot yet loads as a single empty layer.
func (s *Service) LoadDocument(ctx context.Context, drawingID string) (*document.Document, error) {
	snap, err := s.store.GetLatestSnapshot(ctx, drawingID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get snapshot: %w", err)
		}
		d, err := s.store.GetDrawing(ctx, drawingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("get drawing: %w", err)
		}
		return document.NewEmptyDocument(drawingID, d.Name, typeid.NewLayerID()), nil
	}

	var doc document.Document
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", snap.ID, err)
	}
	doc.Version = int(snap.Version)
	return &doc, nil
}

// SaveDocument stores doc as the drawing's next snapshot version.
func (s *Service) SaveDocument(ctx context.Context, drawingID string, doc *document.Document) error {
	data, err := marshalDocument(doc)
	if err != nil {
		return err
	}

	snap, err := s.store.SaveSnapshot(ctx, typeid.NewSnapshotID(), drawingID, data)
	if err != nil {
		return err
	}
	doc.Version = int(snap.Version)
	return nil
}

// marshalDocument stamps doc's update time and encodes it for storage.
func marshalDocument(doc *document.Document) ([]byte, error) {
	doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

func (s *Service) authorize(ctx context.Context, drawingID, userID string) (store.Drawing, error) {
	d, err := s.store.GetDrawing(ctx, drawingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Drawing{}, ErrNotFound
		}
		return store.Drawing{}, fmt.Errorf("get drawing: %w", err)
	}
	if d.OwnerID != userID {
		return store.Drawing{}, ErrForbidden
	}
	return d, nil
}

func toDrawing(d store.Drawing) *Drawing {
	return &Drawing{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
