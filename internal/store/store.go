package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is Queries over a connection pool, plus the writes that span
// several statements and so run in a transaction.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Queries: New(pool), pool: pool}
}

func (s *Store) execTx(ctx context.Context, fn func(q *Queries) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(s.WithTx(tx))
	})
}

// SaveSnapshot stores doc as the drawing's next version. Concurrent saves
// of one drawing get consecutive versions.
func (s *Store) SaveSnapshot(ctx context.Context, id, drawingID string, doc []byte) (Snapshot, error) {
	var snap Snapshot
	err := s.execTx(ctx, func(q *Queries) error {
		var err error
		snap, err = q.appendSnapshot(ctx, id, drawingID, doc)
		return err
	})
	return snap, err
}

// CreateDrawingWithSnapshot creates a drawing and its first snapshot
// together. Neither is stored if either insert fails.
func (s *Store) CreateDrawingWithSnapshot(ctx context.Context, arg CreateDrawingParams, snapshotID string, doc []byte) (Drawing, error) {
	var d Drawing
	err := s.execTx(ctx, func(q *Queries) error {
		var err error
		if d, err = q.CreateDrawing(ctx, arg); err != nil {
			return fmt.Errorf("create drawing: %w", err)
		}
		if _, err = q.appendSnapshot(ctx, snapshotID, d.ID, doc); err != nil {
			return fmt.Errorf("create initial snapshot: %w", err)
		}
		return nil
	})
	return d, err
}
