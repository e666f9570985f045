package store

import (
	"context"
	"fmt"
)

const createUser = `INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, createUser, arg.ID, arg.Email, arg.Password, arg.DisplayName).
		Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, notFound(err)
}

const getUserByID = `SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByID, id).
		Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, notFound(err)
}

const createDrawing = `INSERT INTO drawings (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, created_at, updated_at`

func (q *Queries) CreateDrawing(ctx context.Context, arg CreateDrawingParams) (Drawing, error) {
	var d Drawing
	err := q.db.QueryRow(ctx, createDrawing, arg.ID, arg.Name, arg.OwnerID).
		Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

const getDrawing = `SELECT id, name, owner_id, created_at, updated_at FROM drawings WHERE id = $1`

func (q *Queries) GetDrawing(ctx context.Context, id string) (Drawing, error) {
	var d Drawing
	err := q.db.QueryRow(ctx, getDrawing, id).
		Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	return d, notFound(err)
}

const listDrawingsForOwner = `SELECT id, name, owner_id, created_at, updated_at
FROM drawings WHERE owner_id = $1
ORDER BY updated_at DESC`

func (q *Queries) ListDrawingsForOwner(ctx context.Context, ownerID string) ([]Drawing, error) {
	rows, err := q.db.Query(ctx, listDrawingsForOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Drawing
	for rows.Next() {
		var d Drawing
		if err := rows.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const deleteDrawing = `DELETE FROM drawings WHERE id = $1`

func (q *Queries) DeleteDrawing(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, deleteDrawing, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const touchDrawing = `UPDATE drawings SET updated_at = now() WHERE id = $1`

func (q *Queries) TouchDrawing(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, touchDrawing, id)
	return err
}

const lockDrawing = `SELECT id FROM drawings WHERE id = $1 FOR UPDATE`

// LockDrawing takes a row lock on a drawing until the end of the
// transaction, serializing snapshot writes for it.
func (q *Queries) LockDrawing(ctx context.Context, id string) error {
	var got string
	return notFound(q.db.QueryRow(ctx, lockDrawing, id).Scan(&got))
}

const createNextSnapshot = `INSERT INTO drawing_snapshots (id, drawing_id, version, document)
SELECT $1::text, $2::text, COALESCE(MAX(version), 0) + 1, $3::jsonb
FROM drawing_snapshots WHERE drawing_id = $2::text
RETURNING id, drawing_id, version, document, created_at`

// CreateNextSnapshot stores doc one version above the drawing's latest
// snapshot. Run it under LockDrawing so concurrent writers queue up.
func (q *Queries) CreateNextSnapshot(ctx context.Context, arg CreateNextSnapshotParams) (Snapshot, error) {
	var s Snapshot
	err := q.db.QueryRow(ctx, createNextSnapshot, arg.ID, arg.DrawingID, arg.Document).
		Scan(&s.ID, &s.DrawingID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}

const getLatestSnapshot = `SELECT id, drawing_id, version, document, created_at
FROM drawing_snapshots WHERE drawing_id = $1
ORDER BY version DESC
LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context, drawingID string) (Snapshot, error) {
	var s Snapshot
	err := q.db.QueryRow(ctx, getLatestSnapshot, drawingID).
		Scan(&s.ID, &s.DrawingID, &s.Version, &s.Document, &s.CreatedAt)
	return s, notFound(err)
}

// appendSnapshot locks the drawing, stores doc as its next version and bumps
// its updated_at. q must run inside a transaction.
func (q *Queries) appendSnapshot(ctx context.Context, id, drawingID string, doc []byte) (Snapshot, error) {
	if err := q.LockDrawing(ctx, drawingID); err != nil {
		return Snapshot{}, fmt.Errorf("lock drawing: %w", err)
	}

	snap, err := q.CreateNextSnapshot(ctx, CreateNextSnapshotParams{
		ID:        id,
		DrawingID: drawingID,
		Document:  doc,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}
	if err := q.TouchDrawing(ctx, drawingID); err != nil {
		return Snapshot{}, fmt.Errorf("touch drawing: %w", err)
	}
	return snap, nil
}
