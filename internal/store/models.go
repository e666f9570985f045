package store

import (
	"encoding/json"
	"time"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Drawing struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Snapshot struct {
	ID        string
	DrawingID string
	Version   int32
	Document  json.RawMessage
	CreatedAt time.Time
}

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

type CreateDrawingParams struct {
	ID      string
	Name    string
	OwnerID string
}

type CreateNextSnapshotParams struct {
	ID        string
	DrawingID string
	Document  json.RawMessage
}
