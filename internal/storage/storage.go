package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/opengaia/gaia-engine/pkg/state"
)

// Storage persists progression snapshots between process runs. The session
// remains the in-memory source of truth; storage is a write-behind copy.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	SaveSession(ctx context.Context, id uuid.UUID, snap *state.Snapshot) error
	// LoadSession returns nil with no error when the id is unknown.
	LoadSession(ctx context.Context, id uuid.UUID) (*state.Snapshot, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
