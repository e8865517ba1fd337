// Package session defines the tracked-session entity and the store contract
// shared by the memory, redis and postgres backends.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is one tracked client. With a shared backend (redis/postgres)
// sessions are visible across all pods; with the memory backend they are
// confined to the owning process, which /admin/users reports so operators
// know which view they are looking at.
type Session struct {
	ID           uuid.UUID
	User         string
	Pod          string
	LoginTime    time.Time
	LastActivity time.Time
}

// Store is implemented by the storage backends. Clear returns how many
// sessions were removed so the drain controller can count forced logouts.
type Store interface {
	Create(ctx context.Context, s Session) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Session, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
}
