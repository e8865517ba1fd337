package v1

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/draingate/internal/session"
)

// SessionStore abstracts the session backend used by the API.
type SessionStore interface {
	Create(ctx context.Context, s session.Session) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]session.Session, error)
	Count(ctx context.Context) (int, error)
}

// Toggler persists the maintenance flag for the admin toggle endpoint.
type Toggler interface {
	SetActive(ctx context.Context, active bool) error
}
