package gate

import (
	"context"
	"log/slog"
	"time"
)

// Provider is a single source of truth for the maintenance flag. Implementations
// that reach over the network must respect the context deadline they are given.
type Provider interface {
	Name() string
	Active(ctx context.Context) (bool, error)
}

// Toggler is a Provider whose flag can be written. The admin toggle endpoint
// persists through exactly one Toggler; a failed write is surfaced to the
// caller rather than silently degrading to a different tier.
type Toggler interface {
	Provider
	SetActive(ctx context.Context, active bool) error
}

// Resolver consults an ordered list of providers, first conclusive answer wins.
// Every lookup is bounded by a per-provider timeout so a dependency outage
// degrades to the next tier instead of stalling request handling. If every
// provider fails the flag resolves to inactive: failing closed would take
// serving capacity down because of an unrelated outage.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
	log       *slog.Logger
}

// NewResolver builds a resolver over the given providers in priority order.
func NewResolver(timeout time.Duration, log *slog.Logger, providers ...Provider) *Resolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{providers: providers, timeout: timeout, log: log}
}

// Active resolves the maintenance flag. It never returns an error; provider
// failures are logged and skipped.
func (r *Resolver) Active(ctx context.Context) bool {
	for _, p := range r.providers {
		pctx, cancel := context.WithTimeout(ctx, r.timeout)
		active, err := p.Active(pctx)
		cancel()
		if err != nil {
			r.log.Warn("maintenance state provider failed, falling back", "provider", p.Name(), "err", err)
			continue
		}
		return active
	}
	return false
}
