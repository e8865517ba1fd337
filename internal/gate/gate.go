// Package gate implements the request-admission core: a per-request decision
// over the pod role, the resolved maintenance flag, and the drain state.
// It is pure decision logic; transports and stores are injected.
package gate

import (
	"context"
	"strings"
)

// Disposition classifies an inbound request.
type Disposition int

const (
	// Allow processes the request normally.
	Allow Disposition = iota
	// Bypass processes the request unconditionally (probes, admin control,
	// event streams). Bypass paths are never rejected.
	Bypass
	// Reject answers with the maintenance response instead of the handler.
	Reject
)

func (d Disposition) String() string {
	switch d {
	case Bypass:
		return "bypass"
	case Reject:
		return "reject"
	default:
		return "allow"
	}
}

// Readiness is the answer the readiness probe reports.
type Readiness int

const (
	Ready Readiness = iota
	NotReadyMaintenance
	NotReadyDraining
)

// DrainReader exposes the drain flag owned by the drain controller. The gate
// only ever reads it.
type DrainReader interface {
	Draining() bool
}

// bypassPaths are matched exactly; admin routes are matched on the /admin
// segment boundary so unrelated paths (e.g. /administrator) are not exempted.
var bypassPaths = map[string]struct{}{
	"/health":       {},
	"/healthz":      {},
	"/ready":        {},
	"/readyz":       {},
	"/events":       {},
	"/metrics":      {},
	"/logout":       {},
	"/admin":        {},
	"/admin/status": {},
	"/admin/toggle": {},
	"/admin/users":  {},
}

// Gate evaluates admission for every inbound request. Safe for concurrent use:
// all mutable state lives behind the resolver and drain reader.
type Gate struct {
	role     Role
	resolver *Resolver
	drain    DrainReader
}

// New constructs the gate for a fixed role.
func New(role Role, resolver *Resolver, drain DrainReader) *Gate {
	return &Gate{role: role, resolver: resolver, drain: drain}
}

// Role returns the role this process was started with.
func (g *Gate) Role() Role { return g.role }

// Bypassed reports whether the path is on the fixed allow-list.
func (g *Gate) Bypassed(path string) bool {
	if _, ok := bypassPaths[path]; ok {
		return true
	}
	return strings.HasPrefix(path, "/admin/")
}

// MaintenanceActive resolves the maintenance flag through the provider chain.
func (g *Gate) MaintenanceActive(ctx context.Context) bool {
	return g.resolver.Active(ctx)
}

// Evaluate classifies a request path. Draining alone does not reject: accepted
// work keeps flowing during the grace window, only readiness flips.
func (g *Gate) Evaluate(ctx context.Context, path string) Disposition {
	if g.Bypassed(path) {
		return Bypass
	}
	if g.role == RoleAdmin {
		return Allow
	}
	if g.MaintenanceActive(ctx) {
		return Reject
	}
	return Allow
}

// Readiness answers the readiness probe. Admin pods are always ready so
// operators keep control-plane access while standard pods leave rotation.
// For standard pods draining wins over maintenance: it is checked first and
// is irreversible.
func (g *Gate) Readiness(ctx context.Context) Readiness {
	if g.role == RoleAdmin {
		return Ready
	}
	if g.drain != nil && g.drain.Draining() {
		return NotReadyDraining
	}
	if g.MaintenanceActive(ctx) {
		return NotReadyMaintenance
	}
	return Ready
}
