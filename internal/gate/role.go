package gate

import (
	"fmt"
	"strings"
)

// Role identifies the pod flavor this process runs as. It is fixed at startup
// and never changes for the lifetime of the process.
type Role int

const (
	// RoleStandard pods serve user traffic and are removed from rotation
	// during maintenance or drain.
	RoleStandard Role = iota
	// RoleAdmin pods stay reachable regardless of maintenance state so
	// operators can control the maintenance window itself.
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	default:
		return "standard"
	}
}

// ParseRole maps a config value to a Role. Empty means standard.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "user":
		return RoleStandard, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleStandard, fmt.Errorf("unknown role %q", s)
	}
}
