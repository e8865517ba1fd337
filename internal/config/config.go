// Package config builds the process configuration once at startup. Handlers
// never read the environment directly; they receive values from here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinoosan/draingate/internal/gate"
)

// Config is the full runtime configuration. A malformed value is a startup
// error: running with ambiguous maintenance semantics is worse than not
// starting.
type Config struct {
	Role       gate.Role
	ListenAddr string

	// Shared-state backends. RedisAddr wins over DatabaseURL when both are
	// set; exactly one authoritative chain is consulted per process.
	RedisAddr     string
	RedisPassword string
	DatabaseURL   string

	// MaintenanceFile is the local marker tier; MaintenanceDefault is the
	// static bottom tier sourced from MAINTENANCE_MODE.
	MaintenanceFile    string
	MaintenanceDefault bool

	GracePeriod        time.Duration
	PropagationDelay   time.Duration
	RetryAfter         time.Duration
	SessionTTL         time.Duration
	PollInterval       time.Duration
	StateLookupTimeout time.Duration

	// AdminRestricted gates /admin/status and /admin/toggle on the admin
	// role. /admin/users always requires it.
	AdminRestricted bool

	Pod string
}

// FromEnv reads and validates configuration from the environment.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:         envOr("LISTEN_ADDR", ":8080"),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaintenanceFile:    envOr("MAINTENANCE_FILE", filepath.Join(os.TempDir(), "maintenance.flag")),
		GracePeriod:        60 * time.Second,
		PropagationDelay:   15 * time.Second,
		RetryAfter:         1800 * time.Second,
		SessionTTL:         time.Hour,
		PollInterval:       5 * time.Second,
		StateLookupTimeout: 2 * time.Second,
		Pod:                hostname(),
	}

	role, err := gate.ParseRole(os.Getenv("ROLE"))
	if err != nil {
		return Config{}, fmt.Errorf("ROLE: %w", err)
	}
	cfg.Role = role

	if err := parseBool("MAINTENANCE_MODE", &cfg.MaintenanceDefault); err != nil {
		return Config{}, err
	}
	if err := parseBool("ADMIN_ENDPOINTS_RESTRICTED", &cfg.AdminRestricted); err != nil {
		return Config{}, err
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"DRAIN_GRACE_PERIOD", &cfg.GracePeriod},
		{"DRAIN_PROPAGATION_DELAY", &cfg.PropagationDelay},
		{"RETRY_AFTER", &cfg.RetryAfter},
		{"SESSION_TTL", &cfg.SessionTTL},
		{"MAINTENANCE_POLL_INTERVAL", &cfg.PollInterval},
		{"STATE_LOOKUP_TIMEOUT", &cfg.StateLookupTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.dst); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	if c.MaintenanceFile == "" {
		return fmt.Errorf("MAINTENANCE_FILE is required")
	}
	if c.GracePeriod < 0 {
		return fmt.Errorf("DRAIN_GRACE_PERIOD must not be negative")
	}
	if c.RetryAfter <= 0 {
		return fmt.Errorf("RETRY_AFTER must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("MAINTENANCE_POLL_INTERVAL must be positive")
	}
	if c.StateLookupTimeout <= 0 {
		return fmt.Errorf("STATE_LOOKUP_TIMEOUT must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, dst *time.Duration) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func parseBool(key string, dst *bool) error {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return nil
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("%s: invalid boolean %q", key, raw)
	}
	return nil
}

func hostname() string {
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}
