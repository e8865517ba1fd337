package config

import (
	"strings"
	"testing"
	"time"

	"github.com/tinoosan/draingate/internal/gate"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ROLE", "LISTEN_ADDR", "REDIS_ADDR", "REDIS_PASSWORD", "DATABASE_URL",
		"MAINTENANCE_FILE", "MAINTENANCE_MODE", "DRAIN_GRACE_PERIOD",
		"DRAIN_PROPAGATION_DELAY", "RETRY_AFTER", "SESSION_TTL",
		"MAINTENANCE_POLL_INTERVAL", "STATE_LOOKUP_TIMEOUT", "ADMIN_ENDPOINTS_RESTRICTED",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Role != gate.RoleStandard {
		t.Errorf("default role should be standard, got %s", cfg.Role)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("default addr: %s", cfg.ListenAddr)
	}
	if cfg.GracePeriod != 60*time.Second || cfg.PropagationDelay != 15*time.Second {
		t.Errorf("default drain timings: %s %s", cfg.GracePeriod, cfg.PropagationDelay)
	}
	if cfg.RetryAfter != 1800*time.Second {
		t.Errorf("default retry-after: %s", cfg.RetryAfter)
	}
	if cfg.MaintenanceDefault || cfg.AdminRestricted {
		t.Error("boolean defaults should be false")
	}
	if !strings.HasSuffix(cfg.MaintenanceFile, "maintenance.flag") {
		t.Errorf("default marker path: %s", cfg.MaintenanceFile)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROLE", "admin")
	t.Setenv("DRAIN_GRACE_PERIOD", "90s")
	t.Setenv("RETRY_AFTER", "5m")
	t.Setenv("MAINTENANCE_MODE", "true")
	t.Setenv("ADMIN_ENDPOINTS_RESTRICTED", "yes")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Role != gate.RoleAdmin {
		t.Errorf("role: %s", cfg.Role)
	}
	if cfg.GracePeriod != 90*time.Second {
		t.Errorf("grace: %s", cfg.GracePeriod)
	}
	if cfg.RetryAfter != 5*time.Minute {
		t.Errorf("retry-after: %s", cfg.RetryAfter)
	}
	if !cfg.MaintenanceDefault || !cfg.AdminRestricted {
		t.Error("boolean overrides not applied")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("redis addr: %s", cfg.RedisAddr)
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad role", "ROLE", "superuser"},
		{"bad duration", "DRAIN_GRACE_PERIOD", "sixty seconds"},
		{"bad ttl", "SESSION_TTL", "1 hour"},
		{"bad bool", "MAINTENANCE_MODE", "maybe"},
		{"zero retry-after", "RETRY_AFTER", "0s"},
		{"zero poll interval", "MAINTENANCE_POLL_INTERVAL", "0s"},
		{"zero lookup timeout", "STATE_LOOKUP_TIMEOUT", "0s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
