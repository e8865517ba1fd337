package redisstore

// Package redisstore backs the shared maintenance flag and cross-pod session
// tracking with Redis. It is the highest-priority state tier: every pod sees
// the same flag, and /admin/users shows sessions across the whole deployment.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tinoosan/draingate/internal/errs"
	"github.com/tinoosan/draingate/internal/session"
)

const (
	maintenanceKey   = "maintenance:active"
	sessionKeyPrefix = "session:"
)

// Store wraps a redis client and implements gate.Toggler and session.Store.
// All methods are safe for concurrent use.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// Open connects to Redis and verifies the connection with a bounded ping.
func Open(ctx context.Context, addr, password string, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.rdb.Close() }

// Ready pings the server to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

// Name implements gate.Provider.
func (s *Store) Name() string { return "redis" }

// Active reads the shared maintenance flag. A missing key means inactive.
func (s *Store) Active(ctx context.Context) (bool, error) {
	val, err := s.rdb.Get(ctx, maintenanceKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrStateUnavailable, err)
	}
	return val == "true", nil
}

// SetActive writes the shared maintenance flag. A failed write is surfaced as
// ErrToggleFailed; the caller decides what to tell the admin, nothing degrades
// silently to another tier.
func (s *Store) SetActive(ctx context.Context, active bool) error {
	var err error
	if active {
		err = s.rdb.Set(ctx, maintenanceKey, "true", 0).Err()
	} else {
		err = s.rdb.Del(ctx, maintenanceKey).Err()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrToggleFailed, err)
	}
	return nil
}

// Create stores a session as a hash with the configured TTL.
func (s *Store) Create(ctx context.Context, sess session.Session) error {
	key := sessionKeyPrefix + sess.ID.String()
	if err := s.rdb.HSet(ctx, key,
		"user", sess.User,
		"pod", sess.Pod,
		"login_time", sess.LoginTime.UTC().Format(time.RFC3339Nano),
		"last_activity", sess.LastActivity.UTC().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

// Touch refreshes the activity timestamp and the TTL.
func (s *Store) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	key := sessionKeyPrefix + id.String()
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	if err := s.rdb.HSet(ctx, key, "last_activity", at.UTC().Format(time.RFC3339Nano)).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.rdb.Del(ctx, sessionKeyPrefix+id.String()).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// List scans all session keys and materializes them. Sessions across every
// pod are returned, that is the point of this backend.
func (s *Store) List(ctx context.Context) ([]session.Session, error) {
	keys, err := s.sessionKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]session.Session, 0, len(keys))
	for _, key := range keys {
		fields, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue // expired between scan and read
		}
		id, err := uuid.Parse(strings.TrimPrefix(key, sessionKeyPrefix))
		if err != nil {
			continue
		}
		sess := session.Session{ID: id, User: fields["user"], Pod: fields["pod"]}
		if t, err := time.Parse(time.RFC3339Nano, fields["login_time"]); err == nil {
			sess.LoginTime = t
		}
		if t, err := time.Parse(time.RFC3339Nano, fields["last_activity"]); err == nil {
			sess.LastActivity = t
		}
		out = append(out, sess)
	}
	return out, nil
}

// Count returns the number of live sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	keys, err := s.sessionKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear removes every session and reports how many were dropped.
func (s *Store) Clear(ctx context.Context) (int, error) {
	keys, err := s.sessionKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *Store) sessionKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
