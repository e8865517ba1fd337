package postgres

// Package postgres provides a pgx-backed implementation of the session store
// and the shared maintenance flag for deployments that already run Postgres
// and do not want a second datastore. The expected schema lives under
// db/migrations.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/draingate/internal/errs"
	"github.com/tinoosan/draingate/internal/session"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string, ttl time.Duration) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, ttl: ttl}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Name implements gate.Provider.
func (s *Store) Name() string { return "postgres" }

// Active reads the shared maintenance flag; no row means inactive.
func (s *Store) Active(ctx context.Context) (bool, error) {
	var active bool
	err := s.pool.QueryRow(ctx, `select active from maintenance where id = 1`).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrStateUnavailable, err)
	}
	return active, nil
}

// SetActive upserts the shared maintenance flag. Failures surface as
// ErrToggleFailed rather than degrading to another tier.
func (s *Store) SetActive(ctx context.Context, active bool) error {
	_, err := s.pool.Exec(ctx, `
		insert into maintenance (id, active) values (1, $1)
		on conflict (id) do update set active = excluded.active
	`, active)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrToggleFailed, err)
	}
	return nil
}

// Create persists a session row.
func (s *Store) Create(ctx context.Context, sess session.Session) error {
	_, err := s.pool.Exec(ctx, `
		insert into sessions (id, username, pod, login_time, last_activity, expires_at)
		values ($1, $2, $3, $4, $5, $6)
	`, sess.ID, sess.User, sess.Pod, sess.LoginTime, sess.LastActivity, sess.LastActivity.Add(s.ttl))
	return err
}

// Touch refreshes activity and expiry for a session.
func (s *Store) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		update sessions set last_activity = $2, expires_at = $3 where id = $1
	`, id, at, at.Add(s.ttl))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a session row.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `delete from sessions where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// List returns all unexpired sessions across every pod.
func (s *Store) List(ctx context.Context) ([]session.Session, error) {
	rows, err := s.pool.Query(ctx, `
		select id, username, pod, login_time, last_activity
		from sessions
		where expires_at > now()
		order by login_time
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]session.Session, 0)
	for rows.Next() {
		var sess session.Session
		if err := rows.Scan(&sess.ID, &sess.User, &sess.Pod, &sess.LoginTime, &sess.LastActivity); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Count returns the number of unexpired sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `select count(*) from sessions where expires_at > now()`).Scan(&n)
	return n, err
}

// Clear deletes all sessions and reports how many were dropped.
func (s *Store) Clear(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `delete from sessions`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
