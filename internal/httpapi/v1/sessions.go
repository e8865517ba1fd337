package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/draingate/internal/errs"
	"github.com/tinoosan/draingate/internal/session"
)

type ctxKey string

const ctxKeySessionID ctxKey = "sessionID"

const sessionCookie = "session_id"

// trackSession creates or refreshes the caller's session on every gated
// request. Bypass paths (probes, admin, metrics, the event stream) are not
// tracked; logout manages its own session teardown.
func (s *Server) trackSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.gate.Bypassed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			id, created := s.ensureSession(w, r)
			if id != uuid.Nil {
				ctx := context.WithValue(r.Context(), ctxKeySessionID, id)
				r = r.WithContext(ctx)
			}
			if created {
				s.refreshSessionGauge(r.Context())
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ensureSession returns the request's session ID, creating a session (and
// setting the cookie) when the request carries none. Store errors are logged
// and do not fail the request; session tracking is best effort.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	now := time.Now().UTC()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			err := s.sessions.Touch(r.Context(), id, now)
			if err == nil {
				return id, false
			}
			if !errors.Is(err, errs.ErrNotFound) {
				s.log.Warn("session touch failed", "err", err)
				return id, false
			}
			// Expired under the client; recreate with the same ID so
			// the cookie stays valid.
			if err := s.createSession(r.Context(), id, now); err != nil {
				s.log.Warn("session recreate failed", "err", err)
				return id, false
			}
			return id, true
		}
	}
	id := uuid.New()
	if err := s.createSession(r.Context(), id, now); err != nil {
		s.log.Warn("session create failed", "err", err)
		return uuid.Nil, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}

func (s *Server) createSession(ctx context.Context, id uuid.UUID, now time.Time) error {
	err := s.sessions.Create(ctx, session.Session{
		ID:           id,
		User:         "anonymous",
		Pod:          s.opts.Pod,
		LoginTime:    now,
		LastActivity: now,
	})
	if err != nil {
		return err
	}
	loginsTotal.Inc()
	return nil
}

func (s *Server) refreshSessionGauge(ctx context.Context) {
	if n, err := s.sessions.Count(ctx); err == nil {
		activeSessions.Set(float64(n))
	}
}
