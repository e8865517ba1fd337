package v1

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/tinoosan/draingate/internal/errs"
)

// index is the stand-in for application handlers behind the gate. Anything
// reaching it has already been admitted and session-tracked.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	resp := indexResponse{Message: "welcome", Pod: s.opts.Pod}
	if id, ok := r.Context().Value(ctxKeySessionID).(uuid.UUID); ok {
		resp.SessionID = id.String()
	}
	toJSON(w, http.StatusOK, resp)
}

// logout tears down the caller's session. reason=drain marks a logout that
// followed a drain notification, which feeds the graceful-logout counter.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "manual"
	}

	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			if err := s.sessions.Delete(r.Context(), id); err != nil && !errors.Is(err, errs.ErrNotFound) {
				s.log.Warn("session delete failed", "err", err)
			} else if reason == "drain" {
				gracefulLogouts.Inc()
			}
			s.refreshSessionGauge(r.Context())
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	toJSON(w, http.StatusOK, logoutResponse{Status: "logged_out", Reason: reason})
}
