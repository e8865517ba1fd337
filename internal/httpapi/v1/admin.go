package v1

import (
	"net/http"
	"time"

	"github.com/tinoosan/draingate/internal/gate"
)

// requireAdmin enforces the role check for restricted admin endpoints.
// Returns false after writing the response when access is denied.
func (s *Server) requireAdmin(w http.ResponseWriter) bool {
	if s.gate.Role() != gate.RoleAdmin {
		forbidden(w, "admin access required")
		return false
	}
	return true
}

// adminStatus reports the control-plane view: maintenance flag, drain phase,
// session count and which backend the counts come from.
func (s *Server) adminStatus(w http.ResponseWriter, r *http.Request) {
	if s.opts.AdminRestricted && !s.requireAdmin(w) {
		return
	}
	count, err := s.sessions.Count(r.Context())
	if err != nil {
		s.log.Warn("session count failed", "err", err)
	}
	toJSON(w, http.StatusOK, adminStatusResponse{
		Role:            s.gate.Role().String(),
		MaintenanceMode: s.gate.MaintenanceActive(r.Context()),
		DrainPhase:      s.drainCtl.Phase().String(),
		ActiveSessions:  count,
		Backend:         s.opts.Backend,
	})
}

// adminToggle flips the maintenance flag through the configured toggler.
// Toggling is last-write-wins; a failed persist is surfaced to the caller
// instead of silently writing a lower tier.
func (s *Server) adminToggle(w http.ResponseWriter, r *http.Request) {
	if s.opts.AdminRestricted && !s.requireAdmin(w) {
		return
	}
	target := !s.gate.MaintenanceActive(r.Context())
	if err := s.toggler.SetActive(r.Context(), target); err != nil {
		s.log.Error("maintenance toggle failed", "target", target, "err", err)
		writeErr(w, http.StatusBadGateway, "could not persist maintenance flag", "toggle_failed")
		return
	}
	s.log.Info("maintenance toggled", "active", target)
	toJSON(w, http.StatusOK, toggleResponse{MaintenanceMode: target})
}

// adminUsers lists tracked sessions. Always admin-only: it exposes user
// activity. The backend field tells the operator whether the listing is
// cluster-wide (redis/postgres) or local to this pod (memory).
func (s *Server) adminUsers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w) {
		return
	}
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		s.log.Error("session list failed", "err", err)
		writeErr(w, http.StatusInternalServerError, "could not list sessions", "")
		return
	}
	now := time.Now().UTC()
	resp := adminUsersResponse{Backend: s.opts.Backend, Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sessionResponse{
			SessionID:       sess.ID.String(),
			User:            sess.User,
			Pod:             sess.Pod,
			LoginTime:       sess.LoginTime,
			LastActivity:    sess.LastActivity,
			DurationSeconds: int(now.Sub(sess.LoginTime).Seconds()),
		})
	}
	toJSON(w, http.StatusOK, resp)
}
