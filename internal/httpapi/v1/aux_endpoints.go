package v1

import (
	"net/http"

	"github.com/tinoosan/draingate/internal/gate"
)

// healthz is the liveness probe: 200 for as long as the process runs. It says
// nothing about traffic; a pod in maintenance is alive and must not restart.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

// readyz is the readiness probe. Admin pods always report ready so operators
// keep access during maintenance; standard pods leave rotation while draining
// or in maintenance.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	switch s.gate.Readiness(r.Context()) {
	case gate.NotReadyDraining:
		toJSON(w, http.StatusServiceUnavailable, readyResponse{
			Status:  "shutting_down",
			Message: "draining connections gracefully",
		})
	case gate.NotReadyMaintenance:
		toJSON(w, http.StatusServiceUnavailable, readyResponse{
			Status:          "not_ready",
			MaintenanceMode: true,
		})
	default:
		resp := readyResponse{Status: "ready"}
		if s.gate.Role() == gate.RoleAdmin {
			resp.PodType = "admin"
		}
		toJSON(w, http.StatusOK, resp)
	}
}
