package v1

import (
	"net/http"
	"strconv"

	"github.com/tinoosan/draingate/internal/gate"
)

// admission runs every request through the gate before routing. Bypass paths
// pass untouched; standard pods reject everything else while maintenance is
// active. Draining alone never rejects here, it only flips readiness.
func (s *Server) admission() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.gate.Evaluate(r.Context(), r.URL.Path) == gate.Reject {
				s.reject(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// reject answers with the maintenance response: a stable status code, a
// machine-readable retry hint and cache suppression so intermediaries do not
// pin the outage page.
func (s *Server) reject(w http.ResponseWriter) {
	retryAfter := int(s.opts.RetryAfter.Seconds())
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	toJSON(w, http.StatusServiceUnavailable, rejectResponse{
		Error:             "service undergoing scheduled maintenance",
		Code:              "maintenance",
		RetryAfterSeconds: retryAfter,
	})
}
