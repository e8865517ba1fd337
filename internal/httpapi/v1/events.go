package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const heartbeatInterval = 30 * time.Second

// events streams drain notices to the client as Server-Sent Events. Clients
// connect on page load and get warned before a drain or maintenance window
// logs them out. One-way push is all that is needed here, which is what SSE
// is for.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	ch := s.drainCtl.Subscribe()
	defer s.drainCtl.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "event: connected\ndata: {\"message\":\"event stream established\"}\n\n")
	fl.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case n := <-ch:
			data, err := json.Marshal(n)
			if err != nil {
				s.log.Warn("drain notice marshal failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: drain\ndata: %s\n\n", data)
			fl.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			fl.Flush()
		}
	}
}
