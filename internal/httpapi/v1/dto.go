package v1

import "time"

type rejectResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type readyResponse struct {
	Status          string `json:"status"`
	PodType         string `json:"pod_type,omitempty"`
	MaintenanceMode bool   `json:"maintenance_mode,omitempty"`
	Message         string `json:"message,omitempty"`
}

type indexResponse struct {
	Message   string `json:"message"`
	Pod       string `json:"pod"`
	SessionID string `json:"session_id,omitempty"`
}

type logoutResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type adminStatusResponse struct {
	Role            string `json:"role"`
	MaintenanceMode bool   `json:"maintenance_mode"`
	DrainPhase      string `json:"drain_phase"`
	ActiveSessions  int    `json:"active_sessions"`
	Backend         string `json:"backend"`
}

type toggleResponse struct {
	MaintenanceMode bool `json:"maintenance_mode"`
}

type sessionResponse struct {
	SessionID       string    `json:"session_id"`
	User            string    `json:"user"`
	Pod             string    `json:"pod"`
	LoginTime       time.Time `json:"login_time"`
	LastActivity    time.Time `json:"last_activity"`
	DurationSeconds int       `json:"duration_seconds"`
}

type adminUsersResponse struct {
	Backend  string            `json:"backend"`
	Sessions []sessionResponse `json:"sessions"`
}
