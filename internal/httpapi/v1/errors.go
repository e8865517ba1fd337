package v1

import "net/http"

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func forbidden(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusForbidden, msg, "forbidden")
}
