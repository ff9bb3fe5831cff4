package handlers

import "net/http"

// HandleHealth is a simple health check handler that returns "ok". It does
// not contact the backend; a down backend shows up on the board instead.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
