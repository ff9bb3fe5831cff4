package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nomis52/activityboard/logging"
)

// ConsoleResponse is the JSON response for /debug/console.
type ConsoleResponse struct {
	Session string             `json:"session"`
	Lines   []logging.LogEntry `json:"lines"`
}

// ConsoleHandler returns the log trace captured for the caller's session.
type ConsoleHandler struct {
	logger   *slog.Logger
	sessions SessionResolver
	console  ConsoleProvider
}

// NewConsoleHandler creates a new ConsoleHandler.
func NewConsoleHandler(logger *slog.Logger, sessions SessionResolver, console ConsoleProvider) *ConsoleHandler {
	return &ConsoleHandler{
		logger:   logger,
		sessions: sessions,
		console:  console,
	}
}

// ServeHTTP implements http.Handler.
func (h *ConsoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Lookup(r)
	if !ok {
		h.logger.Debug("no session for request", "path", r.URL.Path)
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no session"})
		return
	}

	lines := h.console.Lines(session.ID)
	if lines == nil {
		lines = []logging.LogEntry{}
	}
	writeJSON(w, http.StatusOK, ConsoleResponse{
		Session: session.ID,
		Lines:   lines,
	})
}
