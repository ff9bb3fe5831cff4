package handlers

import (
	"log/slog"
	"net/http"
)

// DefaultTitle is the heading of the board page.
const DefaultTitle = "Mergington High School Activities"

// PageHandler serves the board page. Every load fetches the activities
// again, so the page always shows the backend's current state.
type PageHandler struct {
	logger   *slog.Logger
	sessions SessionResolver
	title    string
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(logger *slog.Logger, sessions SessionResolver, title string) *PageHandler {
	if title == "" {
		title = DefaultTitle
	}
	return &PageHandler{
		logger:   logger,
		sessions: sessions,
		title:    title,
	}
}

// ServeHTTP implements http.Handler.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Resolve(w, r)
	if err != nil {
		h.logger.Error("failed to resolve session", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}

	// A failed fetch is already rendered as the failure notice.
	_ = session.Board.Refresh(r.Context())

	writePage(w, r, h.logger, h.title, session.Board.Snapshot())
}
