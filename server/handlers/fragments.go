package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nomis52/activityboard/board"
)

// Fragment selects which region a FragmentHandler serves.
type Fragment func(board.Snapshot) []byte

// ActivitiesFragment is the list region.
func ActivitiesFragment(s board.Snapshot) []byte { return []byte(s.List) }

// SelectorFragment is the activity selector options.
func SelectorFragment(s board.Snapshot) []byte { return []byte(s.Selector) }

// MessageFragment is the status message region.
func MessageFragment(s board.Snapshot) []byte { return []byte(s.MessageRegion) }

// FragmentHandler serves one region of the session's board as it is now,
// without fetching. Fragments are only served to existing sessions.
type FragmentHandler struct {
	logger   *slog.Logger
	sessions SessionResolver
	fragment Fragment
}

// NewFragmentHandler creates a new FragmentHandler.
func NewFragmentHandler(logger *slog.Logger, sessions SessionResolver, fragment Fragment) *FragmentHandler {
	return &FragmentHandler{
		logger:   logger,
		sessions: sessions,
		fragment: fragment,
	}
}

// ServeHTTP implements http.Handler.
func (h *FragmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Lookup(r)
	if !ok {
		h.logger.Debug("no session for request", "path", r.URL.Path)
		http.Error(w, "no session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(h.fragment(session.Board.Snapshot()))
}
