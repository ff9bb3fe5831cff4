package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nomis52/activityboard/activity"
	"github.com/nomis52/activityboard/board"
	"github.com/nomis52/activityboard/render"
)

// MessageResponse is the status message part of BoardResponse.
type MessageResponse struct {
	Text  string             `json:"text"`
	Kind  render.MessageKind `json:"kind,omitempty"`
	State board.MessageState `json:"state"`
	// HideInMS is how long a visible message has left, in milliseconds.
	HideInMS int64 `json:"hide_in_ms"`
}

// FormResponse holds the signup form values.
type FormResponse struct {
	Activity string `json:"activity"`
	Email    string `json:"email"`
}

// BoardResponse is the JSON response for /api/board.
type BoardResponse struct {
	Activities  activity.Collection `json:"activities"`
	Message     MessageResponse     `json:"message"`
	Form        FormResponse        `json:"form"`
	Busy        bool                `json:"busy"`
	Loaded      bool                `json:"loaded"`
	Failed      bool                `json:"failed"`
	RefreshedAt *time.Time          `json:"refreshed_at,omitempty"`
}

// BoardHandler returns the session's board as JSON. Requests without a
// live session get a 404.
type BoardHandler struct {
	logger   *slog.Logger
	sessions SessionResolver
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(logger *slog.Logger, sessions SessionResolver) *BoardHandler {
	return &BoardHandler{
		logger:   logger,
		sessions: sessions,
	}
}

// ServeHTTP implements http.Handler.
func (h *BoardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Lookup(r)
	if !ok {
		h.logger.Debug("no session for request", "path", r.URL.Path)
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no session"})
		return
	}

	snap := session.Board.Snapshot()
	resp := BoardResponse{
		Activities: snap.Activities,
		Message: MessageResponse{
			Text:     snap.Message.Text,
			Kind:     snap.Message.Kind,
			State:    snap.MessageState(),
			HideInMS: snap.HideMessageIn.Milliseconds(),
		},
		Form: FormResponse{
			Activity: snap.Form.Activity,
			Email:    snap.Form.Email,
		},
		Busy:   snap.Busy,
		Loaded: snap.Loaded,
		Failed: snap.Failed,
	}
	if !snap.RefreshedAt.IsZero() {
		resp.RefreshedAt = &snap.RefreshedAt
	}

	writeJSON(w, http.StatusOK, resp)
}
