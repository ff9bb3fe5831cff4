package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/nomis52/activityboard/board"
	"github.com/nomis52/activityboard/render"
)

// RemoveHandler handles the remove control on participant badges. The first
// post answers with a yes/no confirmation page; the answer is posted back
// with a confirm field.
type RemoveHandler struct {
	logger   *slog.Logger
	sessions SessionResolver
	title    string
}

// NewRemoveHandler creates a new RemoveHandler.
func NewRemoveHandler(logger *slog.Logger, sessions SessionResolver, title string) *RemoveHandler {
	if title == "" {
		title = DefaultTitle
	}
	return &RemoveHandler{
		logger:   logger,
		sessions: sessions,
		title:    title,
	}
}

// ServeHTTP implements http.Handler.
func (h *RemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	activityName := r.Form.Get("activity")
	email := r.Form.Get("email")
	if activityName == "" || email == "" {
		http.Error(w, "activity and email are required", http.StatusBadRequest)
		return
	}

	answer := r.PostForm.Get("confirm")
	switch answer {
	case "":
		h.confirm(w, r, activityName, email)
		return
	case "yes", "no":
	default:
		http.Error(w, "confirm must be yes or no", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Resolve(w, r)
	if err != nil {
		h.logger.Error("failed to resolve session", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}

	confirmer := board.ConfirmFunc(func(string) bool { return answer == "yes" })
	if _, removed := session.Board.RemoveParticipant(r.Context(), activityName, email, confirmer); !removed {
		h.logger.Debug("removal declined", "activity", activityName)
	}

	redirectHome(w, r)
}

func (h *RemoveHandler) confirm(w http.ResponseWriter, r *http.Request, activityName, email string) {
	var buf bytes.Buffer
	err := render.Confirm(&buf, render.ConfirmData{
		Title:     h.title,
		Activity:  activityName,
		Email:     email,
		CSRFField: csrf.TemplateField(r),
	})
	if err != nil {
		h.logger.Error("failed to render confirmation", "error", err)
		http.Error(w, "failed to render confirmation", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, template.HTML(buf.String()))
}
