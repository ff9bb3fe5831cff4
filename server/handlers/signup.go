package handlers

import (
	"log/slog"
	"net/http"
	"strings"
)

// SignupHandler handles the signup form.
type SignupHandler struct {
	logger   *slog.Logger
	sessions SessionResolver
}

// NewSignupHandler creates a new SignupHandler.
func NewSignupHandler(logger *slog.Logger, sessions SessionResolver) *SignupHandler {
	return &SignupHandler{
		logger:   logger,
		sessions: sessions,
	}
}

// ServeHTTP implements http.Handler. The outcome is shown in the session's
// message region on the page the browser is redirected to.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Resolve(w, r)
	if err != nil {
		h.logger.Error("failed to resolve session", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}

	activityName := r.PostForm.Get("activity")
	email := strings.TrimSpace(r.PostForm.Get("email"))

	msg := session.Board.SubmitSignup(r.Context(), activityName, email)
	h.logger.Debug("signup submitted", "activity", activityName, "outcome", msg.Kind)

	redirectHome(w, r)
}
