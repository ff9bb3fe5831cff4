package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/nomis52/activityboard/board"
	"github.com/nomis52/activityboard/render"
)

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeHTML(w http.ResponseWriter, status int, html template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write([]byte(html))
}

// writePage renders the full board page from a snapshot.
func writePage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, title string, snap board.Snapshot) {
	var buf bytes.Buffer
	err := render.Page(&buf, render.PageData{
		Title:            title,
		List:             snap.List,
		Selector:         snap.Selector,
		Message:          snap.MessageRegion,
		Form:             snap.Form,
		CSRFField:        csrf.TemplateField(r),
		Busy:             snap.Busy,
		HideMessageAfter: snap.HideMessageIn,
	})
	if err != nil {
		logger.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, template.HTML(buf.String()))
}

// redirectHome sends the browser back to the board after a form post.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
