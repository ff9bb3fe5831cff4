package handlers

import (
	"log/slog"
	"net/http"
)

// ReloadResponse is returned after a successful reload.
type ReloadResponse struct {
	Backend string `json:"backend"`
}

// ReloadableConfig can reload its configuration and report the result.
type ReloadableConfig interface {
	Reloader
	ConfigProvider
}

// ReloadHandler re-reads the board configuration from disk. Every session
// talks to the reloaded backend from its next request on.
type ReloadHandler struct {
	logger   *slog.Logger
	reloader ReloadableConfig
}

// NewReloadHandler creates a new ReloadHandler.
func NewReloadHandler(logger *slog.Logger, reloader ReloadableConfig) *ReloadHandler {
	return &ReloadHandler{
		logger:   logger,
		reloader: reloader,
	}
}

// ServeHTTP implements http.Handler.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("reloading configuration")

	if err := h.reloader.Reload(); err != nil {
		h.logger.Error("failed to reload configuration", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "failed to reload configuration: " + err.Error(),
		})
		return
	}

	backend := h.reloader.Config().Backend.URL
	h.logger.Info("configuration reloaded", "backend", backend)
	writeJSON(w, http.StatusOK, ReloadResponse{Backend: backend})
}
