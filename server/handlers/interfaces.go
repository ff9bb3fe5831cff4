// Package handlers provides HTTP handlers for the activityboard server.
//
// Each handler is in its own file and implements http.Handler.
// Handlers use interfaces to access server dependencies, avoiding
// circular imports.
package handlers

import (
	"net/http"

	"github.com/nomis52/activityboard/config"
	"github.com/nomis52/activityboard/logging"
	"github.com/nomis52/activityboard/server/sessions"
	"github.com/nomis52/activityboard/server/types"
)

// SessionResolver finds the session a request belongs to. Resolve starts
// one when there is none; Lookup only finds existing sessions and is used by
// the read-only endpoints.
type SessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (*sessions.Session, error)
	Lookup(r *http.Request) (*sessions.Session, bool)
}

// ConfigProvider provides access to the current board configuration.
type ConfigProvider interface {
	Config() *config.Config
}

// Reloader can reload its configuration.
type Reloader interface {
	Reload() error
}

// ConsoleProvider returns the captured log trace of a session.
type ConsoleProvider interface {
	Lines(sessionID string) []logging.LogEntry
}

// PropertiesProvider describes the running server.
type PropertiesProvider interface {
	Properties() types.ServerProperties
}
