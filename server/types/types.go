// Package types provides shared types for the server package and its subpackages.
package types

import (
	"time"

	"github.com/nomis52/activityboard/buildinfo"
)

// ServerProperties holds metadata about the running server instance.
type ServerProperties struct {
	Build     buildinfo.Properties `json:"build"`
	StartedAt time.Time            `json:"started_at"`
	Hostname  string               `json:"hostname"`
	// Backend is the activities API the boards talk to.
	Backend string `json:"backend"`
	// Sessions is the number of live sessions.
	Sessions int `json:"sessions"`
}
