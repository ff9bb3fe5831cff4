package board

import (
	"html/template"
	"time"

	"github.com/nomis52/activityboard/activity"
	"github.com/nomis52/activityboard/render"
)

// Snapshot is an immutable copy of a board's regions.
type Snapshot struct {
	List          template.HTML
	Selector      template.HTML
	MessageRegion template.HTML
	Message       render.Message
	// HideMessageIn is the time left before a visible message hides.
	HideMessageIn time.Duration
	Form          render.Form
	Busy          bool
	// Loaded is true once any fetch has succeeded.
	Loaded bool
	// Failed is true when the last fetch failed.
	Failed      bool
	Activities  activity.Collection
	RefreshedAt time.Time
}

// MessageState returns the state of the message region in the snapshot.
func (s Snapshot) MessageState() MessageState {
	return stateOf(s.Message)
}
