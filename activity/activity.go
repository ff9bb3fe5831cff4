package activity

import "fmt"

// Activity is a named event with a participant capacity and a roster.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns the remaining capacity. It is zero or negative when the
// activity is full or over capacity.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

func (a Activity) String() string {
	return fmt.Sprintf("%s (%s) %d/%d", a.Name, a.Schedule, len(a.Participants), a.MaxParticipants)
}
