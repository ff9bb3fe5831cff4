// Package render turns an activity collection into board markup.
//
// Every function here is pure: the same collection and options always give
// the same markup. The board calls them after each fetch or mutation and
// swaps the result in wholesale, so there is no incremental patching and no
// stale card or option can survive a refresh.
//
// All values are escaped by html/template.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/nomis52/activityboard/activity"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

// RemovePath is the form action used by participant remove controls.
const RemovePath = "/participants/remove"

// Options control the parts of the list markup that are not derived from
// the collection.
type Options struct {
	// Removing marks badges that are fading out ahead of a removal.
	Removing RemovingSet
	// Disabled renders every remove control disabled.
	Disabled bool
}

// RemovingSet holds (activity, email) pairs marked as being removed.
type RemovingSet map[Participant]bool

// Participant identifies one badge on the board.
type Participant struct {
	Activity string
	Email    string
}

type badge struct {
	Email     string
	Removing  bool
	RemoveURL string
}

type card struct {
	Name        string
	Description string
	Schedule    string
	SpotsLeft   int
	Badges      []badge
}

type option struct {
	Name     string
	Selected bool
}

// RemoveURL returns the URL a remove control posts to.
func RemoveURL(activityName, email string) string {
	q := url.Values{}
	q.Set("activity", activityName)
	q.Set("email", email)
	return RemovePath + "?" + q.Encode()
}

// Activities renders one card per activity in collection order.
func Activities(c activity.Collection, opts Options) (template.HTML, error) {
	cards := make([]card, 0, c.Len())
	for _, a := range c.All() {
		badges := make([]badge, 0, len(a.Participants))
		for _, email := range a.Participants {
			badges = append(badges, badge{
				Email:     email,
				Removing:  opts.Removing[Participant{Activity: a.Name, Email: email}],
				RemoveURL: RemoveURL(a.Name, email),
			})
		}
		cards = append(cards, card{
			Name:        a.Name,
			Description: a.Description,
			Schedule:    a.Schedule,
			SpotsLeft:   a.SpotsLeft(),
			Badges:      badges,
		})
	}
	return execute("activities", struct {
		Cards    []card
		Disabled bool
	}{cards, opts.Disabled})
}

// Failure renders the notice shown in place of the list when a fetch fails.
func Failure() template.HTML {
	html, err := execute("failure", nil)
	if err != nil {
		// The template has no inputs; this only fails if it is missing.
		panic(err)
	}
	return html
}

// Selector renders the placeholder option followed by one option per name.
func Selector(names []string, selected string) (template.HTML, error) {
	options := make([]option, len(names))
	for i, name := range names {
		options[i] = option{Name: name, Selected: name == selected && selected != ""}
	}
	return execute("selector", struct{ Options []option }{options})
}

// MessageKind is the visual class of a status message.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is the state of the status message region.
type Message struct {
	Text    string
	Kind    MessageKind
	Visible bool
}

// MessageRegion renders the status message region.
func MessageRegion(m Message) (template.HTML, error) {
	class := string(m.Kind)
	if !m.Visible {
		if class == "" {
			class = "hidden"
		} else {
			class += " hidden"
		}
	}
	return execute("message", struct {
		Class string
		Text  string
		Live  bool
	}{class, m.Text, m.Visible})
}

// Form holds the signup form values.
type Form struct {
	Activity string
	Email    string
}

// PageData is everything the full board page needs.
type PageData struct {
	Title     string
	List      template.HTML
	Selector  template.HTML
	Message   template.HTML
	Form      Form
	CSRFField template.HTML
	Busy      bool
	// HideMessageAfter is how long the visible message has left before it
	// hides. Zero means no hide timer is needed.
	HideMessageAfter time.Duration
}

// Page writes the full board page.
func Page(w io.Writer, data PageData) error {
	return templates.ExecuteTemplate(w, "page", struct {
		PageData
		HideMessageAfter int64
	}{data, data.HideMessageAfter.Milliseconds()})
}

// ConfirmData is the removal confirmation prompt.
type ConfirmData struct {
	Title     string
	Activity  string
	Email     string
	CSRFField template.HTML
}

// ConfirmQuestion is the yes/no prompt shown before a removal.
func ConfirmQuestion(activityName, email string) string {
	return fmt.Sprintf("Remove %s from %s?", email, activityName)
}

// Confirm writes the removal confirmation page.
func Confirm(w io.Writer, data ConfirmData) error {
	return templates.ExecuteTemplate(w, "confirm", struct {
		ConfirmData
		Question string
	}{data, ConfirmQuestion(data.Activity, data.Email)})
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}
