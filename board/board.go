package board

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/nomis52/activityboard/activity"
	"github.com/nomis52/activityboard/clients/activityclient"
	"github.com/nomis52/activityboard/render"
)

const (
	// DefaultFadeDelay is how long a badge fades before the removal request.
	DefaultFadeDelay = 300 * time.Millisecond
	// DefaultMessageTTL is how long a status message stays visible.
	DefaultMessageTTL = 5 * time.Second
)

// User-facing fallback messages.
const (
	SignupFallback       = "An error occurred"
	SignupFailed         = "Failed to sign up. Please try again."
	RemoveFallback       = "Failed to remove participant"
	RemoveFailed         = "Failed to remove participant. Please try again."
	BusyMessage          = "Another update is in progress. Please wait."
	MissingFieldsMessage = "Please choose an activity and enter an email."
)

// Backend is the activities API the board talks to.
type Backend interface {
	List(ctx context.Context) (activity.Collection, error)
	Signup(ctx context.Context, activityName, email string) (string, error)
	Remove(ctx context.Context, activityName, email string) (string, error)
}

// Confirmer answers the yes/no prompt shown before a removal.
type Confirmer interface {
	Confirm(question string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(question string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(question string) bool {
	return f(question)
}

// Always is a Confirmer that accepts every prompt.
var Always = ConfirmFunc(func(string) bool { return true })

// Board is one activity board instance.
type Board struct {
	backend    Backend
	logger     *slog.Logger
	metrics    *Metrics
	fadeDelay  time.Duration
	messageTTL time.Duration

	// afterFunc and sleep are replaced in tests.
	afterFunc func(d time.Duration, f func()) (stop func() bool)
	sleep     func(ctx context.Context, d time.Duration) error

	// mutating is held for the duration of a signup or removal.
	mutating sync.Mutex

	mu          sync.Mutex
	collection  activity.Collection
	loaded      bool
	failed      bool
	refreshedAt time.Time
	removing    render.RemovingSet
	busy        bool
	form        render.Form
	message     render.Message
	messageGen  uint64
	stopHide    func() bool
	hideAt      time.Time
	list        template.HTML
	selector    template.HTML
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger. Caught errors are traced here.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithMetrics records operation outcomes.
func WithMetrics(m *Metrics) Option {
	return func(b *Board) {
		b.metrics = m
	}
}

// WithFadeDelay sets the wait between marking a badge and removing it.
func WithFadeDelay(d time.Duration) Option {
	return func(b *Board) {
		if d >= 0 {
			b.fadeDelay = d
		}
	}
}

// WithMessageTTL sets how long a status message stays visible.
func WithMessageTTL(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.messageTTL = d
		}
	}
}

// New creates a Board backed by backend. Nothing is fetched until Refresh.
func New(backend Backend, opts ...Option) *Board {
	b := &Board{
		backend:    backend,
		logger:     slog.Default(),
		fadeDelay:  DefaultFadeDelay,
		messageTTL: DefaultMessageTTL,
		afterFunc:  realAfterFunc,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.mu.Lock()
	b.rerenderLocked()
	b.mu.Unlock()
	return b
}

// Refresh fetches the activities and rebuilds the list and selector. On
// failure the list is replaced by the failure notice, the selector is left
// alone and the error is returned. Either way the rebuild is complete when
// Refresh returns.
func (b *Board) Refresh(ctx context.Context) error {
	collection, err := b.backend.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.removing = nil
	if err != nil {
		b.failed = true
		b.rerenderLocked()
		b.logger.Error("error fetching activities", "error", err)
		b.metrics.observe(opRefresh, outcomeError)
		return fmt.Errorf("fetching activities: %w", err)
	}

	b.collection = collection
	b.loaded = true
	b.failed = false
	b.refreshedAt = time.Now()
	b.rerenderLocked()
	b.metrics.observe(opRefresh, outcomeSuccess)
	b.metrics.setActivities(collection.Len())
	return nil
}

// SubmitSignup signs email up for activityName and returns the message shown.
func (b *Board) SubmitSignup(ctx context.Context, activityName, email string) render.Message {
	if !b.begin() {
		b.metrics.observe(opSignup, outcomeBusy)
		return b.show(BusyMessage, render.MessageError)
	}
	defer b.end()

	b.mu.Lock()
	b.form = render.Form{Activity: activityName, Email: email}
	b.rerenderLocked()
	b.mu.Unlock()

	if activityName == "" || email == "" {
		b.metrics.observe(opSignup, outcomeError)
		return b.show(MissingFieldsMessage, render.MessageError)
	}

	message, err := b.backend.Signup(ctx, activityName, email)
	if err != nil {
		b.metrics.observe(opSignup, outcomeError)
		if activityclient.IsAPIError(err) {
			return b.show(activityclient.DetailOr(err, SignupFallback), render.MessageError)
		}
		b.logger.Error("error signing up", "activity", activityName, "error", err)
		return b.show(SignupFailed, render.MessageError)
	}

	// The refresh outcome is already on screen; the signup itself succeeded.
	_ = b.Refresh(ctx)

	b.mu.Lock()
	b.form = render.Form{}
	b.rerenderLocked()
	b.mu.Unlock()

	b.metrics.observe(opSignup, outcomeSuccess)
	return b.show(message, render.MessageSuccess)
}

// RemoveParticipant removes email from activityName once confirm accepts the
// prompt. It returns false, with no request made and nothing changed, when
// the prompt is declined or confirm is nil.
func (b *Board) RemoveParticipant(ctx context.Context, activityName, email string, confirm Confirmer) (render.Message, bool) {
	if confirm == nil || !confirm.Confirm(render.ConfirmQuestion(activityName, email)) {
		b.metrics.observe(opRemove, outcomeDeclined)
		return render.Message{}, false
	}

	if !b.begin() {
		b.metrics.observe(opRemove, outcomeBusy)
		return b.show(BusyMessage, render.MessageError), true
	}
	defer b.end()

	b.mu.Lock()
	if b.removing == nil {
		b.removing = make(render.RemovingSet)
	}
	b.removing[render.Participant{Activity: activityName, Email: email}] = true
	b.rerenderLocked()
	b.mu.Unlock()

	if err := b.sleep(ctx, b.fadeDelay); err != nil {
		b.unmark(activityName, email)
		b.metrics.observe(opRemove, outcomeError)
		b.logger.Error("error removing participant", "activity", activityName, "error", err)
		return b.show(RemoveFailed, render.MessageError), true
	}

	message, err := b.backend.Remove(ctx, activityName, email)
	if err != nil {
		b.metrics.observe(opRemove, outcomeError)
		text := RemoveFailed
		if activityclient.IsAPIError(err) {
			text = activityclient.DetailOr(err, RemoveFallback)
		} else {
			b.logger.Error("error removing participant", "activity", activityName, "error", err)
		}
		// Re-render from the server so the faded badge does not linger.
		if rerr := b.Refresh(ctx); rerr != nil {
			b.unmark(activityName, email)
		}
		return b.show(text, render.MessageError), true
	}

	_ = b.Refresh(ctx)
	b.metrics.observe(opRemove, outcomeSuccess)
	return b.show(message, render.MessageSuccess), true
}

// Snapshot returns a copy of what the board currently shows.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	message, err := render.MessageRegion(b.message)
	if err != nil {
		b.logger.Error("error rendering message", "error", err)
	}

	var hideIn time.Duration
	if b.message.Visible {
		hideIn = time.Until(b.hideAt)
		if hideIn < 0 {
			hideIn = 0
		}
	}

	return Snapshot{
		List:          b.list,
		Selector:      b.selector,
		MessageRegion: message,
		Message:       b.message,
		HideMessageIn: hideIn,
		Form:          b.form,
		Busy:          b.busy,
		Loaded:        b.loaded,
		Failed:        b.failed,
		Activities:    b.collection,
		RefreshedAt:   b.refreshedAt,
	}
}

// begin claims the mutation slot and renders controls disabled.
func (b *Board) begin() bool {
	if !b.mutating.TryLock() {
		return false
	}
	b.mu.Lock()
	b.busy = true
	b.rerenderLocked()
	b.mu.Unlock()
	return true
}

func (b *Board) end() {
	b.mu.Lock()
	b.busy = false
	b.rerenderLocked()
	b.mu.Unlock()
	b.mutating.Unlock()
}

func (b *Board) unmark(activityName, email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.removing, render.Participant{Activity: activityName, Email: email})
	b.rerenderLocked()
}

// rerenderLocked rebuilds the list and selector from the current state.
// b.mu must be held.
func (b *Board) rerenderLocked() {
	if b.failed {
		b.list = render.Failure()
	} else {
		list, err := render.Activities(b.collection, render.Options{
			Removing: b.removing,
			Disabled: b.busy,
		})
		if err != nil {
			b.logger.Error("error rendering activities", "error", err)
			list = render.Failure()
		}
		b.list = list
	}

	selector, err := render.Selector(b.collection.Names(), b.form.Activity)
	if err != nil {
		b.logger.Error("error rendering selector", "error", err)
		return
	}
	b.selector = selector
}

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
