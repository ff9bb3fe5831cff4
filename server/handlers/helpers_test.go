package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/nomis52/activityboard/activity"
	"github.com/nomis52/activityboard/board"
	"github.com/nomis52/activityboard/clients/activityclient"
	"github.com/nomis52/activityboard/server/sessions"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu          sync.Mutex
	activities  []activity.Activity
	listErr     error
	signupErr   error
	signups     []string
	removeCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{activities: []activity.Activity{
		{Name: "Chess Club", Description: "d", Schedule: "Mon", MaxParticipants: 10, Participants: []string{"a@x.com", "b@x.com"}},
		{Name: "Art Club", Description: "paint", Schedule: "Tue", MaxParticipants: 5},
	}}
}

func (f *fakeBackend) List(ctx context.Context) (activity.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return activity.Collection{}, f.listErr
	}
	return activity.NewCollection(f.activities...), nil
}

func (f *fakeBackend) Signup(ctx context.Context, name, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signupErr != nil {
		return "", f.signupErr
	}
	f.signups = append(f.signups, name+"/"+email)
	return "Signed up " + email + " for " + name, nil
}

func (f *fakeBackend) Remove(ctx context.Context, name, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	return "", &activityclient.APIError{StatusCode: 404, Detail: "Student is not signed up"}
}

func (f *fakeBackend) removes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeCalls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSessions(backend board.Backend) (*CookieSessions, *sessions.Store) {
	store := sessions.NewStore(func(string) *board.Board {
		return board.New(backend, board.WithFadeDelay(0), board.WithLogger(discardLogger()))
	})
	return NewCookieSessions(store, false), store
}

// sessionCookie returns the session cookie set on the response.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	require.Fail(t, "no session cookie set")
	return nil
}

func postForm(path string, values url.Values, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}
