package handlers

import (
	"fmt"
	"net/http"

	"github.com/nomis52/activityboard/server/sessions"
)

// SessionCookie names the cookie holding the session id.
const SessionCookie = "activityboard_session"

// SessionStore is the part of sessions.Store the resolver needs.
type SessionStore interface {
	Get(id string) (*sessions.Session, bool)
	GetOrCreate(id string) (*sessions.Session, bool, error)
}

// CookieSessions resolves sessions from the session cookie, setting the
// cookie when a new session is started.
type CookieSessions struct {
	store  SessionStore
	secure bool
}

// NewCookieSessions creates a CookieSessions. secure marks the cookie HTTPS only.
func NewCookieSessions(store SessionStore, secure bool) *CookieSessions {
	return &CookieSessions{
		store:  store,
		secure: secure,
	}
}

// Resolve implements SessionResolver.
func (c *CookieSessions) Resolve(w http.ResponseWriter, r *http.Request) (*sessions.Session, error) {
	var id string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		id = cookie.Value
	}

	session, created, err := c.store.GetOrCreate(id)
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    session.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return session, nil
}

// Lookup implements SessionResolver. It never starts a session.
func (c *CookieSessions) Lookup(r *http.Request) (*sessions.Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return c.store.Get(cookie.Value)
}
