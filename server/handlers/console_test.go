package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nomis52/activityboard/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandler(t *testing.T) {
	resolver, _ := newTestSessions(newFakeBackend())
	console := logging.NewConsole(10)

	w := httptest.NewRecorder()
	session, err := resolver.Resolve(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	console.Add(session.ID, logging.LogEntry{Level: "ERROR", Message: "error fetching activities"})
	console.Add("someone-else", logging.LogEntry{Level: "INFO", Message: "not mine"})

	req := httptest.NewRequest(http.MethodGet, "/debug/console", nil)
	req.AddCookie(sessionCookie(t, w))
	rw := httptest.NewRecorder()
	NewConsoleHandler(discardLogger(), resolver, console).ServeHTTP(rw, req)

	assert.Equal(t, http.StatusOK, rw.Code)

	var resp ConsoleResponse
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	assert.Equal(t, session.ID, resp.Session)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "error fetching activities", resp.Lines[0].Message)
}

func TestConsoleHandler_EmptyTrace(t *testing.T) {
	resolver, _ := newTestSessions(newFakeBackend())

	w := httptest.NewRecorder()
	_, err := resolver.Resolve(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/debug/console", nil)
	req.AddCookie(sessionCookie(t, w))
	rw := httptest.NewRecorder()
	NewConsoleHandler(discardLogger(), resolver, logging.NewConsole(0)).ServeHTTP(rw, req)

	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"lines":[]`)
}

func TestConsoleHandler_NoSession(t *testing.T) {
	resolver, store := newTestSessions(newFakeBackend())

	w := httptest.NewRecorder()
	NewConsoleHandler(discardLogger(), resolver, logging.NewConsole(0)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/console", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 0, store.Len())
}
