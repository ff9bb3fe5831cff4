package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nomis52/activityboard/config"
	"github.com/stretchr/testify/assert"
)

type mockReloader struct {
	err error
	cfg config.Config
}

func (m *mockReloader) Reload() error {
	return m.err
}

func (m *mockReloader) Config() *config.Config {
	return &m.cfg
}

func TestReloadHandler_Success(t *testing.T) {
	reloader := &mockReloader{cfg: config.Default()}
	handler := NewReloadHandler(discardLogger(), reloader)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reload", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"backend":"http://localhost:8000"}`, w.Body.String())
}

func TestReloadHandler_Error(t *testing.T) {
	reloader := &mockReloader{err: errors.New("config file not found")}
	handler := NewReloadHandler(discardLogger(), reloader)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reload", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "config file not found")
}
