package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nomis52/activityboard/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type mockConfigProvider struct {
	config *config.Config
}

func (m *mockConfigProvider) Config() *config.Config {
	return m.config
}

func TestConfigHandler(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.URL = "https://school.example.com/api"
	cfg.Board.FadeDelay = 150 * time.Millisecond

	handler := NewConfigHandler(&mockConfigProvider{config: &cfg})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))

	var resp config.Config
	require.NoError(t, yaml.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, "https://school.example.com/api", resp.Backend.URL)
	assert.Equal(t, 150*time.Millisecond, resp.Board.FadeDelay)
	assert.Equal(t, 5*time.Second, resp.Board.MessageTTL)
}
