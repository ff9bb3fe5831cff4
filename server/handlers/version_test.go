package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nomis52/activityboard/buildinfo"
	"github.com/nomis52/activityboard/server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPropertiesProvider struct {
	props types.ServerProperties
}

func (m *mockPropertiesProvider) Properties() types.ServerProperties {
	return m.props
}

func TestVersionHandler(t *testing.T) {
	started := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	provider := &mockPropertiesProvider{props: types.ServerProperties{
		Build:     buildinfo.Get(),
		StartedAt: started,
		Hostname:  "board-1",
		Backend:   "http://localhost:8000",
		Sessions:  3,
	}}

	w := httptest.NewRecorder()
	NewVersionHandler(provider).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp types.ServerProperties
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dev", resp.Build.Version)
	assert.Equal(t, "board-1", resp.Hostname)
	assert.Equal(t, 3, resp.Sessions)
	assert.True(t, started.Equal(resp.StartedAt))
}
