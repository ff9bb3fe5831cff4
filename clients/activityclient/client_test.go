package activityclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nomis52/activityboard/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "http", baseURL: "http://localhost:8000"},
		{name: "https with trailing slash", baseURL: "https://activities.example.com/"},
		{name: "missing scheme", baseURL: "localhost:8000", wantErr: true},
		{name: "bad url", baseURL: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.baseURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(client.BaseURL(), "/"))
		})
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse string
		status         int
		wantErr        string
		verifyFn       func(t *testing.T, c activity.Collection)
	}{
		{
			name: "success",
			serverResponse: `{"Chess Club": {"description":"d","schedule":"Mon","max_participants":10,` +
				`"participants":["a@x.com","b@x.com"]}}`,
			status: http.StatusOK,
			verifyFn: func(t *testing.T, c activity.Collection) {
				require.Equal(t, 1, c.Len())
				chess, err := c.Get("Chess Club")
				require.NoError(t, err)
				assert.Equal(t, 8, chess.SpotsLeft())
			},
		},
		{
			name:           "empty",
			serverResponse: `{}`,
			status:         http.StatusOK,
			verifyFn: func(t *testing.T, c activity.Collection) {
				assert.Equal(t, 0, c.Len())
			},
		},
		{
			name:           "invalid json",
			serverResponse: `<html>oops</html>`,
			status:         http.StatusOK,
			wantErr:        "failed to unmarshal response",
		},
		{
			name:           "http error",
			serverResponse: "internal server error",
			status:         http.StatusInternalServerError,
			wantErr:        "unexpected status code: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/activities", r.URL.Path)
				assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
				assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.serverResponse))
			}))
			defer ts.Close()

			client, err := New(ts.URL)
			require.NoError(t, err)

			c, err := client.List(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.verifyFn(t, c)
		})
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		activity       string
		email          string
		wantPath       string
		wantQuery      string
		serverResponse string
		status         int
		wantMessage    string
		wantStatus     int
		wantDetail     string
	}{
		{
			name:           "success",
			activity:       "Chess Club",
			email:          "new.student@mergington.edu",
			wantPath:       "/activities/Chess%20Club/signup",
			wantQuery:      "email=new.student%40mergington.edu",
			serverResponse: `{"message": "Signed up new.student@mergington.edu for Chess Club"}`,
			status:         http.StatusOK,
			wantMessage:    "Signed up new.student@mergington.edu for Chess Club",
		},
		{
			name:           "escapes plus, space and slash",
			activity:       "Art/Design",
			email:          "a+b c@x.com",
			wantPath:       "/activities/Art%2FDesign/signup",
			wantQuery:      "email=a%2Bb%20c%40x.com",
			serverResponse: `{"message": "ok"}`,
			status:         http.StatusOK,
			wantMessage:    "ok",
		},
		{
			name:           "already signed up",
			activity:       "Programming Class",
			email:          "dup@mergington.edu",
			wantPath:       "/activities/Programming%20Class/signup",
			wantQuery:      "email=dup%40mergington.edu",
			serverResponse: `{"detail": "Student already signed up"}`,
			status:         http.StatusBadRequest,
			wantStatus:     http.StatusBadRequest,
			wantDetail:     "Student already signed up",
		},
		{
			name:           "validation error detail list",
			activity:       "Chess Club",
			email:          "",
			wantPath:       "/activities/Chess%20Club/signup",
			wantQuery:      "email=",
			serverResponse: `{"detail": [{"loc": ["query", "email"], "msg": "field required"}]}`,
			status:         http.StatusUnprocessableEntity,
			wantStatus:     http.StatusUnprocessableEntity,
		},
		{
			name:           "error without body",
			activity:       "Chess Club",
			email:          "a@x.com",
			wantPath:       "/activities/Chess%20Club/signup",
			wantQuery:      "email=a%40x.com",
			serverResponse: ``,
			status:         http.StatusBadGateway,
			wantStatus:     http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.EscapedPath())
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				assert.Equal(t, tt.email, r.URL.Query().Get("email"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.serverResponse))
			}))
			defer ts.Close()

			client, err := New(ts.URL)
			require.NoError(t, err)

			msg, err := client.Signup(context.Background(), tt.activity, tt.email)
			if tt.wantStatus != 0 {
				require.Error(t, err)
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				assert.Equal(t, tt.wantDetail, apiErr.Detail)
				assert.True(t, IsAPIError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, msg)
		})
	}
}

func TestRemove(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/activities/Chess%20Club/participants", r.URL.EscapedPath())
		assert.Equal(t, "to.remove@mergington.edu", r.URL.Query().Get("email"))
		w.Write([]byte(`{"message": "Removed to.remove@mergington.edu from Chess Club"}`))
	}))
	defer ts.Close()

	client, err := New(ts.URL)
	require.NoError(t, err)

	msg, err := client.Remove(context.Background(), "Chess Club", "to.remove@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Removed to.remove@mergington.edu from Chess Club", msg)
	assert.Equal(t, 1, calls)
}

func TestRemove_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Participant not found"}`))
	}))
	defer ts.Close()

	client, err := New(ts.URL)
	require.NoError(t, err)

	_, err = client.Remove(context.Background(), "Chess Club", "nobody@x.com")
	require.Error(t, err)
	assert.Equal(t, "Participant not found", DetailOr(err, "fallback"))
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	client, err := New(ts.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.False(t, IsAPIError(err))
	assert.Equal(t, "fallback", DetailOr(err, "fallback"))
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	tests := []struct {
		name string
		opts func(shared *http.Client) []Option
	}{
		{"timeout after client", func(shared *http.Client) []Option {
			return []Option{WithHTTPClient(shared), WithTimeout(time.Second)}
		}},
		{"timeout before client", func(shared *http.Client) []Option {
			return []Option{WithTimeout(time.Second), WithHTTPClient(shared)}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shared := &http.Client{Timeout: time.Minute}

			client, err := New("http://localhost:8000", tt.opts(shared)...)
			require.NoError(t, err)

			assert.Equal(t, time.Minute, shared.Timeout)
			assert.Equal(t, time.Second, client.httpClient.Timeout)
			assert.NotSame(t, shared, client.httpClient)
		})
	}
}

func TestWithHTTPClientKeptWithoutTimeout(t *testing.T) {
	shared := &http.Client{}
	client, err := New("http://localhost:8000", WithHTTPClient(shared))
	require.NoError(t, err)
	assert.Same(t, shared, client.httpClient)
}

func TestUserAgent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "boardctl/test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client, err := New(ts.URL, WithUserAgent("boardctl/test"))
	require.NoError(t, err)
	_, err = client.List(context.Background())
	require.NoError(t, err)
}
