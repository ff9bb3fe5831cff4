package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeReceiver is a fake remote write endpoint that decodes each request.
type writeReceiver struct {
	mu       sync.Mutex
	requests []*prompb.WriteRequest
	headers  []http.Header
}

func (wr *writeReceiver) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/write", r.URL.Path)

		compressed, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		data, err := snappy.Decode(nil, compressed)
		require.NoError(t, err)

		var req prompb.WriteRequest
		require.NoError(t, proto.Unmarshal(data, &req))

		wr.mu.Lock()
		wr.requests = append(wr.requests, &req)
		wr.headers = append(wr.headers, r.Header.Clone())
		wr.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}
}

func labelMap(ts prompb.TimeSeries) map[string]string {
	m := make(map[string]string, len(ts.Labels))
	for _, l := range ts.Labels {
		m[l.Name] = l.Value
	}
	return m
}

func TestNewPushRegistry(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PushConfig
		wantURL string
	}{
		{
			name:    "minimal config",
			cfg:     PushConfig{URL: "http://localhost:8428"},
			wantURL: "http://localhost:8428/api/v1/write",
		},
		{
			name: "trailing slash and timeout",
			cfg: PushConfig{
				URL:      "http://localhost:8428/",
				Prefix:   "boardctl",
				Job:      "boardctl",
				Instance: "laptop",
				Timeout:  5 * time.Second,
			},
			wantURL: "http://localhost:8428/api/v1/write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewPushRegistry(tt.cfg)
			require.NotNil(t, registry)
			assert.Equal(t, tt.wantURL, registry.url)
			if tt.cfg.Timeout == 0 {
				assert.Equal(t, DefaultTimeout, registry.httpClient.Timeout)
			} else {
				assert.Equal(t, tt.cfg.Timeout, registry.httpClient.Timeout)
			}
		})
	}
}

func TestPushRegistry_FlushEmpty(t *testing.T) {
	receiver := &writeReceiver{}
	server := httptest.NewServer(receiver.handler(t))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{URL: server.URL})
	require.NoError(t, registry.Flush(context.Background()))
	assert.Empty(t, receiver.requests)
}

func TestPushRegistry_Flush(t *testing.T) {
	receiver := &writeReceiver{}
	server := httptest.NewServer(receiver.handler(t))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{
		URL:      server.URL,
		Prefix:   "boardctl",
		Job:      "boardctl",
		Instance: "laptop",
	})

	ops, err := registry.NewCounterVec(prometheus.CounterOpts{
		Name: "board_operations_total",
		Help: "Board operations",
	}, []string{"operation", "outcome"})
	require.NoError(t, err)

	activities, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "board_activities",
		Help: "Activities in the last fetch",
	})
	require.NoError(t, err)

	ops.With(prometheus.Labels{"operation": "signup", "outcome": "success"}).Inc()
	ops.With(prometheus.Labels{"outcome": "success", "operation": "signup"}).Inc()
	ops.With(prometheus.Labels{"operation": "refresh", "outcome": "error"}).Add(3)
	activities.Set(2)
	activities.Set(5)

	// Nothing is sent until Flush.
	assert.Empty(t, receiver.requests)

	require.NoError(t, registry.Flush(context.Background()))
	require.Len(t, receiver.requests, 1)

	headers := receiver.headers[0]
	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))
	assert.Equal(t, "application/x-protobuf", headers.Get("Content-Type"))
	assert.Equal(t, "0.1.0", headers.Get("X-Prometheus-Remote-Write-Version"))

	got := map[string]float64{}
	for _, ts := range receiver.requests[0].Timeseries {
		labels := labelMap(ts)
		assert.Equal(t, "boardctl", labels["job"])
		assert.Equal(t, "laptop", labels["instance"])
		require.Len(t, ts.Samples, 1)
		assert.NotZero(t, ts.Samples[0].Timestamp)
		got[labels["__name__"]+"/"+labels["operation"]+"/"+labels["outcome"]] = ts.Samples[0].Value
	}

	assert.Equal(t, map[string]float64{
		"boardctl_board_operations_total/signup/success": 2,
		"boardctl_board_operations_total/refresh/error":  3,
		"boardctl_board_activities//":                    5,
	}, got)
}

func TestPushRegistry_LabelOrderIsStable(t *testing.T) {
	receiver := &writeReceiver{}
	server := httptest.NewServer(receiver.handler(t))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{URL: server.URL})
	vec, err := registry.NewGaugeVec(prometheus.GaugeOpts{Name: "g"}, []string{"b", "a", "c"})
	require.NoError(t, err)
	vec.With(prometheus.Labels{"c": "3", "a": "1", "b": "2"}).Set(1)

	require.NoError(t, registry.Flush(context.Background()))
	require.Len(t, receiver.requests, 1)
	require.Len(t, receiver.requests[0].Timeseries, 1)

	var names []string
	for _, l := range receiver.requests[0].Timeseries[0].Labels {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"__name__", "a", "b", "c"}, names)
}

func TestPushRegistry_FlushError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage full", http.StatusInternalServerError)
	}))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{URL: server.URL})
	counter, err := registry.NewCounter(prometheus.CounterOpts{Name: "c"})
	require.NoError(t, err)
	counter.Inc()

	err = registry.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
	assert.Contains(t, err.Error(), "storage full")
}

func TestPushCounter_NegativePanics(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost:8428"})
	counter, err := registry.NewCounter(prometheus.CounterOpts{Name: "c"})
	require.NoError(t, err)

	assert.Panics(t, func() { counter.Add(-1) })
}

func TestScrapeRegistry(t *testing.T) {
	registry, err := NewScrapeRegistry("activityboard")
	require.NoError(t, err)
	require.NotNil(t, registry)

	gauge, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	})
	require.NoError(t, err)
	gauge.Set(42.0)

	counter, err := registry.NewCounterVec(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	}, []string{"outcome"})
	require.NoError(t, err)
	counter.With(prometheus.Labels{"outcome": "success"}).Inc()

	explicit, err := registry.NewCounter(prometheus.CounterOpts{
		Namespace: "other",
		Name:      "explicit_total",
		Help:      "Keeps its own namespace",
	})
	require.NoError(t, err)
	explicit.Add(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	registry.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "activityboard_test_gauge 42")
	assert.Contains(t, body, `activityboard_test_counter{outcome="success"} 1`)
	assert.Contains(t, body, "other_explicit_total 2")
}

func TestScrapeRegistry_DuplicateRegistration(t *testing.T) {
	registry, err := NewScrapeRegistry("")
	require.NoError(t, err)

	_, err = registry.NewGauge(prometheus.GaugeOpts{Name: "dup", Help: "first"})
	require.NoError(t, err)
	_, err = registry.NewGauge(prometheus.GaugeOpts{Name: "dup", Help: "first"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `registering gauge "dup"`)
}

func TestScrapeRegistry_Gather(t *testing.T) {
	registry, err := NewScrapeRegistry("")
	require.NoError(t, err)

	gauge, err := registry.NewGauge(prometheus.GaugeOpts{Name: "gathered", Help: "g"})
	require.NoError(t, err)
	gauge.Set(7)

	families, err := registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "gathered" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 7.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}
