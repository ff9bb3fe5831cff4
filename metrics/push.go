package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second
)

// PushRegistry implements Registry for push-based metrics collection.
// Values are kept in memory and sent to a VictoriaMetrics/Prometheus remote
// write endpoint when Flush is called, one sample per series.
type PushRegistry struct {
	url        string
	httpClient *http.Client
	prefix     string
	job        string
	instance   string

	mu     sync.Mutex
	series map[string]*series
}

// PushConfig configures a PushRegistry.
type PushConfig struct {
	// URL is the base URL of the remote write endpoint (e.g., "http://localhost:8428").
	URL string
	// Prefix is prepended to every metric name, followed by an underscore.
	Prefix string
	// Job is the job label for all metrics.
	Job string
	// Instance is the instance label for all metrics.
	Instance string
	// Timeout is the HTTP client timeout. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// series is one metric name plus label set and its current value.
type series struct {
	name   string
	labels map[string]string
	value  float64
}

// NewPushRegistry creates a new PushRegistry that pushes metrics to the given URL.
func NewPushRegistry(cfg PushConfig) *PushRegistry {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &PushRegistry{
		url:        strings.TrimRight(cfg.URL, "/") + "/api/v1/write",
		httpClient: &http.Client{Timeout: timeout},
		prefix:     cfg.Prefix,
		job:        cfg.Job,
		instance:   cfg.Instance,
		series:     make(map[string]*series),
	}
}

// NewGauge creates a new push-based Gauge.
func (r *PushRegistry) NewGauge(opts prometheus.GaugeOpts) (Gauge, error) {
	return &pushGauge{registry: r, name: opts.Name}, nil
}

// NewGaugeVec creates a new push-based GaugeVec.
func (r *PushRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error) {
	return &pushGaugeVec{registry: r, name: opts.Name, labels: labels}, nil
}

// NewCounter creates a new push-based Counter.
func (r *PushRegistry) NewCounter(opts prometheus.CounterOpts) (Counter, error) {
	return &pushCounter{registry: r, name: opts.Name}, nil
}

// NewCounterVec creates a new push-based CounterVec.
func (r *PushRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error) {
	return &pushCounterVec{registry: r, name: opts.Name, labels: labels}, nil
}

// update applies fn to the current value of the series.
func (r *PushRegistry) update(name string, labels map[string]string, fn func(float64) float64) {
	key := seriesKey(name, labels)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[key]
	if !ok {
		s = &series{name: name, labels: labels}
		r.series[key] = s
	}
	s.value = fn(s.value)
}

// Flush sends the current value of every series in a single write request.
// It is a no-op when nothing has been recorded.
func (r *PushRegistry) Flush(ctx context.Context) error {
	r.mu.Lock()
	keys := make([]string, 0, len(r.series))
	for k := range r.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	now := time.Now().UnixMilli()
	timeseries := make([]prompb.TimeSeries, 0, len(keys))
	for _, k := range keys {
		timeseries = append(timeseries, r.toTimeSeries(r.series[k], now))
	}
	r.mu.Unlock()

	if len(timeseries) == 0 {
		return nil
	}

	data, err := proto.Marshal(&prompb.WriteRequest{Timeseries: timeseries})
	if err != nil {
		return fmt.Errorf("marshaling write request: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// toTimeSeries converts a series to Prometheus TimeSeries format.
func (r *PushRegistry) toTimeSeries(s *series, timestamp int64) prompb.TimeSeries {
	labels := make([]prompb.Label, 0, len(s.labels)+3)

	name := s.name
	if r.prefix != "" {
		name = r.prefix + "_" + name
	}
	labels = append(labels, prompb.Label{Name: "__name__", Value: name})
	if r.job != "" {
		labels = append(labels, prompb.Label{Name: "job", Value: r.job})
	}
	if r.instance != "" {
		labels = append(labels, prompb.Label{Name: "instance", Value: r.instance})
	}
	for _, k := range sortedKeys(s.labels) {
		labels = append(labels, prompb.Label{Name: k, Value: s.labels[k]})
	}

	return prompb.TimeSeries{
		Labels:  labels,
		Samples: []prompb.Sample{{Value: s.value, Timestamp: timestamp}},
	}
}

type pushGauge struct {
	registry *PushRegistry
	name     string
	labels   map[string]string
}

func (g *pushGauge) Set(v float64) {
	g.registry.update(g.name, g.labels, func(float64) float64 { return v })
}

type pushGaugeVec struct {
	registry *PushRegistry
	name     string
	labels   []string
}

func (g *pushGaugeVec) With(labels prometheus.Labels) Gauge {
	return &pushGauge{registry: g.registry, name: g.name, labels: labels}
}

type pushCounter struct {
	registry *PushRegistry
	name     string
	labels   map[string]string
}

func (c *pushCounter) Inc() {
	c.Add(1)
}

func (c *pushCounter) Add(v float64) {
	if v < 0 {
		panic("counter cannot decrease in value")
	}
	c.registry.update(c.name, c.labels, func(cur float64) float64 { return cur + v })
}

type pushCounterVec struct {
	registry *PushRegistry
	name     string
	labels   []string
}

func (c *pushCounterVec) With(labels prometheus.Labels) Counter {
	return &pushCounter{registry: c.registry, name: c.name, labels: labels}
}

// seriesKey builds a stable map key from a metric name and its labels.
func seriesKey(name string, labels map[string]string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, k := range sortedKeys(labels) {
		b.WriteString("|" + k + "=" + labels[k])
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
