package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kaireichart/flight-visualizer/playback"
)

// Collector provides application metrics collection
type Collector struct {
	// Pipeline Metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	DatasetSamples    prometheus.Gauge

	// Playback Metrics
	FramesRenderedTotal prometheus.Counter
	PlaybackState       prometheus.Gauge

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector whose metrics are registered with reg.
// A nil reg registers with the default registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		PipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of pipeline runs by result",
			},
			[]string{"result"},
		),

		PipelineDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of a pipeline run (read excluded) in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),

		DatasetSamples: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_samples",
				Help:      "Number of samples in the installed dataset",
			},
		),

		FramesRenderedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_rendered_total",
				Help:      "Total number of playback frames rendered",
			},
		),

		PlaybackState: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "playback_state",
				Help:      "Playback state (0 idle, 1 running, 2 stopped)",
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by path, method, and status",
			},
			[]string{"path", "method", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"path"},
		),
	}
}

// ObservePipeline records one pipeline run. Successful runs also update the
// dataset size.
func (c *Collector) ObservePipeline(result string, duration time.Duration, samples int) {
	c.PipelineRunsTotal.WithLabelValues(result).Inc()
	c.PipelineDuration.Observe(duration.Seconds())
	if result == "ok" {
		c.DatasetSamples.Set(float64(samples))
	}
}

// ObserveState records a playback state change
func (c *Collector) ObserveState(s playback.State) {
	c.PlaybackState.Set(float64(s))
}

// Render implements playback.Sink by counting frames
func (c *Collector) Render(playback.Frame) {
	c.FramesRenderedTotal.Inc()
}

// Instrument wraps a handler with request counting and timing. Paths outside
// known are recorded as "other" to keep label cardinality bounded.
func (c *Collector) Instrument(next http.Handler, known ...string) http.Handler {
	paths := make(map[string]bool, len(known))
	for _, p := range known {
		paths[p] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if !paths[path] {
			path = "other"
		}
		c.HTTPRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rec.status)).Inc()
		c.HTTPRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets websocket upgrades pass through the instrumented handler
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
