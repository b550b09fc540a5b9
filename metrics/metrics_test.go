package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kaireichart/flight-visualizer/playback"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector("flightviz", prometheus.NewRegistry())
}

func TestObservePipeline(t *testing.T) {
	c := newTestCollector(t)

	c.ObservePipeline("ok", 20*time.Millisecond, 120)
	c.ObservePipeline("schema_error", time.Millisecond, 0)
	c.ObservePipeline("ok", 10*time.Millisecond, 80)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.PipelineRunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PipelineRunsTotal.WithLabelValues("schema_error")))
	assert.Equal(t, 80.0, testutil.ToFloat64(c.DatasetSamples), "failed runs leave the dataset size alone")
	assert.Equal(t, 1, testutil.CollectAndCount(c.PipelineDuration))
}

func TestPlaybackMetrics(t *testing.T) {
	c := newTestCollector(t)

	var sink playback.Sink = c
	for i := 0; i < 3; i++ {
		sink.Render(playback.Frame{Index: i})
	}
	c.ObserveState(playback.Running)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.FramesRenderedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PlaybackState))

	c.ObserveState(playback.Stopped)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.PlaybackState))
}

func TestInstrument(t *testing.T) {
	c := newTestCollector(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fine"))
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})
	handler := c.Instrument(mux, "/ok", "/bad")

	for _, path := range []string{"/ok", "/ok", "/bad", "/random/path"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("/ok", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("/bad", "GET", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("other", "GET", "404")))
}

func TestNewCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("flightviz", prometheus.NewRegistry())
		NewCollector("flightviz", prometheus.NewRegistry())
	})
}
