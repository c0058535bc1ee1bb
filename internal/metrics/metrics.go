package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeCached      = "cached"
	OutcomeBackend     = "backend_error"
	OutcomeUnavailable = "unavailable"
	OutcomeTimeout     = "timeout"
)

// Metrics holds the relay's collectors.
type Metrics struct {
	registry     *prometheus.Registry
	requestCount *prometheus.CounterVec
	generations  *prometheus.CounterVec
	genDuration  prometheus.Histogram
	uploadBytes  prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_generations_total",
				Help: "Generation requests by outcome.",
			},
			[]string{"outcome"},
		),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_generation_duration_seconds",
			Help:    "Latency of calls to the inference backend.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_upload_bytes_total",
			Help: "Bytes written to document storage.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requestCount, m.generations, m.genDuration, m.uploadBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware counts requests by route pattern; /metrics itself is excluded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestCount.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGeneration records one backend call.
func (m *Metrics) ObserveGeneration(outcome string, seconds float64) {
	m.generations.WithLabelValues(outcome).Inc()
	if outcome != OutcomeCached {
		m.genDuration.Observe(seconds)
	}
}

// AddUploadBytes records bytes written by an upload.
func (m *Metrics) AddUploadBytes(n int64) {
	if n > 0 {
		m.uploadBytes.Add(float64(n))
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
