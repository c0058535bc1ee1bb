package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/query", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/files/{name}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	for _, path := range []string{"/query", "/query", "/files/a", "/files/b", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/query", "502")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/files/{name}", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestCount), "/metrics must not be counted")
}

func TestObserveGenerationAndUploads(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveGeneration(OutcomeOK, 0.5)
	m.ObserveGeneration(OutcomeCached, 0)
	m.ObserveGeneration(OutcomeUnavailable, 0.1)
	m.AddUploadBytes(10)
	m.AddUploadBytes(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues(OutcomeCached)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.uploadBytes))
	assert.Equal(t, 1, testutil.CollectAndCount(m.genDuration))
}

func TestHandlerExposesText(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.AddUploadBytes(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "relay_upload_bytes_total 3"), string(body))
}
