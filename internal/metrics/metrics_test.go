package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveReorder(t *testing.T) {
	m := New()

	m.ObserveReorder("top", nil)
	m.ObserveReorder("top", nil)
	m.ObserveReorder("bulk", errors.New("sort order required"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reorders.WithLabelValues("top", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reorders.WithLabelValues("bulk", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveReorder("up", nil)
		m.ObservePublish("manual", nil)
		m.ObserveReviewWritten("saved")
		m.ObserveNotification(nil)
		m.ObserveComment()
	})

	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, m.Middleware(h))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/songs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/songs/song-1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	m.ObservePublish("scheduled", nil)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `jukebox_http_request_duration_seconds_count{method="GET",route="/songs/{id}",status="204"} 1`)
	assert.Contains(t, string(body), `jukebox_song_publishes_total{result="ok",trigger="scheduled"} 1`)
}
