// Package metrics exposes Prometheus counters for the editorial workflow
// and HTTP latency, on a registry owned by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jukebox"

// Metrics holds every collector. A nil *Metrics records nothing, so
// services and tests can run without one.
type Metrics struct {
	registry *prometheus.Registry

	reorders      *prometheus.CounterVec
	publishes     *prometheus.CounterVec
	reviews       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	comments      prometheus.Counter
	httpDuration  *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		reorders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_reorders_total",
			Help:      "Review reorder operations by move and result.",
		}, []string{"move", "result"}),
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "song_publishes_total",
			Help:      "Song publish attempts by trigger and result.",
		}, []string{"trigger", "result"}),
		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_written_total",
			Help:      "Reviews written by resulting status.",
		}, []string{"status"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Admin notifications by result.",
		}, []string{"result"}),
		comments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_posted_total",
			Help:      "Reader comments accepted.",
		}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveReorder counts one reorder operation. move is top, bottom, up,
// down or bulk.
func (m *Metrics) ObserveReorder(move string, err error) {
	if m == nil {
		return
	}
	m.reorders.WithLabelValues(move, result(err)).Inc()
}

// ObservePublish counts one publish attempt. trigger is manual or scheduled.
func (m *Metrics) ObservePublish(trigger string, err error) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(trigger, result(err)).Inc()
}

// ObserveReviewWritten counts a saved or drafted review.
func (m *Metrics) ObserveReviewWritten(status string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(status).Inc()
}

// ObserveNotification counts one notification delivery.
func (m *Metrics) ObserveNotification(err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result(err)).Inc()
}

// ObserveComment counts an accepted comment.
func (m *Metrics) ObserveComment() {
	if m == nil {
		return
	}
	m.comments.Inc()
}

// Middleware records request latency labelled with the chi route pattern,
// which keeps label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
