package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Metrics owns its own registry so servers built in tests do not collide
// on the global one.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
}

// NewMetrics registers HTTP, runtime and, when db is non-nil, connection
// pool collectors.
func NewMetrics(db *sql.DB) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		reg.MustRegister(collectors.NewDBStatsCollector(db, "climate"))
	}

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "climate_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "climate_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// middleware labels by route pattern, not raw path, so /api/v1.0/{start}
// stays one series however many dates are requested.
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sr.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
