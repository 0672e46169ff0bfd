// Package metrics owns the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors and the registry they are served
// from. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	rentalsCreated   prometheus.Counter
	returnsProcessed prometheus.Counter
	rentalFees       prometheus.Counter
	compensations    *prometheus.CounterVec
}

// New builds a Metrics with its own registry, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vidly",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vidly",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
		rentalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vidly",
			Name:      "rentals_created_total",
			Help:      "Rentals checked out.",
		}),
		returnsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vidly",
			Name:      "returns_processed_total",
			Help:      "Rentals returned.",
		}),
		rentalFees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vidly",
			Name:      "rental_fees_total",
			Help:      "Sum of rental fees charged on return.",
		}),
		compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vidly",
				Name:      "rental_compensations_total",
				Help:      "Compensating writes run after a partial rental or return failure.",
			},
			[]string{"operation", "result"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.rentalsCreated, m.returnsProcessed, m.rentalFees, m.compensations,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
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
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RentalCreated counts a successful checkout.
func (m *Metrics) RentalCreated() {
	if m == nil {
		return
	}
	m.rentalsCreated.Inc()
}

// ReturnProcessed counts a successful return and the fee it charged.
func (m *Metrics) ReturnProcessed(fee float64) {
	if m == nil {
		return
	}
	m.returnsProcessed.Inc()
	m.rentalFees.Add(fee)
}

// Compensation counts a compensating write; ok reports whether it succeeded.
func (m *Metrics) Compensation(operation string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.compensations.WithLabelValues(operation, result).Inc()
}
