// Package metrics provides Prometheus metrics collection for the HTTP API.
// It exports four metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - calculation_total: Counter with calculator and outcome labels
//
// Metrics are registered on a dedicated registry owned by each Metrics value.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculator names used as label values.
const (
	CalculatorNIR           = "nir"
	CalculatorReimbursement = "reimbursement"
	CalculatorMargin        = "margin"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
)

// Metrics groups the collectors and the registry they are registered on.
type Metrics struct {
	Registry            *prometheus.Registry
	HTTPRequestTotals   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestInFlight prometheus.Gauge
	CalculationTotals   *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestTotals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_request_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_request_in_flight",
				Help: "Current in-flight requests",
			},
		),
		CalculationTotals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calculation_total",
				Help: "Calculations served, by calculator and outcome",
			},
			[]string{"calculator", "outcome"},
		),
	}

	m.Registry.MustRegister(
		m.HTTPRequestTotals,
		m.HTTPRequestDuration,
		m.HTTPRequestInFlight,
		m.CalculationTotals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCalculation counts one calculation.
func (m *Metrics) ObserveCalculation(calculator, outcome string) {
	m.CalculationTotals.WithLabelValues(calculator, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records request counts, latency and in-flight requests. The
// path label is the chi route pattern so URL parameters do not explode the
// label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestInFlight.Inc()
		defer m.HTTPRequestInFlight.Dec()

		start := time.Now()
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

		m.HTTPRequestTotals.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
