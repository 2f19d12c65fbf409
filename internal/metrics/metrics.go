// Package metrics exposes Prometheus collectors for diet plan traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"DietWallah/internal/dietplan"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dietwallah"

// Collector holds the service metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	submissionsTotal   *prometheus.CounterVec
	submissionDuration prometheus.Histogram
	activeSessions     prometheus.Gauge
}

// NewCollector registers all collectors, plus the Go and process collectors,
// on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		submissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_submissions_total",
				Help:      "Diet plan requests by outcome",
			},
			[]string{"outcome"},
		),
		submissionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_submission_duration_seconds",
				Help:      "Time spent waiting on the chat completion endpoint",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Form controllers currently held in memory",
			},
		),
	}
}

// ObserveSubmission implements dietplan.Recorder.
func (c *Collector) ObserveSubmission(outcome dietplan.Phase, elapsed time.Duration) {
	c.submissionsTotal.WithLabelValues(outcome.String()).Inc()
	c.submissionDuration.Observe(elapsed.Seconds())
}

// SetActiveSessions records the size of the session registry.
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware counts every request by route template.
func (c *Collector) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		if err != nil {
			ctx.Error(err)
		}

		path := ctx.Path()
		if path == "" {
			path = "unmatched"
		}
		method := ctx.Request().Method
		status := strconv.Itoa(ctx.Response().Status)

		c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		c.httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return nil
	}
}
