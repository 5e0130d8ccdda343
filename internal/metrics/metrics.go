package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of the reports service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	gatherer        prometheus.Gatherer
	requestDuration *prometheus.HistogramVec
	reportDuration  *prometheus.HistogramVec
	reportRows      *prometheus.HistogramVec
	partialReports  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry labelled with env.
func New(environment string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry, registry, environment)
}

func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer, environment string) *Metrics {
	environment = strings.TrimSpace(environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": "cost_reports",
		"env":     environment,
	}

	m := &Metrics{
		gatherer: gatherer,
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "cost_reports_http_request_duration_seconds",
				Help:        "HTTP request latency by route and status code.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"endpoint", "method", "status_code"},
		),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "cost_reports_report_duration_seconds",
				Help:        "Time spent computing a cost report.",
				Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				ConstLabels: constLabels,
			},
			[]string{"kind", "operation", "result"}, // result: ok | error
		),
		reportRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "cost_reports_report_parties",
				Help:        "Number of billable parties in a computed report.",
				Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
				ConstLabels: constLabels,
			},
			[]string{"kind"},
		),
		partialReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "cost_reports_partial_total",
				Help:        "Reports computed without a complete workflow configuration.",
				ConstLabels: constLabels,
			},
			[]string{"kind"},
		),
	}
	registerer.MustRegister(m.requestDuration, m.reportDuration, m.reportRows, m.partialReports)
	return m
}

// GinMiddleware records request duration per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := strings.TrimSpace(c.FullPath())
		if endpoint == "" {
			endpoint = "unknown"
		}
		m.requestDuration.
			WithLabelValues(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveReport(kind, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reportDuration.WithLabelValues(kind, operation, result).Observe(duration.Seconds())
}

func (m *Metrics) ObserveParties(kind string, count int) {
	if m == nil {
		return
	}
	m.reportRows.WithLabelValues(kind).Observe(float64(count))
}

func (m *Metrics) IncPartial(kind string) {
	if m == nil {
		return
	}
	m.partialReports.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
