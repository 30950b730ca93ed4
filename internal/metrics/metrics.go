// Package metrics exposes the service counters in the prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mmse"

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	submissions     *prometheus.CounterVec
	discrepancies   *prometheus.CounterVec
	totalScores     *prometheus.HistogramVec
	shares          prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// New registers the service metrics on a fresh registry. Process and Go
// runtime collectors are added when runtime is true.
func New(runtime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Scored submissions by locale and outcome.",
		}, []string{"locale", "outcome"}),
		discrepancies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_discrepancies_total",
			Help:      "Submissions whose client total differed from the server total beyond tolerance.",
		}, []string{"locale"}),
		totalScores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "total_score",
			Help:      "Distribution of server computed totals.",
			Buckets:   prometheus.LinearBuckets(0, 3, 11),
		}, []string{"locale"}),
		shares: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_total",
			Help:      "Submissions shared with a doctor.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(m.submissions, m.discrepancies, m.totalScores, m.shares, m.requestDuration)
	if runtime {
		m.registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
			collectors.NewGoCollector(),
		)
	}
	return m
}

// ObserveSubmission records one scored submission.
func (m *Metrics) ObserveSubmission(locale string, total int, impaired bool) {
	outcome := "normal"
	if impaired {
		outcome = "impaired"
	}
	m.submissions.WithLabelValues(locale, outcome).Inc()
	m.totalScores.WithLabelValues(locale).Observe(float64(total))
}

func (m *Metrics) ObserveDiscrepancy(locale string) {
	m.discrepancies.WithLabelValues(locale).Inc()
}

func (m *Metrics) ObserveShare() {
	m.shares.Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Middleware times every request by its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
