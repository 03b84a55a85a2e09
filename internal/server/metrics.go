package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alnah/go-docgen/internal/jobs"
)

// metrics owns a private registry so several servers (and tests) can
// coexist in one process.
type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	rendered  *prometheus.CounterVec
	jobs      *prometheus.CounterVec
	tokens    *prometheus.CounterVec
	swept     prometheus.Counter
	sweepErrs prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docgen_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		rendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_documents_rendered_total",
			Help: "Documents rendered, by origin (render endpoint or generation job) and format.",
		}, []string{"origin", "format"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_jobs_total",
			Help: "Finished generation jobs by provider and outcome.",
		}, []string{"provider", "status"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_llm_tokens_total",
			Help: "Tokens consumed by generation jobs.",
		}, []string{"provider", "direction"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docgen_artifacts_swept_total",
			Help: "Artifacts removed by the retention sweep.",
		}),
		sweepErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docgen_sweep_errors_total",
			Help: "Retention sweeps that reported an error.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.latency, m.rendered, m.jobs, m.tokens, m.swept, m.sweepErrs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// handler serves the registry in the text exposition format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// middleware counts requests by matched route.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// jobFinished records a terminal job.
func (m *metrics) jobFinished(job *jobs.Job) {
	m.jobs.WithLabelValues(job.Provider, string(job.Status)).Inc()
	if job.Status == jobs.StatusCompleted {
		m.rendered.WithLabelValues("job", "pdf").Inc()
	}
	if job.InputTokens > 0 {
		m.tokens.WithLabelValues(job.Provider, "input").Add(float64(job.InputTokens))
	}
	if job.OutputTokens > 0 {
		m.tokens.WithLabelValues(job.Provider, "output").Add(float64(job.OutputTokens))
	}
}
