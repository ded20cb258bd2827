// Package metrics publishes Prometheus telemetry for the tutoring service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elimu-labs/mwalimu"
)

// Recorder publishes Prometheus metrics for request, cache, and upstream
// activity. It implements mwalimu.Observer so the Tutor can report cache
// lookups and upstream calls without depending on Prometheus directly.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec

	cacheLookups    *prometheus.CounterVec
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a
// dedicated registry is created so multiple recorders can coexist without
// conflicting with the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mwalimu",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed by the service.",
	}, []string{"route", "status_code"})

	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mwalimu",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   []float64{0.005, 0.05, 0.25, 1, 2.5, 5, 10, 30, 60},
	}, []string{"route"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mwalimu",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Query cache lookups by mode and outcome.",
	}, []string{"mode", "outcome"})

	upstreamCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mwalimu",
		Subsystem: "upstream",
		Name:      "calls_total",
		Help:      "External client calls by service and outcome.",
	}, []string{"service", "outcome"})

	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mwalimu",
		Subsystem: "upstream",
		Name:      "call_duration_seconds",
		Help:      "External client call latency by service.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"service"})

	reg.MustRegister(requests, requestLatency, cacheLookups, upstreamCalls, upstreamLatency)

	return &Recorder{
		gatherer:        reg,
		handler:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		requests:        requests,
		requestLatency:  requestLatency,
		cacheLookups:    cacheLookups,
		upstreamCalls:   upstreamCalls,
		upstreamLatency: upstreamLatency,
	}
}

// Handler serves the /metrics scrape endpoint.
func (r *Recorder) Handler() http.Handler {
	return r.handler
}

// ObserveRequest records one completed HTTP request.
func (r *Recorder) ObserveRequest(route string, statusCode int, d time.Duration) {
	r.requests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	r.requestLatency.WithLabelValues(route).Observe(d.Seconds())
}

// CacheLookup implements mwalimu.Observer.
func (r *Recorder) CacheLookup(mode mwalimu.Mode, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheLookups.WithLabelValues(string(mode), outcome).Inc()
}

// UpstreamCall implements mwalimu.Observer.
func (r *Recorder) UpstreamCall(service string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.upstreamCalls.WithLabelValues(service, outcome).Inc()
	r.upstreamLatency.WithLabelValues(service).Observe(d.Seconds())
}

// Verify Recorder implements the Tutor's observer contract
var _ mwalimu.Observer = (*Recorder)(nil)
