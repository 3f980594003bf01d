package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	jobsSubmitted    prometheus.Counter
	jobsFinished     *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	jobsActive       prometheus.Gauge
	permutations     prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.jobsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairsweep_jobs_submitted_total",
			Help: "Total number of backtest jobs submitted",
		},
	)
	r.jobsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairsweep_jobs_finished_total",
			Help: "Total number of backtest jobs by terminal status",
		},
		[]string{"status"},
	)
	r.dispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pairsweep_dispatch_duration_seconds",
			Help:    "Worker dispatch duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.jobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairsweep_jobs_active",
			Help: "Number of jobs with an outstanding worker dispatch",
		},
	)
	r.permutations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairsweep_permutations_total",
			Help: "Total number of sweep permutations expanded",
		},
	)

	reg.MustRegister(r.jobsSubmitted)
	reg.MustRegister(r.jobsFinished)
	reg.MustRegister(r.dispatchDuration)
	reg.MustRegister(r.jobsActive)
	reg.MustRegister(r.permutations)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSubmit records a submitted job and its outstanding dispatch.
func (r *Registry) RecordSubmit() {
	r.jobsSubmitted.Inc()
	r.jobsActive.Inc()
}

// RecordFinished records a job reaching a terminal status.
func (r *Registry) RecordFinished(status string, duration float64) {
	r.jobsFinished.WithLabelValues(status).Inc()
	r.dispatchDuration.Observe(duration)
	r.jobsActive.Dec()
}

// RecordPermutations records an expanded sweep's permutation count.
func (r *Registry) RecordPermutations(count int) {
	r.permutations.Add(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
