package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "devzoku_http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devzoku_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	SideEffects = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "devzoku_side_effects_total", Help: "Side-effect intents executed after commit"},
		[]string{"kind", "result"},
	)
	EmailJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "devzoku_email_jobs_total", Help: "Email jobs processed by the worker pool"},
		[]string{"job", "result"},
	)
	EmailDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "devzoku_email_dlq_total", Help: "Email jobs moved to the dead-letter table"},
	)
	Applications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "devzoku_applications_total", Help: "Hackathon application attempts"},
		[]string{"result"},
	)
)

// Result labels
const (
	ResultOK       = "ok"
	ResultFailed   = "failed"
	ResultSkipped  = "skipped"
	ResultRetried  = "retried"
	ResultRejected = "rejected"
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests, HTTPDuration, SideEffects, EmailJobs, EmailDLQ, Applications)
	})
}
