// Package metrics exports ledger and HTTP metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Outcomes of a ledger operation.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder records ledger operations and HTTP requests. A nil Recorder is a no-op.
type Recorder struct {
	operations *prometheus.CounterVec
	amounts    *prometheus.CounterVec
	requests   *prometheus.HistogramVec
}

// NewRecorder registers the metrics on the provided registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger operations by name and outcome.",
	}, []string{"operation", "outcome"})
	amounts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_amount_total",
		Help: "Absolute money moved by successful ledger operations.",
	}, []string{"operation"})
	requests := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(operations, amounts, requests)
	return &Recorder{
		operations: operations,
		amounts:    amounts,
		requests:   requests,
	}
}

// ObserveOperation counts one ledger operation.
func (r *Recorder) ObserveOperation(operation, outcome string) {
	if r == nil || r.operations == nil {
		return
	}
	r.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// AddAmount adds the absolute value of amount to the operation's money counter.
func (r *Recorder) AddAmount(operation string, amount decimal.Decimal) {
	if r == nil || r.amounts == nil {
		return
	}
	f, _ := amount.Abs().Float64()
	r.amounts.WithLabelValues(normalizeLabel(operation)).Add(f)
}

// ObserveRequest records the duration of one HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	if r == nil || r.requests == nil {
		return
	}
	r.requests.WithLabelValues(method, normalizeLabel(route), statusClass(status)).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
