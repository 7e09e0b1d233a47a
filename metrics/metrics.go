// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/committee-roster/models"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets the registry metrics are registered on and served from.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager owns the service's Prometheus collectors. A nil *Manager is valid
// and records nothing, so engines can run without metrics in tests and CLI
// commands.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	eligibilityChecks *prometheus.CounterVec
	hardStops         *prometheus.CounterVec
	recomputations    *prometheus.CounterVec
	importRows        *prometheus.CounterVec
	flagRuns          prometheus.Counter
	flagsCreated      *prometheus.CounterVec
	flagReviews       *prometheus.CounterVec
	rosterChanges     *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager on its own registry unless WithRegistry is
// given. The default Go runtime collectors are not included.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "committee_roster",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eligibilityChecks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "eligibility_checks_total",
		Help:      "Eligibility evaluations by outcome",
	}, []string{"result"})

	m.hardStops = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "eligibility_hard_stops_total",
		Help:      "Hard stops reported by eligibility evaluations",
	}, []string{"reason"})

	m.recomputations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "seat_weight_recomputations_total",
		Help:      "Seat weight recomputations by result",
	}, []string{"result"})

	m.importRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "weight_import_rows_total",
		Help:      "Weighted table rows by import outcome",
	}, []string{"outcome"})

	m.flagRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "flag_runs_total",
		Help:      "Completed eligibility flagging runs",
	})

	m.flagsCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "flags_created_total",
		Help:      "PENDING eligibility flags created by reason",
	}, []string{"reason"})

	m.flagReviews = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "flag_reviews_total",
		Help:      "Eligibility flag review decisions",
	}, []string{"status"})

	m.rosterChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "roster_changes_total",
		Help:      "Committee membership changes by action",
	}, []string{"action"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordEligibility counts one evaluation and each of its hard stops.
func (m *Manager) RecordEligibility(result models.EligibilityResult) {
	if m == nil {
		return
	}
	outcome := "eligible"
	if !result.Eligible {
		outcome = "ineligible"
	}
	m.eligibilityChecks.WithLabelValues(outcome).Inc()
	for _, r := range result.HardStops {
		m.hardStops.WithLabelValues(r.String()).Inc()
	}
}

// RecordRecompute counts a recomputation. result is "ok", "integrity_error"
// or "error".
func (m *Manager) RecordRecompute(result string) {
	if m == nil {
		return
	}
	m.recomputations.WithLabelValues(result).Inc()
}

// RecordImport adds an import report's row counts.
func (m *Manager) RecordImport(report models.ImportReport) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("matched").Add(float64(report.Matched))
	m.importRows.WithLabelValues("skipped_no_committee").Add(float64(report.SkippedNoCommittee))
	m.importRows.WithLabelValues("skipped_invalid").Add(float64(report.SkippedInvalid))
	m.importRows.WithLabelValues("failed").Add(float64(report.Failed))
}

// RecordFlagRun counts a finished flagging run and the flags it created.
func (m *Manager) RecordFlagRun(summary models.FlagRunSummary) {
	if m == nil {
		return
	}
	m.flagRuns.Inc()
	for reason, n := range summary.ByReason {
		m.flagsCreated.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordFlagReview counts a review decision.
func (m *Manager) RecordFlagReview(status models.FlagStatus) {
	if m == nil {
		return
	}
	m.flagReviews.WithLabelValues(status.String()).Inc()
}

// RecordRosterChange counts an admission or removal.
func (m *Manager) RecordRosterChange(action string) {
	if m == nil {
		return
	}
	m.rosterChanges.WithLabelValues(action).Inc()
}

// RecordHTTPRequest records one request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	if m == nil {
		return
	}
	code := strconv.Itoa(statusCode)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
