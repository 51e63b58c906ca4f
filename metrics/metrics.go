// Package metrics provides Prometheus metrics for console session
// operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the console core.
type Metrics struct {
	enabled bool

	// Login metrics
	loginAttemptsTotal *prometheus.CounterVec
	loginFailuresTotal *prometheus.CounterVec

	// Identity resolution metrics
	identityResolutionsTotal  *prometheus.CounterVec
	identityResolutionSeconds prometheus.Histogram
	staleResultsDroppedTotal  prometheus.Counter

	// Guard metrics
	guardDecisionsTotal *prometheus.CounterVec
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	return newWith(enabled, prometheus.DefaultRegisterer)
}

// NewWithRegisterer is New with an explicit registry, for tests.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	return newWith(true, reg)
}

func newWith(enabled bool, reg prometheus.Registerer) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.loginAttemptsTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "console_login_attempts_total",
		Help: "Total login attempts",
	}, []string{"flow"}) // password, code

	m.loginFailuresTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "console_login_failures_total",
		Help: "Total login failures",
	}, []string{"flow", "reason"})

	m.identityResolutionsTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "console_identity_resolutions_total",
		Help: "Total identity resolution attempts",
	}, []string{"result"}) // resolved, failed, stale

	m.identityResolutionSeconds = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
		Name:    "console_identity_resolution_duration_seconds",
		Help:    "Identity resolution duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	m.staleResultsDroppedTotal = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "console_identity_stale_results_dropped_total",
		Help: "Identity fetch results discarded because the session generation moved on",
	})

	m.guardDecisionsTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "console_guard_decisions_total",
		Help: "Navigation guard decisions",
	}, []string{"decision"}) // allow, redirect

	return m
}

// LoginAttempt records a login attempt for the given flow.
func (m *Metrics) LoginAttempt(flow string) {
	if !m.enabled {
		return
	}
	m.loginAttemptsTotal.WithLabelValues(flow).Inc()
}

// LoginFailure records a failed login.
func (m *Metrics) LoginFailure(flow, reason string) {
	if !m.enabled {
		return
	}
	m.loginFailuresTotal.WithLabelValues(flow, reason).Inc()
}

// IdentityResolution records the outcome and duration of one resolution.
func (m *Metrics) IdentityResolution(result string, elapsed time.Duration) {
	if !m.enabled {
		return
	}
	m.identityResolutionsTotal.WithLabelValues(result).Inc()
	m.identityResolutionSeconds.Observe(elapsed.Seconds())
}

// StaleResultDropped records an identity result discarded after logout.
func (m *Metrics) StaleResultDropped() {
	if !m.enabled {
		return
	}
	m.staleResultsDroppedTotal.Inc()
}

// GuardDecision records a navigation guard outcome.
func (m *Metrics) GuardDecision(decision string) {
	if !m.enabled {
		return
	}
	m.guardDecisionsTotal.WithLabelValues(decision).Inc()
}
