package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics records login outcomes and audit write health.
type AuthMetrics struct {
	loginOutcomes *prometheus.CounterVec
	lockouts      *prometheus.CounterVec
	auditFailures prometheus.Counter
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
// A nil registerer yields a no-op recorder, which tests use.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	loginOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login attempts by portal and outcome.",
	}, []string{"portal", "outcome"})
	lockouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_lockouts_total",
		Help: "Login attempts rejected by the lockout window.",
	}, []string{"portal"})
	auditFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Audit trail rows that could not be persisted.",
	})
	reg.MustRegister(loginOutcomes, lockouts, auditFailures)
	return &AuthMetrics{
		loginOutcomes: loginOutcomes,
		lockouts:      lockouts,
		auditFailures: auditFailures,
	}
}

// IncLogin increments the attempt counter for a portal and outcome.
func (a *AuthMetrics) IncLogin(portal, outcome string) {
	if a == nil || a.loginOutcomes == nil {
		return
	}
	a.loginOutcomes.WithLabelValues(normalizeLabel(portal), normalizeLabel(outcome)).Inc()
}

// IncLockout increments the lockout counter for a portal.
func (a *AuthMetrics) IncLockout(portal string) {
	if a == nil || a.lockouts == nil {
		return
	}
	a.lockouts.WithLabelValues(normalizeLabel(portal)).Inc()
}

// IncAuditFailure increments the audit write failure counter.
func (a *AuthMetrics) IncAuditFailure() {
	if a == nil || a.auditFailures == nil {
		return
	}
	a.auditFailures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
