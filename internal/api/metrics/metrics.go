// Package metrics defines and registers all custom Prometheus metrics for the
// HMS portal. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

const namespace = "hms_portal"

// ── Session metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "credentials", "connectivity", "protocol" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logouts. Local clearing always happens; the label only
// describes the storage cleanup.
// Label:
//   - result: "success" or "error"
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts, by local cleanup result.",
	},
	[]string{"result"},
)

// RefreshesTotal counts token refresh attempts.
// Labels:
//   - trigger: "manual" (endpoint or CLI) or "auto" (refresher)
//   - result: same values as LoginsTotal, plus "not_authenticated"
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of token refresh attempts, by trigger and result.",
	},
	[]string{"trigger", "result"},
)

// SessionOperationDuration measures login, logout and refresh round trips,
// including time spent queued behind another operation.
// Label:
//   - operation: "login", "logout" or "refresh"
var SessionOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_operation_duration_seconds",
		Help:      "Duration of session operations, including queueing.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// SessionAuthenticated is 1 while the application holds a valid session.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "Whether the portal currently holds an authenticated session (0/1).",
	},
)

// ── Guard metrics ────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard evaluations.
// Labels:
//   - route: the guarded route pattern (e.g. "/doctor/dashboard")
//   - decision: "render", "redirect" or "loading"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by route and outcome.",
	},
	[]string{"route", "decision"},
)

// ObserveSession keeps SessionAuthenticated in line with the session. It is
// subscribed to the session manager as an observer.
func ObserveSession(s domain.Snapshot) {
	if s.Authenticated() {
		SessionAuthenticated.Set(1)
		return
	}
	if s.State.Hydrated() {
		SessionAuthenticated.Set(0)
	}
}

// Result maps a session operation error to a bounded label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "credentials"
	case errors.Is(err, domain.ErrConnectivity):
		return "connectivity"
	case errors.Is(err, domain.ErrProtocol):
		return "protocol"
	default:
		return "error"
	}
}
