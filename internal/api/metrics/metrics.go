// Package metrics defines and registers all custom Prometheus metrics
// for the identity API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry via promauto
// at package load; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "invalid" (validation failure) or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "account_disabled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts refresh-token exchanges.
// Label:
//   - result: "success" or "invalid_token"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of access-token refreshes, by result.",
	},
	[]string{"result"},
)

// AuthzDecisionsTotal counts role-guard decisions on protected routes.
// Labels:
//   - decision: "allow" or "deny"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of role-guard authorization decisions.",
	},
	[]string{"decision"},
)
