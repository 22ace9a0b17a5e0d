// Package metrics defines and registers all custom Prometheus metrics for the
// cliente auth API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// through promauto and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// RegistrationsTotal counts successful registrations.
// Label:
//   - tipo: "cliente" or "fornecedor"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of clientes registered, by account type.",
	},
	[]string{"tipo"},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "validation_error" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LoginFailuresTotal breaks refused logins down by the internal reason.
// The reason is never returned to the caller.
// Label:
//   - reason: "email_not_found" or "wrong_password"
var LoginFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Total number of refused logins, by internal reason.",
	},
	[]string{"reason"},
)

// LogoutsTotal counts revoked sessions.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of sessions revoked through logout.",
	},
)

// AuthRejectionsTotal counts requests refused by the bearer middleware.
// Label:
//   - cause: "missing_header", "malformed_header" or "invalid_token"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejections_total",
		Help:      "Total number of requests rejected by bearer authentication.",
	},
	[]string{"cause"},
)
