// Package metrics defines the custom Prometheus metrics for the GemQuest
// identity API. It is the single source of truth for metric names, labels,
// and help strings; all metrics register with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// AuthRejectedTotal counts requests rejected by the authentication gate.
// Label:
//   - reason: "missing_credential", "malformed_header" or "invalid_token"
var AuthRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejected_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
)

// AuthzDeniedTotal counts requests denied by the authorization gate.
// Label:
//   - reason: "role" (role not allowed) or "permission" (permission missing)
var AuthzDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denied_total",
		Help:      "Total number of requests denied by the authorization gate.",
	},
	[]string{"reason"},
)

// ResetTokensIssuedTotal counts successfully issued password reset tokens.
var ResetTokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_tokens_issued_total",
		Help:      "Total number of password reset tokens issued.",
	},
)

// ResetTokensConsumedTotal counts reset tokens consumed by a successful
// password change.
var ResetTokensConsumedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_tokens_consumed_total",
		Help:      "Total number of password reset tokens consumed.",
	},
)

// MailDeliveriesTotal counts outbound mail deliveries by outcome.
// Label:
//   - result: "sent" or "failed"
var MailDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_deliveries_total",
		Help:      "Total number of outbound mail deliveries, by result.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks the number of messages waiting in each mail worker
// channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each mail worker channel.",
	},
	[]string{"worker_id"},
)
