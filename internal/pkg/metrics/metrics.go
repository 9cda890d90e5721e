// Package metrics defines and registers all custom Prometheus metrics for the
// blog API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry through promauto at
// package init, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthzDecisionsTotal counts permission policy evaluations.
// Labels:
//   - layer: where the policy was consulted ("route", "service", "page")
//   - action: the policy action (e.g. "createArticle")
//   - outcome: "allow" or "deny"
//   - reason: deny reason code, empty on allow
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of permission policy decisions.",
	},
	[]string{"layer", "action", "outcome", "reason"},
)

// GateRejectionsTotal counts requests rejected before authorization.
// Label:
//   - reason: "missing", "invalid", "revoked", "identity_not_found"
var GateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total number of requests rejected for a missing or invalid credential.",
	},
	[]string{"reason"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Article metrics ───────────────────────────────────────────────────────────

// ArticlesCreatedTotal counts newly created articles.
// Label:
//   - with_image: "true" or "false"
var ArticlesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "articles_created_total",
		Help:      "Total number of articles created.",
	},
	[]string{"with_image"},
)

// ImageCleanupTotal counts orphaned image removals.
// Label:
//   - result: "removed", "error" or "dropped"
var ImageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_total",
		Help:      "Total number of orphaned image removals, by result.",
	},
	[]string{"result"},
)

// CleanupQueueDepth tracks the number of jobs waiting in each cleanup worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cleanup_queue_depth",
		Help:      "Current number of image cleanup jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ObserveDecision records a single policy decision.
func ObserveDecision(layer, action string, allowed bool, reason string) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(layer, action, outcome, reason).Inc()
}
