// Package metrics defines and registers the custom Prometheus metrics of the
// todo API. HTTP request metrics come from the echoprometheus middleware; this
// package holds the domain-level collectors.
//
// All collectors are registered with the default registry at init time via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "todo"

// ── Todo metrics ──────────────────────────────────────────────────────────────

// TodosCreatedTotal counts todo create requests that succeeded.
// Label:
//   - replayed: "true" when served from an Idempotency-Key replay
var TodosCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "todos_created_total",
		Help:      "Total number of todos created, labelled by idempotent replay.",
	},
	[]string{"replayed"},
)

// TodosDeletedTotal counts successful delete requests, including ones that
// matched no document.
var TodosDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "todos_deleted_total",
		Help:      "Total number of todo delete requests answered with success.",
	},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityProcessedTotal counts activity persisted (or failed) by the dispatcher.
// Labels:
//   - kind: "todo.created" or "todo.deleted"
//   - result: "ok" or "error"
var ActivityProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_processed_total",
		Help:      "Total number of todo activity records processed, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ActivityDroppedTotal counts activity dropped because a worker buffer was full.
var ActivityDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of todo activity records dropped on a full queue.",
	},
	[]string{"kind"},
)

// ActivityQueueDepth tracks the number of activity records waiting per worker.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
