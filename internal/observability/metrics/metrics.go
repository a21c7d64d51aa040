// Package metrics defines all custom Prometheus metrics for the notice-board
// API. It is the single source of truth for metric names, labels, and help
// strings; metrics register themselves with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "noticeboard"

// RegistrationsTotal counts successfully created accounts.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// BroadcastsCreatedTotal counts newly published broadcasts.
// Label:
//   - type: "announcement", "alert", "maintenance", "update", "news", "meeting"
var BroadcastsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_created_total",
		Help:      "Total number of broadcasts created, by type.",
	},
	[]string{"type"},
)

// BroadcastViewsTotal counts single-broadcast reads (each read increments the
// stored view counter by one).
var BroadcastViewsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_views_total",
		Help:      "Total number of single-broadcast reads.",
	},
)
