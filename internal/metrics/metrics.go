// Package metrics exposes counters for the data gaps the calendar engine
// swallows on purpose. The engine never errors on these, so the counters are
// the only way to notice genuine data corruption.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogMisses counts supplement assignments that referenced a missing
	// catalog entry and were silently skipped during projection.
	CatalogMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babyprep_calendar_catalog_misses_total",
		Help: "Supplement occurrences dropped because the catalog entry was missing.",
	})

	// SuppressedNotifications counts notifications not created because the
	// user disabled notifications.
	SuppressedNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babyprep_notifications_suppressed_total",
		Help: "Notifications skipped because the user's notification flag is off.",
	})

	// OrphanedNotifications counts due notifications dropped from the sweep
	// because their owning calendar event no longer exists.
	OrphanedNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babyprep_notifications_orphaned_total",
		Help: "Due notifications dropped because the owning event was deleted.",
	})

	// EventsMaterialized counts calendar event rows created by the projector.
	EventsMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babyprep_calendar_events_materialized_total",
		Help: "Calendar event rows inserted by the monthly projection.",
	})
)
