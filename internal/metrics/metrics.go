// Package metrics holds Prometheus instruments that are used across the
// entity service.  All collectors are registered with the global registry,
// so importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FieldSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_field_saves_total",
			Help: "Cumulative number of metadata field saves, by entity type.",
		}, []string{"type"})

	FieldSaveErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_field_save_errors_total",
			Help: "Cumulative number of rejected field saves, by entity type.",
		}, []string{"type"})

	CurrentRecomputeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entity_current_recompute_total",
			Help: "Cumulative number of latest-record pointer recomputations.",
		})

	RouteRebuildTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entity_route_rebuild_total",
			Help: "Cumulative number of current-record route table rebuilds.",
		})

	ArchiveDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entity_archive_denied_total",
			Help: "Cumulative number of archived records hidden from viewers.",
		})
)

func init() {
	prometheus.MustRegister(
		FieldSavesTotal,
		FieldSaveErrorsTotal,
		CurrentRecomputeTotal,
		RouteRebuildTotal,
		ArchiveDeniedTotal,
	)
}
