package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importedUnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyzer_imported_units_total",
		Help: "Shop units written by imports, by type",
	}, []string{"type"})

	rejectedImportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analyzer_rejected_imports_total",
		Help: "Import batches stopped by a validation failure",
	})

	deletedUnitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analyzer_deleted_units_total",
		Help: "Shop units removed from the catalog",
	})

	mirrorErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyzer_mirror_errors_total",
		Help: "Durable-store mirror failures, by operation",
	}, []string{"operation"})

	mirrorTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyzer_mirror_tasks_applied_total",
		Help: "Mirror tasks applied by queue workers, by task type",
	}, []string{"task_type"})
)
