package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ipac_mutations_total",
		Help: "Mutating operations applied, by entity type and action.",
	}, []string{"entity", "action"})

	validationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ipac_validation_failures_total",
		Help: "Write requests rejected by schema or invariant validation.",
	})

	auditEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ipac_audit_entries_total",
		Help: "Audit entries appended to the trail.",
	})
)
