package illustration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	illustrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_illustrations_total",
			Help: "Total number of chapter illustrations by outcome.",
		},
		[]string{"age_group", "outcome"},
	)
	illustrationPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storybook_illustration_persist_failures_total",
			Help: "Total number of illustration URLs that could not be persisted.",
		},
	)
	illustrationBulkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storybook_illustration_bulk_duration_seconds",
			Help:    "Duration of bulk illustration runs.",
			Buckets: []float64{5, 15, 30, 60, 120, 240, 480},
		},
	)
	illustrationGuardRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storybook_illustration_guard_rejections_total",
			Help: "Total number of illustration requests rejected because the chapter was already in progress.",
		},
	)
)
