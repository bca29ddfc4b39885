package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_worker_tasks_processed_total",
			Help: "Total number of illustration tasks processed.",
		},
		[]string{"status"}, // "success", "partial", "error_unmarshal", "error_load", "rejected"
	)
	taskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storybook_worker_task_duration_seconds",
		Help:    "Duration of illustration task processing.",
		Buckets: []float64{5, 15, 30, 60, 120, 240, 480},
	})
)
