package assembly

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesAssembledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_stories_assembled_total",
			Help: "Total number of story assembly attempts by outcome.",
		},
		[]string{"age_group", "status"},
	)
	storyChapters = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_story_chapters",
			Help:    "Number of chapters per assembled story.",
			Buckets: prometheus.LinearBuckets(1, 1, 12),
		},
		[]string{"age_group"},
	)
	storyPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_story_prompt_tokens_estimated",
			Help:    "Estimated story prompt size in tokens before the provider call.",
			Buckets: prometheus.LinearBuckets(100, 100, 10),
		},
		[]string{"age_group"},
	)
)
