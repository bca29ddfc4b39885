package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// withRetry выполняет fn до attempts раз. Повторяются только ошибки лимита и
// связности, задержка растет экспоненциально от baseDelay.
func withRetry[T any](ctx context.Context, log *zap.Logger, operation string, attempts int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}
	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = fn(ctx)
		if err == nil || !IsRetryable(err) || attempt == attempts {
			return result, err
		}

		delay := baseDelay * time.Duration(1<<(attempt-1))
		aiRetriesTotal.WithLabelValues(operation, string(KindOf(err))).Inc()
		log.Warn("Retrying AI call after retryable error",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, err
		case <-timer.C:
		}
	}
	return result, err
}

// retryingStoryGenerator оборачивает StoryGenerator повторами.
type retryingStoryGenerator struct {
	next      StoryGenerator
	attempts  int
	baseDelay time.Duration
	logger    *zap.Logger
}

// WithRetry добавляет повторы к генератору. attempts <= 1 возвращает next как есть.
func WithRetry(next StoryGenerator, attempts int, baseDelay time.Duration, logger *zap.Logger) StoryGenerator {
	if attempts <= 1 {
		return next
	}
	return &retryingStoryGenerator{next: next, attempts: attempts, baseDelay: baseDelay, logger: logger}
}

type storyReply struct {
	text  string
	usage UsageInfo
}

func (r *retryingStoryGenerator) GenerateStory(ctx context.Context, req StoryRequest) (string, UsageInfo, error) {
	reply, err := withRetry(ctx, r.logger, "story", r.attempts, r.baseDelay, func(ctx context.Context) (storyReply, error) {
		text, usage, err := r.next.GenerateStory(ctx, req)
		return storyReply{text: text, usage: usage}, err
	})
	return reply.text, reply.usage, err
}
