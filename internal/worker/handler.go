package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storybook-server/internal/illustration"
	"storybook-server/internal/messaging"
	"storybook-server/internal/models"
)

// StoryLoader читает историю с главами.
type StoryLoader interface {
	GetStory(ctx context.Context, id int64) (*models.Story, error)
}

// BulkIllustrator пакетная генерация иллюстраций.
type BulkIllustrator interface {
	GenerateAllIllustrations(ctx context.Context, story *models.Story, taskID string) models.BulkIllustrationResult
}

// Handler обрабатывает задачи из очереди storybook.illustration.tasks.
type Handler struct {
	stories     StoryLoader
	illustrator BulkIllustrator
	notifier    illustration.Notifier
	logger      *zap.Logger
}

// NewHandler создает обработчик. События глав и итог публикует сам
// illustrator, notifier нужен для отказов до запуска генерации.
func NewHandler(stories StoryLoader, illustrator BulkIllustrator, notifier illustration.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		stories:     stories,
		illustrator: illustrator,
		notifier:    notifier,
		logger:      logger.Named("IllustrationTaskHandler"),
	}
}

// HandleDelivery возвращает true, если сообщение нужно подтвердить.
func (h *Handler) HandleDelivery(ctx context.Context, msg amqp091.Delivery) bool {
	start := time.Now()
	defer func() { taskDuration.Observe(time.Since(start).Seconds()) }()

	var task messaging.IllustrationTaskPayload
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		h.logger.Error("Failed to unmarshal illustration task",
			zap.Error(err),
			zap.String("correlation_id", msg.CorrelationId),
			zap.ByteString("body", msg.Body))
		tasksProcessed.WithLabelValues("error_unmarshal").Inc()
		return false
	}

	log := h.logger.With(
		zap.String("task_id", task.TaskID),
		zap.Int64("story_id", task.StoryID),
		zap.Int64("user_id", task.UserID),
	)
	log.Info("Received illustration task")

	story, err := h.stories.GetStory(ctx, task.StoryID)
	if err != nil {
		if errors.Is(err, models.ErrStoryNotFound) {
			log.Warn("Story for illustration task not found")
			h.reject(ctx, task, "A história não foi encontrada.", log)
			return true
		}
		// ошибка БД: одна повторная доставка
		log.Error("Failed to load story for illustration task", zap.Error(err))
		tasksProcessed.WithLabelValues("error_load").Inc()
		return false
	}
	if !story.OwnedBy(task.UserID) {
		log.Warn("Illustration task user does not own the story", zap.Int64("owner_id", story.UserID))
		h.reject(ctx, task, "Você não tem acesso a esta história.", log)
		return true
	}

	bulk := h.illustrator.GenerateAllIllustrations(ctx, story, task.TaskID)
	status := "success"
	if bulk.SuccessCount < bulk.TotalCount {
		status = "partial"
	}
	tasksProcessed.WithLabelValues(status).Inc()
	log.Info("Illustration task finished",
		zap.Int("success", bulk.SuccessCount),
		zap.Int("backup", bulk.BackupCount),
		zap.Int("failed", bulk.FailedCount),
		zap.Duration("duration", time.Since(start)))
	return true
}

func (h *Handler) reject(ctx context.Context, task messaging.IllustrationTaskPayload, message string, log *zap.Logger) {
	tasksProcessed.WithLabelValues("rejected").Inc()
	if h.notifier == nil {
		return
	}
	err := h.notifier.Notify(ctx, messaging.IllustrationEvent{
		Type:    messaging.EventIllustrationFailed,
		TaskID:  task.TaskID,
		UserID:  task.UserID,
		StoryID: task.StoryID,
		Error:   message,
	})
	if err != nil {
		log.Error("Failed to publish illustration failure event", zap.Error(err))
	}
}

var _ messaging.DeliveryHandler = (*Handler)(nil)
