package messaging

import (
	"time"

	"storybook-server/internal/models"
)

// IllustrationTaskPayload задача пакетной генерации иллюстраций для воркера.
type IllustrationTaskPayload struct {
	TaskID    string    `json:"task_id"`
	UserID    int64     `json:"user_id"`
	StoryID   int64     `json:"story_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EventType тип события, уходящего клиенту.
type EventType string

const (
	EventChapterIllustrated   EventType = "illustration.chapter"
	EventIllustrationComplete EventType = "illustration.completed"
	EventIllustrationFailed   EventType = "illustration.failed"
	EventSessionInvalidated   EventType = "session.invalidated"
)

// IllustrationEvent прогресс генерации иллюстраций. Для события главы заполнен
// Result, для итогового Summary.
type IllustrationEvent struct {
	Type      EventType                      `json:"type"`
	TaskID    string                         `json:"task_id,omitempty"`
	UserID    int64                          `json:"user_id"`
	StoryID   int64                          `json:"story_id"`
	Result    *models.IllustrationResult     `json:"result,omitempty"`
	Summary   *models.BulkIllustrationResult `json:"summary,omitempty"`
	Error     string                         `json:"error,omitempty"`
	Timestamp time.Time                      `json:"timestamp"`
}
