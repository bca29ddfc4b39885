package ai

import (
	"context"

	"storybook-server/internal/models"
)

// UsageInfo содержит информацию об использовании токенов.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StoryRequest запрос на генерацию текста истории.
type StoryRequest struct {
	UserID       int64
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// ImageRequest запрос на иллюстрацию главы.
type ImageRequest struct {
	UserID         int64
	Prompt         string
	ChapterTitle   string
	CharacterNames []string
	Style          string
	Mood           string
	AgeGroup       models.AgeGroup
}

// GeneratedImage ответ провайдера изображений: либо байты, либо готовый URL.
type GeneratedImage struct {
	Data        []byte
	URL         string
	ContentType string
}

// StoryGenerator генерирует сырой (JSON) текст истории.
type StoryGenerator interface {
	GenerateStory(ctx context.Context, req StoryRequest) (string, UsageInfo, error)
}

// ImageGenerator генерирует иллюстрацию главы.
type ImageGenerator interface {
	GenerateChapterImage(ctx context.Context, req ImageRequest) (*GeneratedImage, error)
}

// AudioGenerator озвучивает текст. Возвращает mp3.
type AudioGenerator interface {
	GenerateAudio(ctx context.Context, userID int64, text string) ([]byte, error)
}
