package ai

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storybook-server/internal/config"
)

// NewStoryGenerator выбирает реализацию по AI_CLIENT_TYPE и добавляет повторы,
// если AI_MAX_ATTEMPTS > 1.
func NewStoryGenerator(cfg *config.Config, media *OpenAIClient, logger *zap.Logger) (StoryGenerator, error) {
	var gen StoryGenerator
	switch strings.ToLower(cfg.AI.ClientType) {
	case "openai":
		logger.Info("Using AI client implementation: OpenAI")
		gen = media
	case "ollama":
		logger.Info("Using AI client implementation: Ollama")
		ollama, err := NewOllamaClient(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout, logger)
		if err != nil {
			return nil, err
		}
		gen = ollama
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: %s", cfg.AI.ClientType)
	}
	return WithRetry(gen, cfg.AI.MaxAttempts, cfg.AI.BaseRetryDelay, logger), nil
}

// NewMediaClient создает OpenAI-клиента для изображений и речи
// (и текста, когда выбран openai).
func NewMediaClient(cfg *config.Config, logger *zap.Logger) *OpenAIClient {
	baseURL := cfg.AI.BaseURL
	if strings.EqualFold(cfg.AI.ClientType, "ollama") {
		// AI_BASE_URL указывает на Ollama, медиа идут в OpenAI по умолчанию
		baseURL = ""
	}
	return NewOpenAIClient(OpenAIOptions{
		APIKey:       cfg.AI.APIKey,
		BaseURL:      baseURL,
		TextModel:    cfg.AI.Model,
		Timeout:      cfg.AI.Timeout,
		ImageModel:   cfg.Image.Model,
		ImageSize:    cfg.Image.Size,
		ImageTimeout: cfg.Image.Timeout,
		SpeechModel:  cfg.Speech.Model,
		SpeechVoice:  cfg.Speech.Voice,
	}, logger)
}
