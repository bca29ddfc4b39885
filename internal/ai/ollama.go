package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// ollamaClient генерирует текст историй через локальный Ollama.
// Изображения и речь Ollama не поддерживает.
type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOllamaClient создает клиента. baseURL указывается без суффикса /v1.
func NewOllamaClient(baseURL, model string, timeout time.Duration, logger *zap.Logger) (StoryGenerator, error) {
	ollamaBaseURL := strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	parsedURL, err := url.Parse(ollamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", ollamaBaseURL, err)
	}

	client := api.NewClient(parsedURL, &http.Client{Timeout: timeout})
	logger.Info("Ollama client created",
		zap.String("base_url", ollamaBaseURL),
		zap.String("model", model),
		zap.Duration("timeout", timeout),
	)
	return &ollamaClient{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger.Named("OllamaClient"),
	}, nil
}

func (c *ollamaClient) GenerateStory(ctx context.Context, req StoryRequest) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(req.SystemPrompt) == "" {
		return "", usage, NewFormatError("системный промпт пуст")
	}

	messages := []api.Message{{Role: "system", Content: req.SystemPrompt}}
	if req.UserPrompt != "" {
		messages = append(messages, api.Message{Role: "user", Content: req.UserPrompt})
	}

	stream := false
	options := map[string]interface{}{}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Format:   json.RawMessage(`"json"`),
		Options:  options,
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)
	aiRequestDuration.WithLabelValues("story", c.model).Observe(duration.Seconds())

	if err != nil {
		err = classifyError(err)
		aiRequestsTotal.WithLabelValues("story", c.model, statusLabel(err)).Inc()
		c.logger.Error("Ollama story request failed",
			zap.Int64("user_id", req.UserID), zap.Duration("duration", duration), zap.Error(err))
		return "", usage, err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		err = NewFormatError("получен пустой ответ")
		aiRequestsTotal.WithLabelValues("story", c.model, statusLabel(err)).Inc()
		return "", usage, err
	}

	usage = UsageInfo{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}
	observeUsage(c.model, usage)
	aiRequestsTotal.WithLabelValues("story", c.model, "success").Inc()
	c.logger.Info("Story generated", zap.Int64("user_id", req.UserID), zap.Duration("duration", duration))
	return resp.Message.Content, usage, nil
}
