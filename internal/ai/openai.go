package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// maxImagePromptRunes ограничение длины промпта для моделей изображений.
const maxImagePromptRunes = 3800

// OpenAIClient реализует генерацию текста, изображений и речи через
// OpenAI-совместимый API.
type OpenAIClient struct {
	client       *openaigo.Client
	textModel    string
	imageModel   string
	imageSize    string
	imageTimeout time.Duration
	speechModel  string
	speechVoice  string
	logger       *zap.Logger
}

// OpenAIOptions параметры клиента.
type OpenAIOptions struct {
	APIKey       string
	BaseURL      string
	TextModel    string
	Timeout      time.Duration
	ImageModel   string
	ImageSize    string
	ImageTimeout time.Duration
	SpeechModel  string
	SpeechVoice  string
}

// NewOpenAIClient создает клиента. Таймаут HTTP берется большим из текстового и
// графического, отдельные вызовы ограничиваются контекстом.
func NewOpenAIClient(opts OpenAIOptions, logger *zap.Logger) *OpenAIClient {
	cfg := openaigo.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	httpTimeout := opts.Timeout
	if opts.ImageTimeout > httpTimeout {
		httpTimeout = opts.ImageTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: httpTimeout}
	c := &OpenAIClient{
		client:       openaigo.NewClientWithConfig(cfg),
		textModel:    opts.TextModel,
		imageModel:   opts.ImageModel,
		imageSize:    opts.ImageSize,
		imageTimeout: opts.ImageTimeout,
		speechModel:  opts.SpeechModel,
		speechVoice:  opts.SpeechVoice,
		logger:       logger.Named("OpenAIClient"),
	}
	logger.Info("OpenAI client created",
		zap.String("base_url", cfg.BaseURL),
		zap.String("text_model", opts.TextModel),
		zap.String("image_model", opts.ImageModel),
	)
	return c
}

// GenerateStory запрашивает историю как JSON-объект.
func (c *OpenAIClient) GenerateStory(ctx context.Context, req StoryRequest) (string, UsageInfo, error) {
	usage := UsageInfo{}
	if strings.TrimSpace(req.SystemPrompt) == "" {
		return "", usage, NewFormatError("системный промпт пуст")
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: req.SystemPrompt},
	}
	if req.UserPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleUser, Content: req.UserPrompt})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.textModel,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		User:        strconv.FormatInt(req.UserID, 10),
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	duration := time.Since(start)
	aiRequestDuration.WithLabelValues("story", c.textModel).Observe(duration.Seconds())

	if err != nil {
		err = classifyError(err)
		aiRequestsTotal.WithLabelValues("story", c.textModel, statusLabel(err)).Inc()
		c.logger.Error("Story generation request failed",
			zap.Int64("user_id", req.UserID), zap.Duration("duration", duration), zap.Error(err))
		return "", usage, err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		err = NewFormatError("получен пустой ответ")
		aiRequestsTotal.WithLabelValues("story", c.textModel, statusLabel(err)).Inc()
		c.logger.Warn("AI returned empty story", zap.Int64("user_id", req.UserID))
		return "", usage, err
	}

	usage = UsageInfo{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.PromptTokens = EstimateTokens(c.textModel, req.SystemPrompt) + EstimateTokens(c.textModel, req.UserPrompt)
		usage.CompletionTokens = EstimateTokens(c.textModel, resp.Choices[0].Message.Content)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	observeUsage(c.textModel, usage)
	aiRequestsTotal.WithLabelValues("story", c.textModel, "success").Inc()

	c.logger.Info("Story generated",
		zap.Int64("user_id", req.UserID),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, usage, nil
}

// GenerateChapterImage генерирует иллюстрацию и возвращает байты PNG.
func (c *OpenAIClient) GenerateChapterImage(ctx context.Context, req ImageRequest) (*GeneratedImage, error) {
	if c.imageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.imageTimeout)
		defer cancel()
	}

	prompt := ComposeImagePrompt(req)
	start := time.Now()
	resp, err := c.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           c.imageSize,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
		User:           strconv.FormatInt(req.UserID, 10),
	})
	duration := time.Since(start)
	aiRequestDuration.WithLabelValues("image", c.imageModel).Observe(duration.Seconds())

	if err != nil {
		err = classifyError(err)
		aiRequestsTotal.WithLabelValues("image", c.imageModel, statusLabel(err)).Inc()
		c.logger.Warn("Image generation request failed",
			zap.String("chapter_title", req.ChapterTitle), zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}
	if len(resp.Data) == 0 {
		err = NewFormatError("провайдер не вернул изображение")
		aiRequestsTotal.WithLabelValues("image", c.imageModel, statusLabel(err)).Inc()
		return nil, err
	}

	item := resp.Data[0]
	img := &GeneratedImage{URL: item.URL, ContentType: "image/png"}
	if item.B64JSON != "" {
		data, decErr := base64.StdEncoding.DecodeString(item.B64JSON)
		if decErr != nil {
			err = NewFormatError("некорректный base64 изображения: %v", decErr)
			aiRequestsTotal.WithLabelValues("image", c.imageModel, statusLabel(err)).Inc()
			return nil, err
		}
		img.Data = data
	}
	if len(img.Data) == 0 && img.URL == "" {
		err = NewFormatError("пустые данные изображения")
		aiRequestsTotal.WithLabelValues("image", c.imageModel, statusLabel(err)).Inc()
		return nil, err
	}

	aiRequestsTotal.WithLabelValues("image", c.imageModel, "success").Inc()
	c.logger.Debug("Image generated", zap.String("chapter_title", req.ChapterTitle), zap.Duration("duration", duration))
	return img, nil
}

// GenerateAudio озвучивает текст главы в mp3.
func (c *OpenAIClient) GenerateAudio(ctx context.Context, userID int64, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewFormatError("пустой текст для озвучки")
	}

	start := time.Now()
	resp, err := c.client.CreateSpeech(ctx, openaigo.CreateSpeechRequest{
		Model:          openaigo.SpeechModel(c.speechModel),
		Input:          text,
		Voice:          openaigo.SpeechVoice(c.speechVoice),
		ResponseFormat: openaigo.SpeechResponseFormatMp3,
	})
	aiRequestDuration.WithLabelValues("speech", c.speechModel).Observe(time.Since(start).Seconds())
	if err != nil {
		err = classifyError(err)
		aiRequestsTotal.WithLabelValues("speech", c.speechModel, statusLabel(err)).Inc()
		c.logger.Warn("Speech generation request failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		err = &ProviderError{Kind: KindConnectivity, Err: fmt.Errorf("чтение аудио: %w", err)}
		aiRequestsTotal.WithLabelValues("speech", c.speechModel, statusLabel(err)).Inc()
		return nil, err
	}
	if len(data) == 0 {
		err = NewFormatError("провайдер вернул пустое аудио")
		aiRequestsTotal.WithLabelValues("speech", c.speechModel, statusLabel(err)).Inc()
		return nil, err
	}
	aiRequestsTotal.WithLabelValues("speech", c.speechModel, "success").Inc()
	return data, nil
}

// ComposeImagePrompt собирает итоговый промпт для модели изображений.
func ComposeImagePrompt(req ImageRequest) string {
	var b strings.Builder
	if req.ChapterTitle != "" {
		fmt.Fprintf(&b, "Ilustração para o capítulo \"%s\" de uma história infantil. ", req.ChapterTitle)
	}
	fmt.Fprintf(&b, "Cena: %s.", strings.TrimRight(strings.TrimSpace(req.Prompt), "."))
	if len(req.CharacterNames) > 0 {
		fmt.Fprintf(&b, " Personagens: %s.", strings.Join(req.CharacterNames, ", "))
	}
	if req.Style != "" {
		fmt.Fprintf(&b, " Estilo: %s.", req.Style)
	}
	if req.Mood != "" {
		fmt.Fprintf(&b, " Clima: %s.", req.Mood)
	}
	if req.AgeGroup != "" {
		fmt.Fprintf(&b, " Público: crianças de %s anos.", req.AgeGroup)
	}
	b.WriteString(" Sem texto escrito na imagem.")

	prompt := b.String()
	if utf8.RuneCountInString(prompt) > maxImagePromptRunes {
		prompt = string([]rune(prompt)[:maxImagePromptRunes])
	}
	return prompt
}
