package narration

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/models"
)

// maxSpeechRunes ограничение длины входа TTS.
const maxSpeechRunes = 4000

var narrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storybook_narrations_total",
		Help: "Total number of chapter narrations by status.",
	},
	[]string{"status"},
)

// ChapterAudioStore сохраняет URL озвучки главы.
type ChapterAudioStore interface {
	UpdateChapterAudio(ctx context.Context, storyID int64, chapterIndex int, audioURL string) error
}

// MediaStore сохраняет байты и возвращает публичный URL.
type MediaStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service озвучивает главы.
type Service struct {
	audio   ai.AudioGenerator
	media   MediaStore
	stories ChapterAudioStore
	logger  *zap.Logger
}

func NewService(audio ai.AudioGenerator, media MediaStore, stories ChapterAudioStore, logger *zap.Logger) *Service {
	return &Service{audio: audio, media: media, stories: stories, logger: logger.Named("Narration")}
}

// GenerateChapterAudio озвучивает главу. Сбои провайдера и хранилища
// возвращаются как неуспешный результат, ошибка только для несуществующей главы.
func (s *Service) GenerateChapterAudio(ctx context.Context, story *models.Story, chapterIndex int) (models.NarrationResult, error) {
	chapter, err := story.Chapter(chapterIndex)
	if err != nil {
		return models.NarrationResult{}, err
	}
	log := s.logger.With(zap.Int64("story_id", story.ID), zap.Int("chapter", chapterIndex))

	text := SpeechText(chapter.Title, chapter.Content)
	data, err := s.audio.GenerateAudio(ctx, story.UserID, text)
	if err != nil {
		narrationsTotal.WithLabelValues(statusFor(err)).Inc()
		log.Warn("Narration failed", zap.Error(err))
		return models.NarrationResult{ChapterIndex: chapterIndex, Error: ai.UserMessage(err)}, nil
	}

	key := fmt.Sprintf("stories/%d/chapter-%d-%s.mp3", story.ID, chapterIndex, uuid.NewString()[:8])
	url, err := s.media.Save(ctx, key, data, "audio/mpeg")
	if err != nil {
		narrationsTotal.WithLabelValues("storage_error").Inc()
		log.Error("Failed to store narration", zap.Error(err))
		return models.NarrationResult{ChapterIndex: chapterIndex, Error: "Não foi possível salvar a narração. Tente novamente."}, nil
	}

	story.SetChapterAudio(chapterIndex, url)
	if err := s.stories.UpdateChapterAudio(ctx, story.ID, chapterIndex, url); err != nil {
		log.Error("Failed to persist chapter audio, keeping result", zap.String("audio_url", url), zap.Error(err))
	}

	narrationsTotal.WithLabelValues("success").Inc()
	return models.NarrationResult{ChapterIndex: chapterIndex, Success: true, AudioURL: url}, nil
}

// SpeechText текст для озвучки: заголовок и текст главы, обрезанный по концу
// предложения, если не помещается.
func SpeechText(title, content string) string {
	text := strings.TrimSpace(content)
	if title = strings.TrimSpace(title); title != "" {
		text = title + ".\n\n" + text
	}
	if utf8.RuneCountInString(text) <= maxSpeechRunes {
		return text
	}
	cut := string([]rune(text)[:maxSpeechRunes])
	if i := strings.LastIndexAny(cut, ".!?"); i > maxSpeechRunes/2 {
		return cut[:i+1]
	}
	return cut
}

func statusFor(err error) string {
	if k := ai.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}
