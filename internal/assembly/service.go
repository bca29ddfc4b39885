package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/models"
)

const maxChildNameRunes = 40

// CatalogReader источник персонажей и тем.
type CatalogReader interface {
	ResolveCharacters(ctx context.Context, ids []int64) ([]models.Character, error)
	GetTheme(ctx context.Context, id int64) (*models.Theme, error)
}

// StoryCreator сохраняет историю вместе с главами и проставляет ID.
type StoryCreator interface {
	CreateStory(ctx context.Context, story *models.Story) error
}

// Service собирает историю из выбора мастера одним вызовом провайдера.
type Service struct {
	generator ai.StoryGenerator
	catalog   CatalogReader
	stories   StoryCreator
	logger    *zap.Logger
}

func NewService(generator ai.StoryGenerator, catalog CatalogReader, stories StoryCreator, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		catalog:   catalog,
		stories:   stories,
		logger:    logger.Named("StoryAssembly"),
	}
}

// Assemble проверяет выбор, генерирует историю, раскладывает ее на главы и сохраняет.
func (s *Service) Assemble(ctx context.Context, session models.Session, sel models.WizardSelection) (*models.Story, error) {
	log := s.logger.With(zap.Int64("user_id", session.UserID), zap.String("age_group", string(sel.AgeGroup)))

	if err := sel.Validate(); err != nil {
		storiesAssembledTotal.WithLabelValues(string(sel.AgeGroup), "invalid").Inc()
		return nil, err
	}
	tier, err := TierFor(sel.AgeGroup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidSelection, err)
	}

	characters, theme, err := s.resolveSelection(ctx, sel)
	if err != nil {
		storiesAssembledTotal.WithLabelValues(string(sel.AgeGroup), "invalid").Inc()
		log.Warn("Selection rejected", zap.Error(err))
		return nil, err
	}

	childName := sanitizeChildName(sel.ChildName)
	if childName != "" && !session.HasEntitlement(models.EntitlementPersonalization) {
		log.Info("Child name dropped: plan has no personalization entitlement", zap.String("plan", session.Plan))
		childName = ""
	}

	system, user := BuildPrompt(PromptInput{
		Tier:       tier,
		Characters: characters,
		Theme:      *theme,
		ChildName:  childName,
	})
	// оценка по словарю tiktoken, провайдер может и не вернуть usage
	promptTokens := ai.EstimateTokens("", system) + ai.EstimateTokens("", user)
	storyPromptTokens.WithLabelValues(string(sel.AgeGroup)).Observe(float64(promptTokens))
	log.Debug("Story prompt built", zap.Int("prompt_tokens_estimated", promptTokens), zap.Int("max_tokens", tier.MaxTokens))

	raw, usage, err := s.generator.GenerateStory(ctx, ai.StoryRequest{
		UserID:       session.UserID,
		SystemPrompt: system,
		UserPrompt:   user,
		MaxTokens:    tier.MaxTokens,
		Temperature:  0.8,
	})
	if err != nil {
		storiesAssembledTotal.WithLabelValues(string(sel.AgeGroup), statusFor(err)).Inc()
		log.Error("Story generation failed", zap.Error(err))
		return nil, err
	}

	generated, err := ParseGeneratedStory(raw)
	if err != nil {
		storiesAssembledTotal.WithLabelValues(string(sel.AgeGroup), statusFor(err)).Inc()
		log.Warn("Story response has unexpected format", zap.Error(err), zap.Int("response_len", len(raw)))
		return nil, err
	}

	chapters := BuildChapters(generated, tier)
	if len(chapters) == 0 {
		storiesAssembledTotal.WithLabelValues(string(sel.AgeGroup), "format").Inc()
		return nil, ai.NewFormatError("история не содержит глав")
	}

	readingTime := int(generated.ReadingTime)
	if readingTime <= 0 {
		readingTime = EstimateReadingTime(chapters)
	}

	story := &models.Story{
		UserID:       session.UserID,
		ChildID:      sel.ChildID,
		Title:        generated.Title,
		AgeGroup:     sel.AgeGroup,
		CharacterIDs: append([]int64(nil), sel.CharacterIDs...),
		ThemeID:      sel.ThemeID,
		Summary:      generated.Summary,
		ReadingTime:  readingTime,
		Personalized: childName != "",
		Chapters:     chapters,
	}

	if err := s.stories.CreateStory(ctx, story); err != nil {
		storiesAssembledTotal.WithLabelValues(string(sel.AgeGroup), "persist_error").Inc()
		log.Error("Failed to persist assembled story", zap.Error(err))
		return nil, fmt.Errorf("сохранение истории: %w", err)
	}

	storiesAssembledTotal.WithLabelValues(string(sel.AgeGroup), "success").Inc()
	storyChapters.WithLabelValues(string(sel.AgeGroup)).Observe(float64(len(chapters)))
	log.Info("Story assembled",
		zap.Int64("story_id", story.ID),
		zap.Int("chapters", len(chapters)),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Bool("personalized", story.Personalized),
	)
	return story, nil
}

// resolveSelection проверяет существование и возрастную применимость персонажей и темы.
func (s *Service) resolveSelection(ctx context.Context, sel models.WizardSelection) ([]models.Character, *models.Theme, error) {
	characters, err := s.catalog.ResolveCharacters(ctx, sel.CharacterIDs)
	if err != nil {
		if errors.Is(err, models.ErrCharacterNotFound) {
			return nil, nil, fmt.Errorf("%w: %w", models.ErrInvalidSelection, err)
		}
		return nil, nil, fmt.Errorf("загрузка персонажей: %w", err)
	}
	for _, c := range characters {
		if !c.AllowedFor(sel.AgeGroup) {
			return nil, nil, fmt.Errorf("%w: %w: %s", models.ErrInvalidSelection, models.ErrCharacterNotAllowed, c.Name)
		}
	}

	theme, err := s.catalog.GetTheme(ctx, sel.ThemeID)
	if err != nil {
		if errors.Is(err, models.ErrThemeNotFound) {
			return nil, nil, fmt.Errorf("%w: %w", models.ErrInvalidSelection, err)
		}
		return nil, nil, fmt.Errorf("загрузка темы: %w", err)
	}
	if !theme.AllowedFor(sel.AgeGroup) {
		return nil, nil, fmt.Errorf("%w: %w: %s", models.ErrInvalidSelection, models.ErrThemeNotAllowed, theme.Name)
	}
	return characters, theme, nil
}

func sanitizeChildName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(name) > maxChildNameRunes {
		name = string([]rune(name)[:maxChildNameRunes])
	}
	return name
}

func statusFor(err error) string {
	if k := ai.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}
