package illustration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"storybook-server/internal/ai"
	"storybook-server/internal/messaging"
	"storybook-server/internal/models"
)

// ChapterImageStore сохраняет URL иллюстрации главы. Повторный вызов перезаписывает.
type ChapterImageStore interface {
	UpdateChapterImage(ctx context.Context, storyID int64, chapterIndex int, imageURL string, isBackup bool) error
}

// CharacterNamer возвращает имена персонажей по ID.
type CharacterNamer interface {
	CharacterNames(ctx context.Context, ids []int64) ([]string, error)
}

// MediaStore сохраняет байты и возвращает публичный URL.
type MediaStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Notifier получает события прогресса.
type Notifier interface {
	Notify(ctx context.Context, event messaging.IllustrationEvent) error
}

// Options параметры оркестратора.
type Options struct {
	Style       string
	Mood        string
	Concurrency int
	Interval    time.Duration
}

// ChapterOptions параметры одного вызова.
type ChapterOptions struct {
	// PromptOverride заменяет сохраненный ImagePrompt только для этого вызова.
	PromptOverride string
	TaskID         string
}

// Orchestrator генерирует иллюстрации глав по одной и пакетом.
type Orchestrator struct {
	images      ai.ImageGenerator
	stories     ChapterImageStore
	names       CharacterNamer
	media       MediaStore
	backups     *BackupPool
	guard       Guard
	notifier    Notifier
	style       string
	mood        string
	concurrency int
	limiter     *rate.Limiter
	logger      *zap.Logger
}

func NewOrchestrator(
	images ai.ImageGenerator,
	stories ChapterImageStore,
	names CharacterNamer,
	media MediaStore,
	backups *BackupPool,
	guard Guard,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	if guard == nil {
		guard = NewLocalGuard()
	}
	return &Orchestrator{
		images:      images,
		stories:     stories,
		names:       names,
		media:       media,
		backups:     backups,
		guard:       guard,
		style:       opts.Style,
		mood:        opts.Mood,
		concurrency: opts.Concurrency,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger.Named("IllustrationOrchestrator"),
	}
}

// WithNotifier возвращает копию оркестратора с уведомлениями.
// Ограничитель частоты общий с исходным.
func (o *Orchestrator) WithNotifier(n Notifier) *Orchestrator {
	cp := *o
	cp.notifier = n
	return &cp
}

// GenerateChapterImage генерирует (или перегенерирует) иллюстрацию главы.
// Сбой провайдера не является ошибкой: результат несет запасную картинку или
// флаг неуспеха. Ошибка возвращается только для несуществующей главы и занятой главы.
func (o *Orchestrator) GenerateChapterImage(ctx context.Context, story *models.Story, chapterIndex int, opts ChapterOptions) (models.IllustrationResult, error) {
	if _, err := story.Chapter(chapterIndex); err != nil {
		return models.IllustrationResult{}, err
	}
	names := o.characterNames(ctx, story)
	if err := o.limiter.Wait(ctx); err != nil {
		return models.NewIllustrationFailure(chapterIndex, "A geração foi cancelada."), nil
	}
	return o.illustrate(ctx, story, chapterIndex, opts, names)
}

// GenerateAllIllustrations проходит по всем главам, не прерываясь на ошибках.
// Результаты идут в порядке глав, каждая глава получает итог.
func (o *Orchestrator) GenerateAllIllustrations(ctx context.Context, story *models.Story, taskID string) models.BulkIllustrationResult {
	start := time.Now()
	log := o.logger.With(zap.Int64("story_id", story.ID), zap.String("task_id", taskID))
	log.Info("Bulk illustration started", zap.Int("chapters", story.TotalChapters()))

	names := o.characterNames(ctx, story)
	results := make([]models.IllustrationResult, story.TotalChapters())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range story.Chapters {
		i := i
		g.Go(func() error {
			if err := o.limiter.Wait(gctx); err != nil {
				results[i] = models.NewIllustrationFailure(i, "A geração foi cancelada.")
				return nil
			}
			res, err := o.illustrate(gctx, story, i, ChapterOptions{TaskID: taskID}, names)
			if err != nil {
				res = models.NewIllustrationFailure(i, failureMessage(err))
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	bulk := models.BulkIllustrationResult{Results: results}
	bulk.Tally()
	illustrationBulkDuration.Observe(time.Since(start).Seconds())

	log.Info("Bulk illustration finished",
		zap.Int("success", bulk.SuccessCount),
		zap.Int("backup", bulk.BackupCount),
		zap.Int("failed", bulk.FailedCount),
		zap.Duration("duration", time.Since(start)),
	)
	o.notify(ctx, messaging.IllustrationEvent{
		Type:    messaging.EventIllustrationComplete,
		TaskID:  taskID,
		UserID:  story.UserID,
		StoryID: story.ID,
		Summary: &bulk,
	})
	return bulk
}

func (o *Orchestrator) illustrate(ctx context.Context, story *models.Story, idx int, opts ChapterOptions, names []string) (models.IllustrationResult, error) {
	log := o.logger.With(zap.Int64("story_id", story.ID), zap.Int("chapter", idx))

	release, err := o.guard.Acquire(ctx, story.ID, idx)
	if err != nil {
		if errors.Is(err, models.ErrIllustrationInProgress) {
			illustrationGuardRejections.Inc()
			log.Info("Chapter illustration already in progress")
			return models.IllustrationResult{}, err
		}
		// недоступность блокировки не должна блокировать генерацию
		log.Warn("Illustration guard unavailable, continuing without lock", zap.Error(err))
		release = func() {}
	}
	defer release()

	chapter := &story.Chapters[idx]
	prompt := chapter.ImagePrompt
	if opts.PromptOverride != "" {
		prompt = opts.PromptOverride
	}

	result := o.generate(ctx, story, chapter, prompt, names, log)

	if result.Success {
		story.SetChapterImage(idx, result.ImageURL, result.IsBackup)
		if err := o.stories.UpdateChapterImage(ctx, story.ID, idx, result.ImageURL, result.IsBackup); err != nil {
			illustrationPersistFailures.Inc()
			log.Error("Failed to persist chapter image, keeping result", zap.String("image_url", result.ImageURL), zap.Error(err))
		}
	}

	illustrationsTotal.WithLabelValues(string(story.AgeGroup), string(result.Outcome)).Inc()
	o.notify(ctx, messaging.IllustrationEvent{
		Type:    messaging.EventChapterIllustrated,
		TaskID:  opts.TaskID,
		UserID:  story.UserID,
		StoryID: story.ID,
		Result:  &result,
	})
	return result, nil
}

// generate вызывает провайдера и при сбое подставляет запасную картинку.
func (o *Orchestrator) generate(ctx context.Context, story *models.Story, chapter *models.Chapter, prompt string, names []string, log *zap.Logger) models.IllustrationResult {
	img, err := o.images.GenerateChapterImage(ctx, ai.ImageRequest{
		UserID:         story.UserID,
		Prompt:         prompt,
		ChapterTitle:   chapter.Title,
		CharacterNames: names,
		Style:          o.style,
		Mood:           o.mood,
		AgeGroup:       story.AgeGroup,
	})
	if err == nil {
		url, storeErr := o.store(ctx, story.ID, chapter.Index, img)
		if storeErr == nil {
			return models.NewProviderSuccess(chapter.Index, url)
		}
		err = storeErr
	}

	log.Warn("Chapter illustration failed, trying backup", zap.Error(err))
	backupURL, pickErr := o.backups.Pick(story.AgeGroup, story.ID, chapter.Index)
	if pickErr != nil {
		log.Error("No backup illustration", zap.Error(pickErr))
		return models.NewIllustrationFailure(chapter.Index, failureMessage(err))
	}
	return models.NewBackupSuccess(chapter.Index, backupURL, failureMessage(err))
}

// store сохраняет байты изображения, если провайдер вернул данные, а не URL.
func (o *Orchestrator) store(ctx context.Context, storyID int64, idx int, img *ai.GeneratedImage) (string, error) {
	if len(img.Data) == 0 {
		return img.URL, nil
	}
	key := fmt.Sprintf("stories/%d/chapter-%d-%s.png", storyID, idx, uuid.NewString()[:8])
	url, err := o.media.Save(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("сохранение изображения: %w", err)
	}
	return url, nil
}

func (o *Orchestrator) characterNames(ctx context.Context, story *models.Story) []string {
	if o.names == nil || len(story.CharacterIDs) == 0 {
		return nil
	}
	names, err := o.names.CharacterNames(ctx, story.CharacterIDs)
	if err != nil {
		o.logger.Warn("Failed to resolve character names for illustration", zap.Int64("story_id", story.ID), zap.Error(err))
		return nil
	}
	return names
}

func (o *Orchestrator) notify(ctx context.Context, event messaging.IllustrationEvent) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Notify(ctx, event); err != nil {
		o.logger.Warn("Failed to publish illustration event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func errInProgress(storyID int64, chapterIndex int) error {
	return fmt.Errorf("%w: story %d chapter %d", models.ErrIllustrationInProgress, storyID, chapterIndex)
}

// failureMessage текст для пользователя.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrIllustrationInProgress):
		return "A ilustração deste capítulo já está sendo gerada."
	case ai.KindOf(err) != "":
		return ai.UserMessage(err)
	}
	return "Não foi possível gerar a ilustração deste capítulo."
}
