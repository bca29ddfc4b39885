package reading

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storybook-server/internal/models"
)

// Repository хранилище сессий чтения.
type Repository interface {
	GetByChildAndStory(ctx context.Context, childID, storyID int64) (*models.ReadingSession, error)
	GetByID(ctx context.Context, id int64) (*models.ReadingSession, error)
	// Upsert создает или обновляет сессию по (child_id, story_id).
	Upsert(ctx context.Context, s *models.ReadingSession) (*models.ReadingSession, error)
}

// StoryReader источник историй для проверки владельца и числа глав.
type StoryReader interface {
	GetStory(ctx context.Context, id int64) (*models.Story, error)
}

// ProgressUpdate отметка о прочитанной главе.
// TotalChapters 0 означает "взять число глав истории".
type ProgressUpdate struct {
	ChildID        int64
	StoryID        int64
	ChapterIndex   int
	TotalChapters  int
	ElapsedMinutes int
}

// Tracker ведет прогресс чтения.
type Tracker struct {
	sessions Repository
	stories  StoryReader
	logger   *zap.Logger
}

func NewTracker(sessions Repository, stories StoryReader, logger *zap.Logger) *Tracker {
	return &Tracker{sessions: sessions, stories: stories, logger: logger.Named("ReadingTracker")}
}

// ComputeProgress процент прочитанного по индексу главы.
// История из одной главы считается прочитанной при открытии.
func ComputeProgress(chapterIndex, totalChapters int) int {
	if totalChapters <= 1 {
		return 100
	}
	p := chapterIndex * 100 / (totalChapters - 1)
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}

// RecordProgress находит или создает сессию (child, story) и обновляет ее.
// Сохраненный прогресс не уменьшается при возврате к ранним главам.
func (t *Tracker) RecordProgress(ctx context.Context, session models.Session, upd ProgressUpdate) (*models.ReadingSession, error) {
	if upd.ChildID <= 0 || upd.StoryID <= 0 {
		return nil, fmt.Errorf("%w: childId и storyId обязательны", models.ErrInvalidProgress)
	}
	if upd.ElapsedMinutes < 0 {
		return nil, fmt.Errorf("%w: отрицательная длительность", models.ErrInvalidProgress)
	}

	story, err := t.stories.GetStory(ctx, upd.StoryID)
	if err != nil {
		return nil, err
	}
	if !story.OwnedBy(session.UserID) {
		return nil, fmt.Errorf("%w: история %d принадлежит другому пользователю", models.ErrForbidden, upd.StoryID)
	}

	total := upd.TotalChapters
	storyTotal := story.TotalChapters()
	if total == 0 {
		total = storyTotal
	}
	if total < 1 || total != storyTotal {
		return nil, fmt.Errorf("%w: totalChapters %d, в истории %d глав", models.ErrInvalidProgress, upd.TotalChapters, storyTotal)
	}
	if upd.ChapterIndex < 0 || upd.ChapterIndex >= total {
		return nil, fmt.Errorf("%w: глава %d вне диапазона [0, %d)", models.ErrInvalidProgress, upd.ChapterIndex, total)
	}

	progress := ComputeProgress(upd.ChapterIndex, total)

	next := &models.ReadingSession{
		ChildID:     upd.ChildID,
		StoryID:     upd.StoryID,
		Progress:    progress,
		Duration:    upd.ElapsedMinutes,
		LastChapter: upd.ChapterIndex,
	}

	existing, err := t.sessions.GetByChildAndStory(ctx, upd.ChildID, upd.StoryID)
	switch {
	case err == nil:
		next.ID = existing.ID
		if existing.Progress > next.Progress {
			next.Progress = existing.Progress
		}
	case errors.Is(err, models.ErrReadingSessionNotFound):
		// первая запись для пары (child, story)
	default:
		return nil, fmt.Errorf("загрузка сессии чтения: %w", err)
	}
	next.Completed = next.Progress == 100

	saved, err := t.sessions.Upsert(ctx, next)
	if err != nil {
		t.logger.Error("Failed to upsert reading session",
			zap.Int64("child_id", upd.ChildID), zap.Int64("story_id", upd.StoryID), zap.Error(err))
		return nil, fmt.Errorf("сохранение сессии чтения: %w", err)
	}

	t.logger.Debug("Reading progress recorded",
		zap.Int64("child_id", saved.ChildID),
		zap.Int64("story_id", saved.StoryID),
		zap.Int("progress", saved.Progress),
		zap.Bool("completed", saved.Completed),
	)
	return saved, nil
}

// UpdateSession обновляет существующую сессию по ее ID.
func (t *Tracker) UpdateSession(ctx context.Context, session models.Session, sessionID int64, chapterIndex, elapsedMinutes int) (*models.ReadingSession, error) {
	rs, err := t.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return t.RecordProgress(ctx, session, ProgressUpdate{
		ChildID:        rs.ChildID,
		StoryID:        rs.StoryID,
		ChapterIndex:   chapterIndex,
		ElapsedMinutes: elapsedMinutes,
	})
}

// GetSession возвращает сессию, если история принадлежит пользователю.
func (t *Tracker) GetSession(ctx context.Context, session models.Session, sessionID int64) (*models.ReadingSession, error) {
	rs, err := t.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	story, err := t.stories.GetStory(ctx, rs.StoryID)
	if err != nil {
		return nil, err
	}
	if !story.OwnedBy(session.UserID) {
		return nil, models.ErrForbidden
	}
	return rs, nil
}
