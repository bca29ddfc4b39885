package repository

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

const readingSessionColumns = `id, child_id, story_id, progress, completed, duration, last_chapter, created_at, updated_at`

const getReadingSessionByChildAndStoryQuery = `
SELECT ` + readingSessionColumns + `
FROM reading_sessions
WHERE child_id = $1 AND story_id = $2`

const getReadingSessionByIDQuery = `
SELECT ` + readingSessionColumns + `
FROM reading_sessions
WHERE id = $1`

// Прогресс в базе не уменьшается, даже если два запроса пришли не по порядку.
// duration копится в самой базе, параллельные записи не теряют минуты.
const upsertReadingSessionQuery = `
INSERT INTO reading_sessions (child_id, story_id, progress, completed, duration, last_chapter)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (child_id, story_id) DO UPDATE SET
    progress = GREATEST(reading_sessions.progress, EXCLUDED.progress),
    completed = GREATEST(reading_sessions.progress, EXCLUDED.progress) = 100,
    duration = reading_sessions.duration + EXCLUDED.duration,
    last_chapter = EXCLUDED.last_chapter,
    updated_at = NOW()
RETURNING ` + readingSessionColumns

// ReadingSessionRepository сессии чтения в PostgreSQL.
type ReadingSessionRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewReadingSessionRepository(pool *pgxpool.Pool, logger *zap.Logger) *ReadingSessionRepository {
	return &ReadingSessionRepository{pool: pool, logger: logger.Named("PgReadingSessionRepo")}
}

func (r *ReadingSessionRepository) GetByChildAndStory(ctx context.Context, childID, storyID int64) (*models.ReadingSession, error) {
	var rs models.ReadingSession
	if err := pgxscan.Get(ctx, r.pool, &rs, getReadingSessionByChildAndStoryQuery, childID, storyID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrReadingSessionNotFound
		}
		r.logger.Error("Failed to get reading session", zap.Int64("childID", childID), zap.Int64("storyID", storyID), zap.Error(err))
		return nil, err
	}
	return &rs, nil
}

func (r *ReadingSessionRepository) GetByID(ctx context.Context, id int64) (*models.ReadingSession, error) {
	var rs models.ReadingSession
	if err := pgxscan.Get(ctx, r.pool, &rs, getReadingSessionByIDQuery, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrReadingSessionNotFound
		}
		r.logger.Error("Failed to get reading session", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &rs, nil
}

// Upsert одна строка на пару (child_id, story_id). s.Duration прибавляется
// к уже накопленной длительности.
func (r *ReadingSessionRepository) Upsert(ctx context.Context, s *models.ReadingSession) (*models.ReadingSession, error) {
	var saved models.ReadingSession
	err := pgxscan.Get(ctx, r.pool, &saved, upsertReadingSessionQuery,
		s.ChildID, s.StoryID, s.Progress, s.Completed, s.Duration, s.LastChapter)
	if err != nil {
		r.logger.Error("Failed to upsert reading session",
			zap.Int64("childID", s.ChildID), zap.Int64("storyID", s.StoryID), zap.Error(err))
		return nil, err
	}
	return &saved, nil
}
