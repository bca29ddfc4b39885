package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storybook-server/internal/database"
	"storybook-server/internal/models"
)

const insertStoryQuery = `
INSERT INTO stories (user_id, child_id, title, age_group, character_ids, theme_id, summary, reading_time, personalized)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`

const insertChapterQuery = `
INSERT INTO story_chapters (story_id, chapter_index, title, content, image_prompt, image_url, image_is_backup, audio_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const getStoryQuery = `
SELECT id, user_id, child_id, title, age_group, character_ids, theme_id, summary, reading_time, personalized, created_at
FROM stories
WHERE id = $1`

const getChaptersQuery = `
SELECT chapter_index, title, content, image_prompt, image_url, image_is_backup, audio_url
FROM story_chapters
WHERE story_id = $1
ORDER BY chapter_index`

const listStoriesByUserQuery = `
SELECT s.id, s.title, s.age_group, s.summary, s.reading_time, s.created_at,
       (SELECT COUNT(*) FROM story_chapters c WHERE c.story_id = s.id) AS chapter_count
FROM stories s
WHERE s.user_id = $1
ORDER BY s.created_at DESC, s.id DESC
LIMIT $2 OFFSET $3`

const updateChapterImageQuery = `
UPDATE story_chapters
SET image_url = $3, image_is_backup = $4, updated_at = NOW()
WHERE story_id = $1 AND chapter_index = $2`

const updateChapterAudioQuery = `
UPDATE story_chapters
SET audio_url = $3, updated_at = NOW()
WHERE story_id = $1 AND chapter_index = $2`

// StoryRepository истории и главы в PostgreSQL.
type StoryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStoryRepository(pool *pgxpool.Pool, logger *zap.Logger) *StoryRepository {
	return &StoryRepository{pool: pool, logger: logger.Named("PgStoryRepo")}
}

// CreateStory сохраняет историю и все главы одной транзакцией, проставляет ID и CreatedAt.
func (r *StoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	err := database.ExecuteInTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertStoryQuery,
			story.UserID,
			story.ChildID,
			story.Title,
			string(story.AgeGroup),
			story.CharacterIDs,
			story.ThemeID,
			story.Summary,
			story.ReadingTime,
			story.Personalized,
		).Scan(&story.ID, &story.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert story: %w", err)
		}

		batch := &pgx.Batch{}
		for _, ch := range story.Chapters {
			batch.Queue(insertChapterQuery, story.ID, ch.Index, ch.Title, ch.Content, ch.ImagePrompt, ch.ImageURL, ch.ImageIsBackup, ch.AudioURL)
		}
		br := tx.SendBatch(ctx, batch)
		for range story.Chapters {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert chapter: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		r.logger.Error("Failed to create story", zap.Int64("userID", story.UserID), zap.Error(err))
		story.ID = 0
		return err
	}
	r.logger.Debug("Story created", zap.Int64("storyID", story.ID), zap.Int("chapters", len(story.Chapters)))
	return nil
}

// GetStory возвращает историю с главами в порядке индексов.
func (r *StoryRepository) GetStory(ctx context.Context, id int64) (*models.Story, error) {
	story := &models.Story{}
	var ageGroup string
	err := r.pool.QueryRow(ctx, getStoryQuery, id).Scan(
		&story.ID,
		&story.UserID,
		&story.ChildID,
		&story.Title,
		&ageGroup,
		&story.CharacterIDs,
		&story.ThemeID,
		&story.Summary,
		&story.ReadingTime,
		&story.Personalized,
		&story.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story", zap.Int64("storyID", id), zap.Error(err))
		return nil, err
	}
	story.AgeGroup = models.AgeGroup(ageGroup)

	rows, err := r.pool.Query(ctx, getChaptersQuery, id)
	if err != nil {
		r.logger.Error("Failed to query chapters", zap.Int64("storyID", id), zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.Index, &ch.Title, &ch.Content, &ch.ImagePrompt, &ch.ImageURL, &ch.ImageIsBackup, &ch.AudioURL); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		story.Chapters = append(story.Chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chapters: %w", err)
	}
	return story, nil
}

// ListStoriesByUser истории пользователя, новые сверху.
func (r *StoryRepository) ListStoriesByUser(ctx context.Context, userID int64, limit, offset int) ([]models.StorySummary, error) {
	var out []models.StorySummary
	if err := pgxscan.Select(ctx, r.pool, &out, listStoriesByUserQuery, userID, limit, offset); err != nil {
		r.logger.Error("Failed to list stories", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	if out == nil {
		out = []models.StorySummary{}
	}
	return out, nil
}

// UpdateChapterImage перезаписывает иллюстрацию главы.
func (r *StoryRepository) UpdateChapterImage(ctx context.Context, storyID int64, chapterIndex int, imageURL string, isBackup bool) error {
	tag, err := r.pool.Exec(ctx, updateChapterImageQuery, storyID, chapterIndex, imageURL, isBackup)
	if err != nil {
		r.logger.Error("Failed to update chapter image", zap.Int64("storyID", storyID), zap.Int("chapter", chapterIndex), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: story %d chapter %d", models.ErrChapterNotFound, storyID, chapterIndex)
	}
	return nil
}

// UpdateChapterAudio перезаписывает озвучку главы.
func (r *StoryRepository) UpdateChapterAudio(ctx context.Context, storyID int64, chapterIndex int, audioURL string) error {
	tag, err := r.pool.Exec(ctx, updateChapterAudioQuery, storyID, chapterIndex, audioURL)
	if err != nil {
		r.logger.Error("Failed to update chapter audio", zap.Int64("storyID", storyID), zap.Int("chapter", chapterIndex), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: story %d chapter %d", models.ErrChapterNotFound, storyID, chapterIndex)
	}
	return nil
}
