package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

const listCharactersQuery = `
SELECT id, name, description, image_url, age_groups
FROM characters
ORDER BY id`

const listThemesQuery = `
SELECT id, name, description, age_groups
FROM themes
ORDER BY id`

const insertCharacterQuery = `
INSERT INTO characters (name, description, image_url, age_groups)
VALUES ($1, $2, $3, $4)
RETURNING id`

const insertThemeQuery = `
INSERT INTO themes (name, description, age_groups)
VALUES ($1, $2, $3)
RETURNING id`

// CatalogRepository персонажи и темы.
type CatalogRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewCatalogRepository(pool *pgxpool.Pool, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{pool: pool, logger: logger.Named("PgCatalogRepo")}
}

func (r *CatalogRepository) ListCharacters(ctx context.Context) ([]models.Character, error) {
	rows, err := r.pool.Query(ctx, listCharactersQuery)
	if err != nil {
		r.logger.Error("Failed to list characters", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []models.Character{}
	for rows.Next() {
		var c models.Character
		var groups pq.StringArray
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &groups); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		c.AgeGroups = toAgeGroups(groups)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) ListThemes(ctx context.Context) ([]models.Theme, error) {
	rows, err := r.pool.Query(ctx, listThemesQuery)
	if err != nil {
		r.logger.Error("Failed to list themes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []models.Theme{}
	for rows.Next() {
		var t models.Theme
		var groups pq.StringArray
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &groups); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		t.AgeGroups = toAgeGroups(groups)
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateCharacter добавляет персонажа и проставляет ID.
func (r *CatalogRepository) CreateCharacter(ctx context.Context, c *models.Character) error {
	err := r.pool.QueryRow(ctx, insertCharacterQuery, c.Name, c.Description, c.ImageURL, pq.Array(fromAgeGroups(c.AgeGroups))).Scan(&c.ID)
	if err != nil {
		r.logger.Error("Failed to create character", zap.String("name", c.Name), zap.Error(err))
		return err
	}
	return nil
}

// CreateTheme добавляет тему и проставляет ID.
func (r *CatalogRepository) CreateTheme(ctx context.Context, t *models.Theme) error {
	err := r.pool.QueryRow(ctx, insertThemeQuery, t.Name, t.Description, pq.Array(fromAgeGroups(t.AgeGroups))).Scan(&t.ID)
	if err != nil {
		r.logger.Error("Failed to create theme", zap.String("name", t.Name), zap.Error(err))
		return err
	}
	return nil
}

func toAgeGroups(groups []string) []models.AgeGroup {
	out := make([]models.AgeGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.AgeGroup(g))
	}
	return out
}

func fromAgeGroups(groups []models.AgeGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, string(g))
	}
	return out
}
