package catalog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

const (
	charactersCacheKey = "characters"
	themesCacheKey     = "themes"
)

// Repository источник каталога.
type Repository interface {
	ListCharacters(ctx context.Context) ([]models.Character, error)
	ListThemes(ctx context.Context) ([]models.Theme, error)
}

// Service каталог персонажей и тем с кэшем в памяти.
// Каталог небольшой, поэтому кэшируется целиком.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *zap.Logger
}

func NewService(repo Repository, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		repo:   repo,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger.Named("Catalog"),
	}
}

// ListCharacters персонажи для возрастной группы. Пустая группа = все.
// Возвращается копия, кэш вызывающему не отдается.
func (s *Service) ListCharacters(ctx context.Context, ag models.AgeGroup) ([]models.Character, error) {
	all, err := s.characters(ctx)
	if err != nil {
		return nil, err
	}
	if ag == "" {
		return slices.Clone(all), nil
	}
	out := make([]models.Character, 0, len(all))
	for _, c := range all {
		if c.AllowedFor(ag) {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListThemes темы для возрастной группы. Пустая группа = все.
func (s *Service) ListThemes(ctx context.Context, ag models.AgeGroup) ([]models.Theme, error) {
	all, err := s.themes(ctx)
	if err != nil {
		return nil, err
	}
	if ag == "" {
		return slices.Clone(all), nil
	}
	out := make([]models.Theme, 0, len(all))
	for _, t := range all {
		if t.AllowedFor(ag) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ResolveCharacters возвращает персонажей в порядке ids.
func (s *Service) ResolveCharacters(ctx context.Context, ids []int64) ([]models.Character, error) {
	all, err := s.characters(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Character, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]models.Character, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", models.ErrCharacterNotFound, id)
		}
		out = append(out, c)
	}
	return out, nil
}

// CharacterNames имена персонажей, неизвестные ID пропускаются.
func (s *Service) CharacterNames(ctx context.Context, ids []int64) ([]string, error) {
	all, err := s.characters(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]string, len(all))
	for _, c := range all {
		byID[c.ID] = c.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			names = append(names, n)
		}
	}
	return names, nil
}

func (s *Service) GetTheme(ctx context.Context, id int64) (*models.Theme, error) {
	all, err := s.themes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			t := all[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", models.ErrThemeNotFound, id)
}

// Invalidate сбрасывает кэш.
func (s *Service) Invalidate() {
	s.cache.Flush()
}

func (s *Service) characters(ctx context.Context) ([]models.Character, error) {
	if v, ok := s.cache.Get(charactersCacheKey); ok {
		return v.([]models.Character), nil
	}
	list, err := s.repo.ListCharacters(ctx)
	if err != nil {
		s.logger.Error("Failed to load characters", zap.Error(err))
		return nil, fmt.Errorf("загрузка персонажей: %w", err)
	}
	s.cache.SetDefault(charactersCacheKey, list)
	return list, nil
}

func (s *Service) themes(ctx context.Context) ([]models.Theme, error) {
	if v, ok := s.cache.Get(themesCacheKey); ok {
		return v.([]models.Theme), nil
	}
	list, err := s.repo.ListThemes(ctx)
	if err != nil {
		s.logger.Error("Failed to load themes", zap.Error(err))
		return nil, fmt.Errorf("загрузка тем: %w", err)
	}
	s.cache.SetDefault(themesCacheKey, list)
	return list, nil
}
