package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStorage сохраняет файлы на диск и отдает их по публичному базовому URL.
type LocalStorage struct {
	basePath      string
	publicBaseURL string
	logger        *zap.Logger
}

func NewLocalStorage(basePath, publicBaseURL string, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию медиа %s: %w", basePath, err)
	}
	return &LocalStorage{
		basePath:      basePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger.Named("LocalStorage"),
	}, nil
}

// Save пишет data по относительному ключу и возвращает публичный URL.
func (s *LocalStorage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + key)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("недопустимый ключ файла: %q", key)
	}

	fullPath := filepath.Join(s.basePath, clean)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("не удалось создать директорию для %s: %w", clean, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("не удалось сохранить файл %s: %w", clean, err)
	}

	url := s.publicBaseURL + "/" + filepath.ToSlash(clean)
	s.logger.Debug("Media saved", zap.String("key", clean), zap.Int("bytes", len(data)), zap.String("content_type", contentType))
	return url, nil
}

// Root директория для раздачи статикой.
func (s *LocalStorage) Root() string { return s.basePath }
