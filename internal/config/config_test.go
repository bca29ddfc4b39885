package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-server/internal/models"
)

func TestLoad_DefaultsAndSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai_api_key"), []byte("sk-from-file\n"), 0o600))
	old := secretsDir
	secretsDir = dir
	t.Cleanup(func() { secretsDir = old })

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_PASSWORD", "env-pass")
	t.Setenv("BACKUP_IMAGE_URLS_3_5", "http://a/1.png,http://a/2.png")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-from-file", cfg.AI.APIKey)
	assert.Equal(t, "env-pass", cfg.Database.Password)
	assert.Equal(t, 1, cfg.AI.MaxAttempts)
	assert.Equal(t, 2, cfg.Illustration.Concurrency)
	assert.Equal(t, "storybook.illustration.tasks", cfg.RabbitMQ.TaskQueue)
	assert.Equal(t, []string{"http://a/1.png", "http://a/2.png"}, cfg.Backup.ByAgeGroup()[models.AgeGroup3To5])
}

func TestLoad_RejectsUnknownClientType(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AI_CLIENT_TYPE", "gemini")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_CLIENT_TYPE")
}

func TestMaskedDSN(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "secret", Host: "h", Port: "5432", Name: "n", SSLMode: "disable"}
	masked := db.MaskedDSN()
	assert.NotContains(t, masked, "secret")
	assert.Equal(t, "postgres://u:********@h:5432/n?sslmode=disable", masked)
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("WORKER_PREFETCH", "0")
	t.Setenv("WORKER_CONSUMER_NAME", "w1")

	cfg, err := LoadWorker()
	require.NoError(t, err)
	assert.Equal(t, "w1", cfg.ConsumerName)
	assert.Equal(t, 1, cfg.Prefetch)
	assert.Equal(t, "9102", cfg.MetricsPort)
}
