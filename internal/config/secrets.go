package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// secretsDir путь Docker secrets. Переменная для тестов.
var secretsDir = "/run/secrets"

// ReadSecret читает секрет из файла Docker secrets.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(secretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// secretOrEnv отдает приоритет файлу секрета, а для локального запуска
// использует значение из окружения.
func secretOrEnv(secretName, envValue string) string {
	if secret, err := ReadSecret(secretName); err == nil {
		return secret
	}
	return envValue
}
