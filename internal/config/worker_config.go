package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// WorkerConfig настройки, специфичные для воркера иллюстраций.
// Общая часть (БД, RabbitMQ, провайдеры) берется из Config.
type WorkerConfig struct {
	ConsumerName string `envconfig:"CONSUMER_NAME" default:"illustration_worker"`
	Prefetch     int    `envconfig:"PREFETCH" default:"1"`
	MetricsPort  string `envconfig:"METRICS_PORT" default:"9102"`
}

// LoadWorker читает переменные с префиксом WORKER_.
func LoadWorker() (*WorkerConfig, error) {
	var cfg WorkerConfig
	if err := envconfig.Process("worker", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации воркера: %w", err)
	}
	if cfg.Prefetch < 1 {
		cfg.Prefetch = 1
	}
	return &cfg, nil
}
