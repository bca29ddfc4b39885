package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	maxReconnectAttempts = 5
	reconnectDelay       = 5 * time.Second
)

// Dial подключается к RabbitMQ с несколькими попытками.
func Dial(ctx context.Context, url string, logger *zap.Logger) (*amqp091.Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			logger.Info("RabbitMQ connected successfully")
			return conn, nil
		}
		lastErr = err
		logger.Error("Failed to connect to RabbitMQ", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == maxReconnectAttempts {
			break
		}
		select {
		case <-time.After(reconnectDelay):
			logger.Info("Retrying RabbitMQ connection...")
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("rabbitmq: max reconnect attempts reached: %w", lastErr)
}

// declareQueue объявляет устойчивую очередь.
func declareQueue(ch *amqp091.Channel, name string) (amqp091.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}
