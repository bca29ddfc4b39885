package messaging

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DeliveryHandler обрабатывает сообщение. true подтверждает его,
// false возвращает в очередь.
type DeliveryHandler interface {
	HandleDelivery(ctx context.Context, msg amqp091.Delivery) bool
}

// Consumer читает очередь с ручным подтверждением.
type Consumer struct {
	conn         *amqp091.Connection
	queueName    string
	consumerName string
	prefetch     int
	logger       *zap.Logger
}

func NewConsumer(conn *amqp091.Connection, queueName, consumerName string, prefetch int, logger *zap.Logger) *Consumer {
	if prefetch < 1 {
		prefetch = 1
	}
	return &Consumer{
		conn:         conn,
		queueName:    queueName,
		consumerName: consumerName,
		prefetch:     prefetch,
		logger:       logger.Named("RabbitMQConsumer").With(zap.String("queue", queueName)),
	}
}

// Run блокируется до отмены ctx или закрытия канала брокером.
func (c *Consumer) Run(ctx context.Context, handler DeliveryHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel for consumer: %w", err)
	}
	defer ch.Close()

	q, err := declareQueue(ch, c.queueName)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", c.queueName, err)
	}
	c.logger.Info("Queue declared", zap.Int("messages", q.Messages), zap.Int("consumers", q.Consumers))

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		c.consumerName,
		false, // auto-ack: подтверждаем вручную
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started, waiting for messages...")
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Consumer channel closed by RabbitMQ")
				return fmt.Errorf("consumer channel closed")
			}
			if handler.HandleDelivery(ctx, msg) {
				if ackErr := msg.Ack(false); ackErr != nil {
					c.logger.Error("Failed to ack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
				}
			} else {
				// повторная доставка только для первой попытки, иначе сообщение отбрасывается
				if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
					c.logger.Error("Failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
				}
			}
		case <-ctx.Done():
			c.logger.Info("Context cancelled, stopping consumer...")
			return nil
		}
	}
}
