package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storybook-server/internal/messaging"
)

// UserSender доставляет сообщение пользователю.
type UserSender interface {
	SendToUser(userID int64, message []byte) int
}

// EventRelay читает события из очереди и пересылает их владельцу истории.
// События эфемерны: если пользователь офлайн, событие подтверждается и теряется.
type EventRelay struct {
	sender UserSender
	logger *zap.Logger
}

func NewEventRelay(sender UserSender, logger *zap.Logger) *EventRelay {
	return &EventRelay{sender: sender, logger: logger.Named("EventRelay")}
}

// HandleDelivery реализует messaging.DeliveryHandler.
func (r *EventRelay) HandleDelivery(_ context.Context, msg amqp091.Delivery) bool {
	var event messaging.IllustrationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		r.logger.Error("Failed to unmarshal event, dropping", zap.Error(err))
		// повтор не поможет
		return true
	}
	if event.UserID <= 0 {
		r.logger.Warn("Event without user_id, dropping", zap.String("type", string(event.Type)))
		return true
	}

	delivered := r.sender.SendToUser(event.UserID, msg.Body)
	r.logger.Debug("Event relayed",
		zap.String("type", string(event.Type)),
		zap.Int64("userID", event.UserID),
		zap.Int64("storyID", event.StoryID),
		zap.Int("connections", delivered),
	)
	return true
}

var _ messaging.DeliveryHandler = (*EventRelay)(nil)

// HubNotifier отдает события прямо в хаб, минуя брокер. Используется для
// синхронных запусков генерации в API.
type HubNotifier struct {
	sender UserSender
}

func NewHubNotifier(sender UserSender) *HubNotifier {
	return &HubNotifier{sender: sender}
}

// Notify реализует illustration.Notifier.
func (n *HubNotifier) Notify(_ context.Context, event messaging.IllustrationEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	n.sender.SendToUser(event.UserID, body)
	return nil
}
