package messaging

import (
	"context"
	"time"
)

// EventNotifier публикует события прогресса иллюстраций.
type EventNotifier struct {
	publisher Publisher
}

func NewEventNotifier(publisher Publisher) *EventNotifier {
	return &EventNotifier{publisher: publisher}
}

// Notify отправляет событие. Пустая метка времени заполняется текущей.
func (n *EventNotifier) Notify(ctx context.Context, event IllustrationEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return n.publisher.Publish(ctx, event, event.TaskID)
}
