package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ifsports/match-comments-service/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditQueueSink отправляет записи аудита в очередь внешнего
// аудит-сервиса. Гарантий доставки не даёт: это канал телеметрии.
type AuditQueueSink struct {
	channel AMQPPublisher
	queue   string
}

func NewAuditQueueSink(channel AMQPPublisher, queue string) *AuditQueueSink {
	return &AuditQueueSink{channel: channel, queue: queue}
}

func (s *AuditQueueSink) Publish(ctx context.Context, record models.AuditRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	err = s.channel.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish audit record to %q: %w", s.queue, err)
	}
	return nil
}
