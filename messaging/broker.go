package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher: минимальный срез amqp-канала для публикации без
// подтверждений. Выделен в интерфейс ради тестов.
type AMQPPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Confirmation - ожидание ответа брокера на опубликованное сообщение.
// Реализуется *amqp.DeferredConfirmation.
type Confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// ConfirmPublisher публикует с отложенным подтверждением брокера.
// Канал обязан быть переведён в confirm-режим (см. ConfirmChannel):
// без него возврат из publish означает лишь запись кадра в буфер
// соединения, а не приём события брокером.
type ConfirmPublisher interface {
	PublishWithDeferredConfirm(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (Confirmation, error)
}

type amqpConfirmChannel struct {
	channel *amqp.Channel
}

func (c amqpConfirmChannel) PublishWithDeferredConfirm(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (Confirmation, error) {
	return c.channel.PublishWithDeferredConfirmWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// ConfirmChannel открывает выделенный канал в confirm-режиме. У
// публикатора завершения свой канал: ошибка публикации закрывает
// amqp-канал, и общий канал консьюмера она задевать не должна.
func ConfirmChannel(conn *amqp.Connection) (ConfirmPublisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publisher channel: %w", err)
	}
	if err := channel.Confirm(false); err != nil {
		if closeErr := channel.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to enable publisher confirms: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	return amqpConfirmChannel{channel: channel}, nil
}

// Connect открывает соединение с брокером и канал поверх него.
func Connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, nil, fmt.Errorf("failed to open channel: %w (close error: %v)", err, closeErr)
		}
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return conn, channel, nil
}

// DeclareQueues объявляет durable-очереди сервиса. Повторное объявление
// существующей очереди - безопасная no-op операция.
func DeclareQueues(channel *amqp.Channel, names ...string) error {
	for _, name := range names {
		if _, err := channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %q: %w", name, err)
		}
	}
	return nil
}
