package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ifsports/match-comments-service/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublishNacked: брокер явно отверг событие (nack).
var ErrPublishNacked = errors.New("broker rejected the published event")

// MatchFinishedPublisher отдаёт брокеру событие о завершении матча и
// ждёт подтверждения приёма. Успех только после ack: запись кадра в
// сокет приёмом не считается. Временные сбои, nack и невместившееся в
// таймаут подтверждение ретраятся с экспоненциальной задержкой;
// исчерпание попыток - фатальная ошибка для вызывающего, который обязан
// отменить переход finish.
type MatchFinishedPublisher struct {
	channel        ConfirmPublisher
	queue          string
	maxAttempts    int
	initialBackoff time.Duration
	publishTimeout time.Duration
	logger         *slog.Logger
}

func NewMatchFinishedPublisher(
	channel ConfirmPublisher,
	queue string,
	maxAttempts int,
	initialBackoff time.Duration,
	publishTimeout time.Duration,
	logger *slog.Logger,
) *MatchFinishedPublisher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &MatchFinishedPublisher{
		channel:        channel,
		queue:          queue,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		publishTimeout: publishTimeout,
		logger:         logger,
	}
}

func (p *MatchFinishedPublisher) PublishMatchFinished(ctx context.Context, snapshot models.MatchSnapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal match finished event: %w", err)
	}

	backoff := p.initialBackoff
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("publish cancelled: %w", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := p.publishOnce(ctx, body)
		if err == nil {
			p.logger.Info("match finished event confirmed by broker",
				slog.String("match_id", snapshot.MatchID.String()),
				slog.String("queue", p.queue))
			return nil
		}

		lastErr = err
		p.logger.Warn("failed to publish match finished event, will retry",
			slog.String("match_id", snapshot.MatchID.String()),
			slog.Int("attempt", attempt),
			slog.Any("error", err))
	}

	return fmt.Errorf("failed to publish match finished event after %d attempts: %w", p.maxAttempts, lastErr)
}

// publishOnce выполняет одну попытку: публикация плюс ожидание ack в
// пределах publishTimeout. Nack и истёкшее ожидание возвращаются как
// ошибки и ретраятся внешним циклом.
func (p *MatchFinishedPublisher) publishOnce(ctx context.Context, body []byte) error {
	publishCtx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	confirmation, err := p.channel.PublishWithDeferredConfirm(publishCtx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return err
	}

	acked, err := confirmation.WaitContext(publishCtx)
	if err != nil {
		return fmt.Errorf("confirmation not received: %w", err)
	}
	if !acked {
		return ErrPublishNacked
	}
	return nil
}
