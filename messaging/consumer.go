package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ifsports/match-comments-service/models"
	"github.com/ifsports/match-comments-service/repositories"
	"github.com/ifsports/match-comments-service/services"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Outcome - решение по доставленному сообщению.
type Outcome int

const (
	// OutcomeAck - сообщение обработано (или дубликат), подтверждаем.
	OutcomeAck Outcome = iota
	// OutcomeReject - постоянная ошибка, повтор не поможет.
	// Сообщение отбрасывается, чтобы не зациклить очередь.
	OutcomeReject
	// OutcomeRetry - временный сбой, сообщение вернётся в очередь.
	OutcomeRetry
)

// matchCreatedEvent - входящее событие от сервиса расписания.
// match_id может отсутствовать.
type matchCreatedEvent struct {
	MatchID    string `json:"match_id"`
	TeamHomeID string `json:"team_home_id"`
	TeamAwayID string `json:"team_away_id"`
	Status     string `json:"status"`
}

// MatchCreatedConsumer материализует матчи из входящих событий.
// Безопасен при нескольких конкурентных воркерах: финальный арбитр
// дубликатов - уникальный ключ в БД.
type MatchCreatedConsumer struct {
	matchRepo    repositories.MatchRepository
	matchService services.MatchService
	queue        string
	logger       *slog.Logger
}

func NewMatchCreatedConsumer(
	matchRepo repositories.MatchRepository,
	matchService services.MatchService,
	queue string,
	logger *slog.Logger,
) *MatchCreatedConsumer {
	return &MatchCreatedConsumer{
		matchRepo:    matchRepo,
		matchService: matchService,
		queue:        queue,
		logger:       logger,
	}
}

// HandleMatchCreated принимает тело сообщения и возвращает решение.
// Отделён от цикла потребления, чтобы логику можно было проверять
// без брокера.
func (c *MatchCreatedConsumer) HandleMatchCreated(ctx context.Context, body []byte) Outcome {
	var event matchCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.logger.Warn("rejecting malformed match created event", slog.Any("error", err))
		return OutcomeReject
	}

	key, err := ResolveIdempotencyKey(event.MatchID, event.TeamHomeID, event.TeamAwayID)
	if err != nil {
		c.logger.Warn("rejecting match created event with invalid identifiers",
			slog.Any("error", err))
		return OutcomeReject
	}

	status := models.MatchStatus(event.Status)
	if event.Status != "" && !status.IsValid() {
		c.logger.Warn("rejecting match created event with unknown status",
			slog.String("status", event.Status))
		return OutcomeReject
	}

	// Предварительная проверка дубликата. Гонку между воркерами
	// разрешает constraint при вставке.
	existing, err := c.matchRepo.FindByIdentity(ctx, key.MatchID, key.TeamHomeID, key.TeamAwayID)
	if err != nil && !errors.Is(err, repositories.ErrMatchNotFound) {
		c.logger.Error("storage unavailable while resolving idempotency key", slog.Any("error", err))
		return OutcomeRetry
	}
	if existing != nil {
		c.logger.Info("duplicate match created event, nothing to do",
			slog.String("match_id", existing.ID.String()))
		return OutcomeAck
	}

	match, _, err := c.matchService.Create(ctx, services.CreateMatchInput{
		MatchID:    key.MatchID,
		TeamHomeID: key.TeamHomeID,
		TeamAwayID: key.TeamAwayID,
		Status:     status,
	})
	switch {
	case err == nil:
		c.logger.Info("match materialized from event", slog.String("match_id", match.ID.String()))
		return OutcomeAck
	case errors.Is(err, services.ErrMatchConflict), errors.Is(err, services.ErrChatConflict):
		// Проиграли гонку другому воркеру - это тоже успех-дубликат.
		c.logger.Info("match already created by a concurrent worker")
		return OutcomeAck
	case errors.Is(err, services.ErrInvalidStatusValue):
		c.logger.Warn("rejecting match created event", slog.Any("error", err))
		return OutcomeReject
	default:
		c.logger.Error("transient failure while creating match", slog.Any("error", err))
		return OutcomeRetry
	}
}

// Run запускает цикл потребления и блокируется до отмены контекста
// или закрытия канала доставки.
func (c *MatchCreatedConsumer) Run(ctx context.Context, channel *amqp.Channel) error {
	deliveries, err := channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming queue %q: %w", c.queue, err)
	}

	c.logger.Info("match created consumer started", slog.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			c.dispatch(ctx, delivery)
		}
	}
}

func (c *MatchCreatedConsumer) dispatch(ctx context.Context, delivery amqp.Delivery) {
	switch c.HandleMatchCreated(ctx, delivery.Body) {
	case OutcomeAck:
		if err := delivery.Ack(false); err != nil {
			c.logger.Error("failed to ack delivery", slog.Any("error", err))
		}
	case OutcomeReject:
		if err := delivery.Reject(false); err != nil {
			c.logger.Error("failed to reject delivery", slog.Any("error", err))
		}
	case OutcomeRetry:
		if err := delivery.Nack(false, true); err != nil {
			c.logger.Error("failed to nack delivery", slog.Any("error", err))
		}
	}
}
