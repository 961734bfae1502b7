package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/models"
	"github.com/ifsports/match-comments-service/realtime"
	"github.com/ifsports/match-comments-service/repositories"
)

// ServiceOrigin попадает в каждую запись аудита этого сервиса.
const ServiceOrigin = "match-comments-service"

type CreateMatchInput struct {
	MatchID    *uuid.UUID
	TeamHomeID uuid.UUID
	TeamAwayID uuid.UUID
	Status     models.MatchStatus
	StartTime  *time.Time
}

type MatchService interface {
	// Create создаёт матч вместе с его чатом в одной транзакции.
	Create(ctx context.Context, input CreateMatchInput) (*models.Match, *models.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	Start(ctx context.Context, actor models.Actor, id uuid.UUID) error
	UpdateScore(ctx context.Context, actor models.Actor, id uuid.UUID, scoreHome, scoreAway int) error
	Finish(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type matchService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	chatRepo  repositories.ChatRepository
	publisher FinishedPublisher
	hub       RoomBroadcaster
	audit     AuditEmitter
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	chatRepo repositories.ChatRepository,
	publisher FinishedPublisher,
	hub RoomBroadcaster,
	audit AuditEmitter,
) MatchService {
	return &matchService{
		db:        db,
		matchRepo: matchRepo,
		chatRepo:  chatRepo,
		publisher: publisher,
		hub:       hub,
		audit:     audit,
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*models.Match, *models.Chat, error) {
	status := input.Status
	if status == "" {
		status = models.StatusNotStarted
	}
	if !status.IsValid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidStatusValue, input.Status)
	}

	match := &models.Match{
		TeamHomeID: input.TeamHomeID,
		TeamAwayID: input.TeamAwayID,
		StartTime:  input.StartTime,
		Status:     status,
	}
	if input.MatchID != nil {
		match.ID = *input.MatchID
	} else {
		// Входящее событие может не нести match_id: дедупликация тогда
		// опирается только на пару команд.
		match.ID = uuid.New()
	}

	chat := &models.Chat{
		ID:        uuid.New(),
		MatchID:   match.ID,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.Create(ctx, tx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchConflict) {
			return nil, nil, ErrMatchConflict
		}
		return nil, nil, fmt.Errorf("failed to create match: %w", err)
	}

	if err := s.chatRepo.Create(ctx, tx, chat); err != nil {
		if errors.Is(err, repositories.ErrChatConflict) {
			return nil, nil, ErrChatConflict
		}
		return nil, nil, fmt.Errorf("failed to create chat for match %s: %w", match.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit match creation: %w", err)
	}

	return match, chat, nil
}

func (s *matchService) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// Start переводит матч в in-progress. Повторный запуск уже идущего
// матча - no-op с успешным результатом, не ошибка.
func (s *matchService) Start(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	match, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if match.Status == models.StatusInProgress {
		return nil
	}
	if !match.Status.CanTransitionTo(models.StatusInProgress) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, match.Status, models.StatusInProgress)
	}

	if err := s.matchRepo.UpdateStatus(ctx, id, models.StatusInProgress); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	before := *match
	match.Status = models.StatusInProgress
	s.emitAudit(actor, "match.started", match.ID, models.AuditOperationUpdate, before, match)
	return nil
}

// UpdateScore принимает счёт как есть: последняя запись выигрывает,
// монотонность не проверяется.
func (s *matchService) UpdateScore(ctx context.Context, actor models.Actor, id uuid.UUID, scoreHome, scoreAway int) error {
	if scoreHome < 0 || scoreAway < 0 {
		return ErrNegativeScore
	}

	match, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if match.Status == models.StatusFinished {
		return fmt.Errorf("%w: match is finished", ErrInvalidStateTransition)
	}

	if err := s.matchRepo.UpdateScore(ctx, id, scoreHome, scoreAway); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	before := *match
	match.ScoreHome = scoreHome
	match.ScoreAway = scoreAway

	// Запись уже в БД; рассылка - best-effort поверх неё.
	s.hub.BroadcastToRoom(match.ID.String(), realtime.EventScoreUpdated, match.Snapshot())
	s.emitAudit(actor, "match.score_updated", match.ID, models.AuditOperationUpdate, before, match)
	return nil
}

// Finish связывает два побочных эффекта жёсткой последовательностью:
// сначала брокер подтверждает приём события о завершении, и только
// после этого матч удаляется из активного хранилища. Ошибка публикации
// отменяет переход целиком.
func (s *matchService) Finish(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	match, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	snapshot := match.Snapshot()
	snapshot.Status = models.StatusFinished

	if err := s.publisher.PublishMatchFinished(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: %v", ErrFinishPublishFailed, err)
	}

	if err := s.matchRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	s.emitAudit(actor, "match.finished", match.ID, models.AuditOperationDelete, match, snapshot)
	return nil
}

func (s *matchService) emitAudit(actor models.Actor, eventType string, entityID uuid.UUID, op models.AuditOperation, oldData, newData any) {
	s.audit.Emit(models.AuditRecord{
		EventType:        eventType,
		ServiceOrigin:    ServiceOrigin,
		EntityType:       "match",
		EntityID:         entityID.String(),
		OperationType:    op,
		CampusCode:       actor.Campus,
		UserRegistration: actor.Registration,
		OldData:          oldData,
		NewData:          newData,
		Timestamp:        time.Now().UTC(),
	})
}
