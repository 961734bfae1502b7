package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/models"
	"github.com/ifsports/match-comments-service/repositories"
)

type ChatService interface {
	GetByMatchID(ctx context.Context, matchID uuid.UUID) (*models.Chat, error)
	// Close выставляет finished_at и выгружает историю чата в архив.
	// Чат закрывается независимо от удаления матча.
	Close(ctx context.Context, actor models.Actor, matchID uuid.UUID) (*models.Chat, error)
}

type chatService struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	archiver    TranscriptArchiver
	audit       AuditEmitter
	logger      *slog.Logger
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	messageRepo repositories.MessageRepository,
	archiver TranscriptArchiver,
	audit AuditEmitter,
	logger *slog.Logger,
) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		archiver:    archiver,
		audit:       audit,
		logger:      logger,
	}
}

func (s *chatService) GetByMatchID(ctx context.Context, matchID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return chat, nil
}

func (s *chatService) Close(ctx context.Context, actor models.Actor, matchID uuid.UUID) (*models.Chat, error) {
	chat, err := s.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if chat.IsFinished() {
		return nil, ErrChatClosed
	}

	finishedAt := time.Now().UTC()
	if err := s.chatRepo.Finish(ctx, chat.ID, finishedAt); err != nil {
		if errors.Is(err, repositories.ErrChatAlreadyClosed) {
			return nil, ErrChatClosed
		}
		return nil, err
	}

	before := *chat
	chat.FinishedAt = &finishedAt

	// Архивация - best-effort: чат уже закрыт, и отказ хранилища
	// не должен откатывать закрытие.
	if s.archiver != nil {
		messages, listErr := s.messageRepo.ListByChat(ctx, chat.ID)
		if listErr != nil {
			s.logger.Error("failed to load transcript for archiving",
				slog.String("chat_id", chat.ID.String()), slog.Any("error", listErr))
		} else if key, archErr := s.archiver.ArchiveTranscript(ctx, chat, messages); archErr != nil {
			s.logger.Error("failed to archive chat transcript",
				slog.String("chat_id", chat.ID.String()), slog.Any("error", archErr))
		} else {
			s.logger.Info("chat transcript archived",
				slog.String("chat_id", chat.ID.String()), slog.String("key", key))
		}
	}

	s.audit.Emit(models.AuditRecord{
		EventType:        "chat.closed",
		ServiceOrigin:    ServiceOrigin,
		EntityType:       "chat",
		EntityID:         chat.ID.String(),
		OperationType:    models.AuditOperationUpdate,
		CampusCode:       actor.Campus,
		UserRegistration: actor.Registration,
		OldData:          before,
		NewData:          chat,
		Timestamp:        time.Now().UTC(),
	})

	return chat, nil
}
