package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/models"
	"github.com/ifsports/match-comments-service/realtime"
	"github.com/ifsports/match-comments-service/repositories"
)

type CreateMessageInput struct {
	UserID uuid.UUID
	Body   string
}

type MessageService interface {
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error)
	Create(ctx context.Context, actor models.Actor, chatID uuid.UUID, input CreateMessageInput) (*models.Message, error)
}

type messageService struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	hub         RoomBroadcaster
	audit       AuditEmitter
}

func NewMessageService(
	chatRepo repositories.ChatRepository,
	messageRepo repositories.MessageRepository,
	hub RoomBroadcaster,
	audit AuditEmitter,
) MessageService {
	return &messageService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		hub:         hub,
		audit:       audit,
	}
}

// activeChat возвращает чат, если он существует и ещё открыт.
func (s *messageService) activeChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if chat.IsFinished() {
		return nil, ErrChatClosed
	}
	return chat, nil
}

func (s *messageService) ListByChat(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	chat, err := s.activeChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.ListByChat(ctx, chat.ID)
}

func (s *messageService) Create(ctx context.Context, actor models.Actor, chatID uuid.UUID, input CreateMessageInput) (*models.Message, error) {
	if input.Body == "" {
		return nil, ErrMessageBodyRequired
	}

	// Закрытый чат сообщений не принимает, и рассылки при этом нет.
	chat, err := s.activeChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:        uuid.New(),
		ChatID:    chat.ID,
		UserID:    input.UserID,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		if errors.Is(err, repositories.ErrMessageChatInvalid) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	// Комната - ID матча, а не чата.
	s.hub.BroadcastToRoom(chat.MatchID.String(), realtime.EventNewMessage, map[string]any{
		"chat_id":    message.ChatID,
		"message_id": message.ID,
		"body":       message.Body,
		"user_id":    message.UserID,
		"created_at": message.CreatedAt,
	})

	s.audit.Emit(models.AuditRecord{
		EventType:        "message.created",
		ServiceOrigin:    ServiceOrigin,
		EntityType:       "message",
		EntityID:         message.ID.String(),
		OperationType:    models.AuditOperationCreate,
		CampusCode:       actor.Campus,
		UserRegistration: actor.Registration,
		NewData:          message,
		Timestamp:        time.Now().UTC(),
	})

	return message, nil
}
