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

type CommentService interface {
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*models.Comment, error)
	GetByID(ctx context.Context, matchID, commentID uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, actor models.Actor, matchID uuid.UUID, body string) (*models.Comment, error)
	Update(ctx context.Context, actor models.Actor, matchID, commentID uuid.UUID, body string) (*models.Comment, error)
	Delete(ctx context.Context, actor models.Actor, matchID, commentID uuid.UUID) error
}

type commentService struct {
	commentRepo repositories.CommentRepository
	hub         RoomBroadcaster
	audit       AuditEmitter
}

func NewCommentService(
	commentRepo repositories.CommentRepository,
	hub RoomBroadcaster,
	audit AuditEmitter,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		hub:         hub,
		audit:       audit,
	}
}

func (s *commentService) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*models.Comment, error) {
	return s.commentRepo.ListByMatch(ctx, matchID)
}

func (s *commentService) GetByID(ctx context.Context, matchID, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, matchID, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Create(ctx context.Context, actor models.Actor, matchID uuid.UUID, body string) (*models.Comment, error) {
	if body == "" {
		return nil, ErrCommentBodyRequired
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		MatchID:   matchID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.broadcast(realtime.EventCreateComment, comment)
	s.emitAudit(actor, "comment.created", comment.ID, models.AuditOperationCreate, nil, comment)
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor models.Actor, matchID, commentID uuid.UUID, body string) (*models.Comment, error) {
	if body == "" {
		return nil, ErrCommentBodyRequired
	}

	comment, err := s.GetByID(ctx, matchID, commentID)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateBody(ctx, matchID, commentID, body); err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	before := *comment
	comment.Body = body

	s.broadcast(realtime.EventUpdateComment, comment)
	s.emitAudit(actor, "comment.updated", comment.ID, models.AuditOperationUpdate, before, comment)
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor models.Actor, matchID, commentID uuid.UUID) error {
	comment, err := s.GetByID(ctx, matchID, commentID)
	if err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, matchID, commentID); err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	s.broadcast(realtime.EventDeleteComment, comment)
	s.emitAudit(actor, "comment.deleted", comment.ID, models.AuditOperationDelete, comment, nil)
	return nil
}

func (s *commentService) broadcast(event string, comment *models.Comment) {
	s.hub.BroadcastToRoom(comment.MatchID.String(), event, map[string]any{
		"match_id":   comment.MatchID,
		"comment_id": comment.ID,
		"body":       comment.Body,
		"created_at": comment.CreatedAt,
	})
}

func (s *commentService) emitAudit(actor models.Actor, eventType string, entityID uuid.UUID, op models.AuditOperation, oldData, newData any) {
	s.audit.Emit(models.AuditRecord{
		EventType:        eventType,
		ServiceOrigin:    ServiceOrigin,
		EntityType:       "comment",
		EntityID:         entityID.String(),
		OperationType:    op,
		CampusCode:       actor.Campus,
		UserRegistration: actor.Registration,
		OldData:          oldData,
		NewData:          newData,
		Timestamp:        time.Now().UTC(),
	})
}
