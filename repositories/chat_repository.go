package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/models"
	"github.com/lib/pq"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	// На матч приходится не более одного чата (unique на match_id).
	ErrChatConflict      = errors.New("chat for this match already exists")
	ErrChatAlreadyClosed = errors.New("chat is already closed")
)

type ChatRepository interface {
	Create(ctx context.Context, exec SQLExecutor, chat *models.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	GetByMatchID(ctx context.Context, matchID uuid.UUID) (*models.Chat, error)
	Finish(ctx context.Context, id uuid.UUID, finishedAt time.Time) error
}

type postgresChatRepository struct {
	db *sql.DB
}

func NewPostgresChatRepository(db *sql.DB) ChatRepository {
	return &postgresChatRepository{db: db}
}

func (r *postgresChatRepository) Create(ctx context.Context, exec SQLExecutor, chat *models.Chat) error {
	query := `
		INSERT INTO chats (id, match_id, created_at)
		VALUES ($1, $2, $3)`

	_, err := exec.ExecContext(ctx, query, chat.ID, chat.MatchID, chat.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "chats_match_id_key" {
			return ErrChatConflict
		}
		return fmt.Errorf("failed to insert chat for match %s: %w", chat.MatchID, err)
	}
	return nil
}

func (r *postgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	query := `
		SELECT id, match_id, created_at, finished_at
		FROM chats
		WHERE id = $1`
	return r.scanChat(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresChatRepository) GetByMatchID(ctx context.Context, matchID uuid.UUID) (*models.Chat, error) {
	query := `
		SELECT id, match_id, created_at, finished_at
		FROM chats
		WHERE match_id = $1`
	return r.scanChat(r.db.QueryRowContext(ctx, query, matchID))
}

// Finish закрывает чат. Условие finished_at IS NULL делает операцию
// идемпотентной на уровне БД: повторное закрытие вернёт ErrChatAlreadyClosed.
func (r *postgresChatRepository) Finish(ctx context.Context, id uuid.UUID, finishedAt time.Time) error {
	query := `UPDATE chats SET finished_at = $1 WHERE id = $2 AND finished_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, finishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to close chat %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrChatAlreadyClosed)
}

func (r *postgresChatRepository) scanChat(row *sql.Row) (*models.Chat, error) {
	chat := &models.Chat{}
	err := row.Scan(&chat.ID, &chat.MatchID, &chat.CreatedAt, &chat.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to scan chat: %w", err)
	}
	return chat, nil
}
