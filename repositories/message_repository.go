package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/models"
	"github.com/lib/pq"
)

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrMessageChatInvalid = errors.New("message references unknown chat")
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error)
}

type postgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.ChatID,
		message.UserID,
		message.Body,
		message.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "messages_chat_id_fkey" {
			return ErrMessageChatInvalid
		}
		return fmt.Errorf("failed to insert message into chat %s: %w", message.ChatID, err)
	}
	return nil
}

func (r *postgresMessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	query := `
		SELECT id, chat_id, user_id, body, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for chat %s: %w", chatID, err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var message models.Message
		if scanErr := rows.Scan(
			&message.ID,
			&message.ChatID,
			&message.UserID,
			&message.Body,
			&message.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", scanErr)
		}
		messages = append(messages, &message)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during message rows iteration: %w", err)
	}
	return messages, nil
}
