package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, matchID, commentID uuid.UUID) (*models.Comment, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*models.Comment, error)
	UpdateBody(ctx context.Context, matchID, commentID uuid.UUID, body string) error
	Delete(ctx context.Context, matchID, commentID uuid.UUID) error
}

type postgresCommentRepository struct {
	db *sql.DB
}

func NewPostgresCommentRepository(db *sql.DB) CommentRepository {
	return &postgresCommentRepository{db: db}
}

func (r *postgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, match_id, body, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.MatchID,
		comment.Body,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment for match %s: %w", comment.MatchID, err)
	}
	return nil
}

func (r *postgresCommentRepository) GetByID(ctx context.Context, matchID, commentID uuid.UUID) (*models.Comment, error) {
	query := `
		SELECT id, match_id, body, created_at
		FROM comments
		WHERE match_id = $1 AND id = $2`

	comment := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, matchID, commentID).Scan(
		&comment.ID,
		&comment.MatchID,
		&comment.Body,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to scan comment %s: %w", commentID, err)
	}
	return comment, nil
}

func (r *postgresCommentRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*models.Comment, error) {
	query := `
		SELECT id, match_id, body, created_at
		FROM comments
		WHERE match_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for match %s: %w", matchID, err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		if scanErr := rows.Scan(
			&comment.ID,
			&comment.MatchID,
			&comment.Body,
			&comment.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", scanErr)
		}
		comments = append(comments, &comment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during comment rows iteration: %w", err)
	}
	return comments, nil
}

func (r *postgresCommentRepository) UpdateBody(ctx context.Context, matchID, commentID uuid.UUID, body string) error {
	query := `UPDATE comments SET body = $1 WHERE match_id = $2 AND id = $3`
	result, err := r.db.ExecContext(ctx, query, body, matchID, commentID)
	if err != nil {
		return fmt.Errorf("failed to update comment %s: %w", commentID, err)
	}
	return checkAffectedRows(result, ErrCommentNotFound)
}

func (r *postgresCommentRepository) Delete(ctx context.Context, matchID, commentID uuid.UUID) error {
	query := `DELETE FROM comments WHERE match_id = $1 AND id = $2`
	result, err := r.db.ExecContext(ctx, query, matchID, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}
	return checkAffectedRows(result, ErrCommentNotFound)
}
