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
	ErrMatchNotFound = errors.New("match not found")
	// Уникальность матча обеспечивается тройкой
	// (match_id, team_home_id, team_away_id), а не одним id.
	ErrMatchConflict = errors.New("match with the same identity already exists")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	FindByIdentity(ctx context.Context, matchID *uuid.UUID, teamHomeID, teamAwayID uuid.UUID) (*models.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error
	UpdateScore(ctx context.Context, id uuid.UUID, scoreHome, scoreAway int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(match_id, team_home_id, team_away_id, score_home, score_away, start_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := exec.ExecContext(ctx, query,
		match.ID,
		match.TeamHomeID,
		match.TeamAwayID,
		match.ScoreHome,
		match.ScoreAway,
		match.StartTime,
		match.Status,
	)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	query := `
		SELECT match_id, team_home_id, team_away_id, score_home, score_away, start_time, status
		FROM matches
		WHERE match_id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TeamHomeID,
		&match.TeamAwayID,
		&match.ScoreHome,
		&match.ScoreAway,
		&match.StartTime,
		&match.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %s: %w", id, err)
	}
	return match, nil
}

// FindByIdentity ищет матч по тройке-ключу идемпотентности. matchID может
// отсутствовать во входящем событии, тогда поиск идёт только по командам.
func (r *postgresMatchRepository) FindByIdentity(ctx context.Context, matchID *uuid.UUID, teamHomeID, teamAwayID uuid.UUID) (*models.Match, error) {
	query := `
		SELECT match_id, team_home_id, team_away_id, score_home, score_away, start_time, status
		FROM matches
		WHERE team_home_id = $1 AND team_away_id = $2`
	args := []interface{}{teamHomeID, teamAwayID}

	if matchID != nil {
		query += " AND match_id = $3"
		args = append(args, *matchID)
	}

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&match.ID,
		&match.TeamHomeID,
		&match.TeamAwayID,
		&match.ScoreHome,
		&match.ScoreAway,
		&match.StartTime,
		&match.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by identity: %w", err)
	}
	return match, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE match_id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id uuid.UUID, scoreHome, scoreAway int) error {
	query := `UPDATE matches SET score_home = $1, score_away = $2 WHERE match_id = $3`
	result, err := r.db.ExecContext(ctx, query, scoreHome, scoreAway, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM matches WHERE match_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "matches_pkey", "matches_identity_key":
			return ErrMatchConflict
		}
	}
	return err
}
