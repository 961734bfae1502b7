package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/models"
	"github.com/ifsports/match-comments-service/repositories"
	"github.com/ifsports/match-comments-service/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// matchStore разделяется фейковым репозиторием и фейковым сервисом,
// имитируя общую БД с уникальным ключом.
type matchStore struct {
	matches     map[uuid.UUID]*models.Match
	createCalls int
}

func newMatchStore() *matchStore {
	return &matchStore{matches: make(map[uuid.UUID]*models.Match)}
}

func (s *matchStore) findByIdentity(matchID *uuid.UUID, home, away uuid.UUID) *models.Match {
	for _, m := range s.matches {
		if m.TeamHomeID != home || m.TeamAwayID != away {
			continue
		}
		if matchID != nil && m.ID != *matchID {
			continue
		}
		return m
	}
	return nil
}

type storeMatchRepo struct {
	store   *matchStore
	findErr error
}

func (r *storeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	return errors.New("not used in consumer tests")
}

func (r *storeMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	match, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return match, nil
}

func (r *storeMatchRepo) FindByIdentity(ctx context.Context, matchID *uuid.UUID, teamHomeID, teamAwayID uuid.UUID) (*models.Match, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if match := r.store.findByIdentity(matchID, teamHomeID, teamAwayID); match != nil {
		return match, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *storeMatchRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error {
	return nil
}

func (r *storeMatchRepo) UpdateScore(ctx context.Context, id uuid.UUID, scoreHome, scoreAway int) error {
	return nil
}

func (r *storeMatchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type storeMatchService struct {
	store     *matchStore
	createErr error
}

func (s *storeMatchService) Create(ctx context.Context, input services.CreateMatchInput) (*models.Match, *models.Chat, error) {
	s.store.createCalls++
	if s.createErr != nil {
		return nil, nil, s.createErr
	}
	if existing := s.store.findByIdentity(input.MatchID, input.TeamHomeID, input.TeamAwayID); existing != nil {
		return nil, nil, services.ErrMatchConflict
	}

	match := &models.Match{
		ID:         uuid.New(),
		TeamHomeID: input.TeamHomeID,
		TeamAwayID: input.TeamAwayID,
		Status:     input.Status,
	}
	if input.MatchID != nil {
		match.ID = *input.MatchID
	}
	s.store.matches[match.ID] = match
	return match, &models.Chat{ID: uuid.New(), MatchID: match.ID}, nil
}

func (s *storeMatchService) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return nil, services.ErrMatchNotFound
}

func (s *storeMatchService) Start(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	return nil
}

func (s *storeMatchService) UpdateScore(ctx context.Context, actor models.Actor, id uuid.UUID, scoreHome, scoreAway int) error {
	return nil
}

func (s *storeMatchService) Finish(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	return nil
}

func eventBody(matchID, home, away, status string) []byte {
	return []byte(fmt.Sprintf(
		`{"match_id":%q,"team_home_id":%q,"team_away_id":%q,"status":%q}`,
		matchID, home, away, status,
	))
}

func TestHandleMatchCreated_ReplayIsIdempotent(t *testing.T) {
	store := newMatchStore()
	consumer := NewMatchCreatedConsumer(
		&storeMatchRepo{store: store},
		&storeMatchService{store: store},
		"matches.created",
		discardLogger(),
	)

	body := eventBody(uuid.NewString(), uuid.NewString(), uuid.NewString(), "not-started")

	for i := 0; i < 3; i++ {
		if outcome := consumer.HandleMatchCreated(context.Background(), body); outcome != OutcomeAck {
			t.Fatalf("delivery %d: outcome = %v, want OutcomeAck", i+1, outcome)
		}
	}

	if len(store.matches) != 1 {
		t.Errorf("matches materialized = %d, want 1", len(store.matches))
	}
	if store.createCalls != 1 {
		t.Errorf("create calls = %d, want 1 (later replays short-circuit on lookup)", store.createCalls)
	}
}

func TestHandleMatchCreated_PermanentFailures(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "malformed json", body: []byte(`{"match_id": `)},
		{name: "missing team ids", body: eventBody(uuid.NewString(), "", "", "not-started")},
		{name: "non-uuid team id", body: eventBody("", "team-one", uuid.NewString(), "not-started")},
		{name: "unknown status", body: eventBody(uuid.NewString(), uuid.NewString(), uuid.NewString(), "paused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMatchStore()
			consumer := NewMatchCreatedConsumer(
				&storeMatchRepo{store: store},
				&storeMatchService{store: store},
				"matches.created",
				discardLogger(),
			)

			if outcome := consumer.HandleMatchCreated(context.Background(), tt.body); outcome != OutcomeReject {
				t.Errorf("outcome = %v, want OutcomeReject", outcome)
			}
			if len(store.matches) != 0 {
				t.Errorf("rejected event still materialized %d matches", len(store.matches))
			}
		})
	}
}

func TestHandleMatchCreated_TransientFailures(t *testing.T) {
	body := eventBody(uuid.NewString(), uuid.NewString(), uuid.NewString(), "not-started")

	t.Run("lookup failure requeues", func(t *testing.T) {
		store := newMatchStore()
		consumer := NewMatchCreatedConsumer(
			&storeMatchRepo{store: store, findErr: errors.New("connection refused")},
			&storeMatchService{store: store},
			"matches.created",
			discardLogger(),
		)

		if outcome := consumer.HandleMatchCreated(context.Background(), body); outcome != OutcomeRetry {
			t.Errorf("outcome = %v, want OutcomeRetry", outcome)
		}
	})

	t.Run("create failure requeues", func(t *testing.T) {
		store := newMatchStore()
		consumer := NewMatchCreatedConsumer(
			&storeMatchRepo{store: store},
			&storeMatchService{store: store, createErr: errors.New("deadline exceeded")},
			"matches.created",
			discardLogger(),
		)

		if outcome := consumer.HandleMatchCreated(context.Background(), body); outcome != OutcomeRetry {
			t.Errorf("outcome = %v, want OutcomeRetry", outcome)
		}
	})
}

func TestHandleMatchCreated_LostRaceIsAcked(t *testing.T) {
	store := newMatchStore()
	consumer := NewMatchCreatedConsumer(
		&storeMatchRepo{store: store},
		// Конкурентный воркер успел вставить между нашей проверкой и
		// вставкой: constraint срабатывает на Create.
		&storeMatchService{store: store, createErr: services.ErrMatchConflict},
		"matches.created",
		discardLogger(),
	)

	body := eventBody(uuid.NewString(), uuid.NewString(), uuid.NewString(), "not-started")
	if outcome := consumer.HandleMatchCreated(context.Background(), body); outcome != OutcomeAck {
		t.Errorf("outcome = %v, want OutcomeAck for a lost duplicate race", outcome)
	}
}
