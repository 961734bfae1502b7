package messaging

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrMissingTeamID = errors.New("team_home_id and team_away_id are required")
	ErrInvalidID     = errors.New("identifier is not a valid UUID")
)

// IdempotencyKey - ключ дедупликации входящего события о создании
// матча. Ключом служит тройка (match_id, team_home_id, team_away_id),
// а не один match_id: событие может прийти без заранее назначенного id
// и тогда дедупликация опирается на равенство содержимого.
type IdempotencyKey struct {
	MatchID    *uuid.UUID
	TeamHomeID uuid.UUID
	TeamAwayID uuid.UUID
}

// ResolveIdempotencyKey разбирает идентификаторы события. Любая ошибка
// здесь - постоянная: повторная доставка того же сообщения не может
// её исправить.
func ResolveIdempotencyKey(matchID, teamHomeID, teamAwayID string) (IdempotencyKey, error) {
	var key IdempotencyKey

	if teamHomeID == "" || teamAwayID == "" {
		return key, ErrMissingTeamID
	}

	home, err := uuid.Parse(teamHomeID)
	if err != nil {
		return key, fmt.Errorf("%w: team_home_id %q", ErrInvalidID, teamHomeID)
	}
	away, err := uuid.Parse(teamAwayID)
	if err != nil {
		return key, fmt.Errorf("%w: team_away_id %q", ErrInvalidID, teamAwayID)
	}

	key.TeamHomeID = home
	key.TeamAwayID = away

	if matchID != "" {
		id, err := uuid.Parse(matchID)
		if err != nil {
			return key, fmt.Errorf("%w: match_id %q", ErrInvalidID, matchID)
		}
		key.MatchID = &id
	}

	return key, nil
}
