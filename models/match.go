package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus представляет статусы матча, соответствующие ENUM в БД.
type MatchStatus string

const (
	StatusNotStarted MatchStatus = "not-started"
	StatusInProgress MatchStatus = "in-progress"
	StatusFinished   MatchStatus = "finished"
)

// statusOrder задаёт порядок статусов: переход возможен только вперёд.
var statusOrder = map[MatchStatus]int{
	StatusNotStarted: 0,
	StatusInProgress: 1,
	StatusFinished:   2,
}

func (s MatchStatus) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo проверяет, допустим ли переход в статус next.
// Повторный переход в тот же статус считается допустимым (no-op).
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	cur, okCur := statusOrder[s]
	nxt, okNext := statusOrder[next]
	if !okCur || !okNext {
		return false
	}
	return nxt >= cur
}

// Match представляет активный матч. Завершённые матчи удаляются из
// активного хранилища после публикации события о завершении.
type Match struct {
	ID         uuid.UUID   `json:"match_id" db:"match_id"`
	TeamHomeID uuid.UUID   `json:"team_home_id" db:"team_home_id"`
	TeamAwayID uuid.UUID   `json:"team_away_id" db:"team_away_id"`
	ScoreHome  int         `json:"score_home" db:"score_home"`
	ScoreAway  int         `json:"score_away" db:"score_away"`
	StartTime  *time.Time  `json:"start_time,omitempty" db:"start_time"`
	Status     MatchStatus `json:"status" db:"status"`
}

// MatchSnapshot - неизменяемый срез полей матча, передаваемый
// публикатору события о завершении.
type MatchSnapshot struct {
	MatchID    uuid.UUID   `json:"match_id"`
	TeamHomeID uuid.UUID   `json:"team_home_id"`
	TeamAwayID uuid.UUID   `json:"team_away_id"`
	ScoreHome  int         `json:"score_home"`
	ScoreAway  int         `json:"score_away"`
	Status     MatchStatus `json:"status"`
}

// Snapshot фиксирует текущее состояние матча.
func (m *Match) Snapshot() MatchSnapshot {
	return MatchSnapshot{
		MatchID:    m.ID,
		TeamHomeID: m.TeamHomeID,
		TeamAwayID: m.TeamAwayID,
		ScoreHome:  m.ScoreHome,
		ScoreAway:  m.ScoreAway,
		Status:     m.Status,
	}
}
